// Package domain defines the core business types and interfaces for the
// call-screening service.
//
// This package contains pure domain logic with no infrastructure
// dependencies. All types in this package are:
//
// - Independent of infrastructure (no database, HTTP, telemetry, etc.)
// - Technology-agnostic (no framework coupling)
// - Testable in isolation without mocks
//
// Other packages (filtergraph, filters, screening, config, ...) implement
// the interfaces defined here and depend on these types. The dependency
// direction is always:
//
//	Infrastructure → Domain (CORRECT)
//	Domain → Infrastructure (FORBIDDEN)
package domain
