// Package policy evaluates user-defined screening rules, written in
// Rego, against incoming calls. It wraps an embedded OPA instance with
// prepared queries per entrypoint.
package policy
