// Package filters contains the built-in incoming-call filters wired
// into a screening graph: block list, contacts, do-not-disturb,
// Rego policy and the external screening service.
package filters
