// Package testutil provides shared helpers for integration tests: a harness
// that runs a stack definition against fake providers, a thread-safe log
// buffer, and a recorder for asserting on provider invocations.
package testutil
