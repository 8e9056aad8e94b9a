// Package registry holds the resource type definitions a stack may use:
// per type, the typed input constructor, the declared output attributes, and
// the Go lifecycle handlers the engine dispatches.
package registry
