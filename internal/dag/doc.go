// Package dag builds and validates the resource dependency graph. Edges come
// from two sources: implicit attribute references discovered by walking HCL
// expression traversals, and explicit depends_on declarations. Attribute flow
// implies ordering; there is no separate ordering directive.
package dag
