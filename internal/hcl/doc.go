// Package hcl implements the HCL-backed config.Loader. It parses stack
// definition files into the schema structs and translates them into the
// format-agnostic config model.
package hcl
