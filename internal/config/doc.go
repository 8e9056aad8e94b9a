// Package config defines the format-agnostic model of a stack definition.
// The model is the single structure the graph builder and the engine consume;
// format-specific loaders (HCL today) translate their schemas into it.
package config
