package app

import (
	"errors"
	"fmt"
)

// Verbs the application understands.
const (
	VerbPlan      = "plan"
	VerbApply     = "apply"
	VerbDestroy   = "destroy"
	VerbOutputs   = "outputs"
	VerbSyncTrust = "sync-trust"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Verb      string
	StackPath string // hcl file or directory
	StatePath string // sqlite database file

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.StackPath == "" {
		return nil, errors.New("StackPath is a required configuration field and cannot be empty")
	}
	switch cfg.Verb {
	case VerbPlan, VerbApply, VerbDestroy, VerbOutputs, VerbSyncTrust:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Verb)
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "icebridge.state.db"
	}
	return &cfg, nil
}
