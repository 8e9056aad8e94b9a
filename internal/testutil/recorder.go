package testutil

import (
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Event is one recorded provider handler invocation.
type Event struct {
	// Op is "create", "destroy", or "sync".
	Op string
	// Type is the resource type the handler serves.
	Type string
	// Input is the decoded input struct for creates, nil otherwise.
	Input any
	// Prior is the recorded outputs value for destroys and syncs.
	Prior cty.Value
}

// Recorder captures provider handler invocations across goroutines so tests
// can assert on ordering and payloads.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Creates returns the resource types of create events in invocation order.
func (r *Recorder) Creates() []string {
	var types []string
	for _, e := range r.Events() {
		if e.Op == "create" {
			types = append(types, e.Type)
		}
	}
	return types
}

// Destroys returns the resource types of destroy events in invocation order.
func (r *Recorder) Destroys() []string {
	var types []string
	for _, e := range r.Events() {
		if e.Op == "destroy" {
			types = append(types, e.Type)
		}
	}
	return types
}

// CreateInput returns the recorded create input for the given type, or nil.
func (r *Recorder) CreateInput(resType string) any {
	for _, e := range r.Events() {
		if e.Op == "create" && e.Type == resType {
			return e.Input
		}
	}
	return nil
}

// CountCreates tallies create events for one resource type.
func (r *Recorder) CountCreates(resType string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Op == "create" && e.Type == resType {
			n++
		}
	}
	return n
}
