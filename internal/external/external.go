// Package external defines the boundary types for capabilities the
// indexing core delegates to but does not implement itself: running a
// project's own validators (linters, type checkers) and sandboxed
// execution of untrusted code. Neither concern is in scope for this
// module (spec §1's collaborators are named but not built here); this
// package exists so a future implementation has a concrete seam to
// plug into, dispatched by id or predicate through a Registry rather
// than by inheritance, per the factory-style provider selection in
// internal/embedder/factory.go.
package external

import (
	"context"
	"fmt"
)

// Validator checks source files against some external tool's rules
// (a linter, a type checker, a schema validator). CanValidate lets a
// registry pick a validator by file path instead of only by id.
type Validator struct {
	ID                  string
	SupportedExtensions []string
	CanValidate         func(relPath string) bool
	Validate            func(ctx context.Context, relPath string, source []byte) error
	IsAvailable         func() bool
}

// Sandbox runs untrusted code (a test suite, a generated snippet) in
// an isolated environment. The lifecycle is explicit: Initialize once,
// Execute any number of times, Stop to end the session, Destroy to
// reclaim resources regardless of how the session ended.
type Sandbox struct {
	ID          string
	Initialize  func(ctx context.Context) error
	Execute     func(ctx context.Context, command string) (string, error)
	Stop        func(ctx context.Context) error
	Destroy     func(ctx context.Context) error
	IsAvailable func() bool
}

// Registry dispatches validators and sandboxes by id or by predicate,
// so callers never need a type switch over concrete implementations.
type Registry struct {
	validators map[string]Validator
	sandboxes  map[string]Sandbox
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]Validator),
		sandboxes:  make(map[string]Sandbox),
	}
}

// RegisterValidator adds or replaces a validator under its ID.
func (r *Registry) RegisterValidator(v Validator) {
	r.validators[v.ID] = v
}

// RegisterSandbox adds or replaces a sandbox under its ID.
func (r *Registry) RegisterSandbox(s Sandbox) {
	r.sandboxes[s.ID] = s
}

// ValidatorByID looks up a registered, available validator by id.
func (r *Registry) ValidatorByID(id string) (Validator, bool) {
	v, ok := r.validators[id]
	if !ok || (v.IsAvailable != nil && !v.IsAvailable()) {
		return Validator{}, false
	}
	return v, true
}

// ValidatorsFor returns every registered, available validator willing
// to validate relPath, per its CanValidate predicate.
func (r *Registry) ValidatorsFor(relPath string) []Validator {
	var out []Validator
	for _, v := range r.validators {
		if v.IsAvailable != nil && !v.IsAvailable() {
			continue
		}
		if v.CanValidate != nil && v.CanValidate(relPath) {
			out = append(out, v)
		}
	}
	return out
}

// SandboxByID looks up a registered, available sandbox by id.
func (r *Registry) SandboxByID(id string) (Sandbox, bool) {
	s, ok := r.sandboxes[id]
	if !ok || (s.IsAvailable != nil && !s.IsAvailable()) {
		return Sandbox{}, false
	}
	return s, true
}

// ErrCapabilityUnavailable describes an id that either was never
// registered or reports itself unavailable. The Registry lookups do
// not return it; they report that case through their false ok value.
type ErrCapabilityUnavailable struct{ ID string }

func (e *ErrCapabilityUnavailable) Error() string {
	return fmt.Sprintf("capability %q is not registered or unavailable", e.ID)
}
