package mmi

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Step binds an MMI name and its expected description to a handler.
type Step struct {
	Name        string
	Description string
	Handle      Handler
}

// StepTable is the set of MMIs one proxy understands.
type StepTable struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string
}

// NewStepTable creates a table holding steps.
func NewStepTable(steps ...Step) *StepTable {
	t := &StepTable{steps: make(map[string]Step, len(steps))}
	for _, s := range steps {
		t.Register(s)
	}
	return t
}

// Register adds a step, replacing any step with the same name.
func (t *StepTable) Register(s Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.steps[s.Name]; !exists {
		t.order = append(t.order, s.Name)
	}
	t.steps[s.Name] = s
}

// Lookup returns the step registered under name.
func (t *StepTable) Lookup(name string) (Step, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.steps[name]
	return s, ok
}

// Names returns registered MMI names in registration order.
func (t *StepTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// Interact validates the request description and runs the handler.
func (t *StepTable) Interact(ctx context.Context, req *Request) (string, error) {
	step, ok := t.Lookup(req.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMMI, req.Name)
	}
	if err := step.CheckDescription(req.Description); err != nil {
		return "", err
	}
	return step.Handle(ctx, req)
}

// CheckDescription compares got with the step's description after
// whitespace normalisation. An empty got is accepted.
func (s Step) CheckDescription(got string) error {
	if got == "" {
		return nil
	}
	want := NormalizeDescription(s.Description)
	if NormalizeDescription(got) != want {
		return &DescriptionMismatchError{MMI: s.Name, Expected: want, Got: NormalizeDescription(got)}
	}
	return nil
}

// NormalizeDescription collapses every whitespace run into one space and
// trims the result. PTS wraps descriptions at arbitrary columns.
func NormalizeDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
