package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/elementflow/internal/element"
)

// Recorder collects lifecycle events from fake elements in call order, for
// example "run:A" or "cleanup:B".
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Add appends an event.
func (r *Recorder) Add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// FakeElement is a configurable element. RunFunc defaults to returning an
// empty mapping.
type FakeElement struct {
	Label      string
	Settings   element.Values
	Recorder   *Recorder
	RunFunc    func(ctx context.Context, inputs, outputs element.Values) (element.Values, error)
	CleanupErr error

	mu             sync.Mutex
	RunInputs      []element.Values
	CleanupOutputs []element.Values
}

// Run implements element.Element.
func (f *FakeElement) Run(ctx context.Context, inputs, outputs element.Values) (element.Values, error) {
	f.mu.Lock()
	f.RunInputs = append(f.RunInputs, inputs.Clone())
	f.mu.Unlock()
	if f.Recorder != nil {
		f.Recorder.Add("run:%s", f.Label)
	}
	if f.RunFunc != nil {
		return f.RunFunc(ctx, inputs, outputs)
	}
	return element.Values{}, nil
}

// Cleanup implements element.Element.
func (f *FakeElement) Cleanup(_ context.Context, outputs element.Values) error {
	f.mu.Lock()
	f.CleanupOutputs = append(f.CleanupOutputs, outputs.Clone())
	f.mu.Unlock()
	if f.Recorder != nil {
		f.Recorder.Add("cleanup:%s", f.Label)
	}
	return f.CleanupErr
}

// Runs returns how many times Run was called.
func (f *FakeElement) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.RunInputs)
}

// Cleanups returns how many times Cleanup was called.
func (f *FakeElement) Cleanups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.CleanupOutputs)
}

// Returning is a RunFunc that always returns out.
func Returning(out element.Values) func(context.Context, element.Values, element.Values) (element.Values, error) {
	return func(context.Context, element.Values, element.Values) (element.Values, error) {
		return out.Clone(), nil
	}
}

// Failing is a RunFunc that always returns err.
func Failing(err error) func(context.Context, element.Values, element.Values) (element.Values, error) {
	return func(context.Context, element.Values, element.Values) (element.Values, error) {
		return nil, err
	}
}
