package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/specialistvlad/elementflow/internal/definition"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticParser returns a fixed definition, or err.
type staticParser struct {
	def definition.Definition
	err error
}

func (p *staticParser) Parse(context.Context, string) (definition.Definition, error) {
	return p.def, p.err
}

func spec(index int, name string, inputs, outputs element.Values) *definition.ElementSpec {
	if inputs == nil {
		inputs = element.Values{}
	}
	return &definition.ElementSpec{Index: index, Name: name, Inputs: inputs, Outputs: outputs}
}

// fakeRegistry registers one unit per fake, named after its label.
func fakeRegistry(fakes ...*testutil.FakeElement) *registry.Registry {
	reg := registry.New()
	for _, f := range fakes {
		f := f
		reg.RegisterUnit("modules/"+strings.ToLower(f.Label), registry.Types(registry.Type{
			Name: f.Label,
			New: func(settings element.Values) (element.Element, error) {
				f.Settings = settings
				return f, nil
			},
		}))
	}
	return reg
}

func newOrchestrator(t *testing.T, def definition.Definition, fakes ...*testutil.FakeElement) (*Orchestrator, context.Context, *testutil.SafeBuffer) {
	t.Helper()
	ctx, logs := testutil.Context(t)
	o := New(&staticParser{def: def}, fakeRegistry(fakes...))
	require.NoError(t, o.Initialize(ctx, "pipeline.yml"))
	return o, ctx, logs
}

func TestOrchestrator_SingleElementWithoutOutputs(t *testing.T) {
	t.Parallel()

	validator := &testutil.FakeElement{Label: "Validator"}
	def := definition.Definition{
		spec(0, "Validator", element.Values{"data_directory": "/data/in"}, nil),
	}
	o, ctx, _ := newOrchestrator(t, def, validator)

	require.NoError(t, o.Run(ctx))
	assert.Equal(t, Completed, o.Status().State)
	assert.Empty(t, o.Outputs())
	require.Len(t, validator.RunInputs, 1)
	assert.Equal(t, element.Values{"data_directory": "/data/in"}, validator.RunInputs[0])

	require.NoError(t, o.Cleanup(ctx))
	assert.Equal(t, CleanedUp, o.Status().State)
	require.Len(t, validator.CleanupOutputs, 1)
	assert.Nil(t, validator.CleanupOutputs[0])
}

func TestOrchestrator_AccumulatesOutputs(t *testing.T) {
	t.Parallel()

	rec := &testutil.Recorder{}
	a := &testutil.FakeElement{Label: "A", Recorder: rec, RunFunc: testutil.Returning(element.Values{"x": 1, "shared": "from-a"})}
	b := &testutil.FakeElement{Label: "B", Recorder: rec, RunFunc: testutil.Returning(element.Values{"y": 2})}
	c := &testutil.FakeElement{Label: "C", Recorder: rec}

	def := definition.Definition{
		spec(0, "A", element.Values{"in": "a"}, element.Values{"x": "x", "shared": "shared"}),
		spec(1, "B", element.Values{"shared": "declared"}, element.Values{"y": "y"}),
		spec(2, "C", element.Values{}, nil),
	}
	o, ctx, _ := newOrchestrator(t, def, a, b, c)

	require.NoError(t, o.Run(ctx))

	assert.Equal(t, element.Values{"in": "a"}, a.RunInputs[0])
	assert.Equal(t, element.Values{"x": 1, "shared": "declared"}, b.RunInputs[0], "declared inputs win over accumulated outputs")
	assert.Equal(t, element.Values{"x": 1, "shared": "from-a", "y": 2}, c.RunInputs[0])
	assert.Equal(t, element.Values{"x": 1, "shared": "from-a", "y": 2}, o.Outputs())
	assert.Equal(t, element.Values{"x": 1, "shared": "declared"}, o.Definition()[1].Inputs, "merged inputs are stored on the element")

	require.NoError(t, o.Cleanup(ctx))
	assert.Equal(t, []string{"run:A", "run:B", "run:C", "cleanup:A", "cleanup:B", "cleanup:C"}, rec.Events())
	assert.Equal(t, element.Values{"x": "x", "shared": "shared"}, a.CleanupOutputs[0])
	assert.Equal(t, element.Values{"y": "y"}, b.CleanupOutputs[0])
}

func TestOrchestrator_MinorFailureContinues(t *testing.T) {
	t.Parallel()

	rec := &testutil.Recorder{}
	a := &testutil.FakeElement{Label: "A", Recorder: rec, RunFunc: testutil.Failing(element.Minorf("optional step skipped"))}
	b := &testutil.FakeElement{Label: "B", Recorder: rec, RunFunc: testutil.Returning(element.Values{"y": 2})}

	def := definition.Definition{
		spec(0, "A", nil, element.Values{"x": "x"}),
		spec(1, "B", nil, element.Values{"y": "y"}),
	}
	o, ctx, logs := newOrchestrator(t, def, a, b)

	require.NoError(t, o.Run(ctx), "a minor failure skips the contract check and does not stop the pipeline")
	assert.Equal(t, element.Values{}, b.RunInputs[0])
	assert.Equal(t, element.Values{"y": 2}, o.Outputs())
	assert.Equal(t, Completed, o.Status().State)
	assert.Equal(t, 2, o.Status().Completed)
	assert.Contains(t, logs.String(), "optional step skipped")

	require.NoError(t, o.Cleanup(ctx))
	assert.Equal(t, []string{"run:A", "run:B", "cleanup:A", "cleanup:B"}, rec.Events())
}

func TestOrchestrator_MajorFailureAborts(t *testing.T) {
	t.Parallel()

	rec := &testutil.Recorder{}
	cause := errors.New("connection refused")
	a := &testutil.FakeElement{Label: "A", Recorder: rec, RunFunc: testutil.Failing(
		element.NewError(element.Major, "Service is not healthy", "health probe failed for http://redactor", cause),
	)}
	b := &testutil.FakeElement{Label: "B", Recorder: rec}

	def := definition.Definition{
		spec(0, "A", nil, nil),
		spec(1, "B", nil, nil),
	}
	o, ctx, logs := newOrchestrator(t, def, a, b)

	err := o.Run(ctx)
	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, "the pipeline element raised an exception: Service is not healthy", abortErr.PublicMessage())
	assert.Equal(t, "A", abortErr.Element)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Aborted, o.Status().State)
	assert.Equal(t, 0, b.Runs())

	log := logs.String()
	assert.Contains(t, log, "Service is not healthy")
	assert.Contains(t, log, "health probe failed for http://redactor")

	require.NoError(t, o.Cleanup(ctx))
	assert.Equal(t, []string{"run:A", "cleanup:A", "cleanup:B"}, rec.Events())
}

func TestOrchestrator_ContractViolations(t *testing.T) {
	t.Parallel()

	t.Run("declared outputs but returned none", func(t *testing.T) {
		t.Parallel()
		a := &testutil.FakeElement{Label: "A"}
		b := &testutil.FakeElement{Label: "B"}
		o, ctx, _ := newOrchestrator(t, definition.Definition{
			spec(0, "A", nil, element.Values{"x": "x"}),
			spec(1, "B", nil, nil),
		}, a, b)

		err := o.Run(ctx)
		var violation *ContractViolationError
		require.ErrorAs(t, err, &violation)
		assert.True(t, violation.Declared)
		assert.Equal(t, 0, violation.Index)
		assert.Contains(t, err.Error(), "declares outputs but returned none")
		assert.Equal(t, 0, b.Runs())

		require.NoError(t, o.Cleanup(ctx))
		assert.Equal(t, 1, b.Cleanups())
	})

	t.Run("returned outputs but declared none", func(t *testing.T) {
		t.Parallel()
		a := &testutil.FakeElement{Label: "A", RunFunc: testutil.Returning(element.Values{"x": 1, "y": 2})}
		o, ctx, _ := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil)}, a)

		err := o.Run(ctx)
		var violation *ContractViolationError
		require.ErrorAs(t, err, &violation)
		assert.False(t, violation.Declared)
		assert.Equal(t, 2, violation.Returned)
		assert.Empty(t, o.Outputs())
	})
}

func TestOrchestrator_UnclassifiedFailures(t *testing.T) {
	t.Parallel()

	t.Run("unknown severity", func(t *testing.T) {
		t.Parallel()
		a := &testutil.FakeElement{Label: "A", RunFunc: testutil.Failing(element.NewError("FATAL", "boom", "", nil))}
		o, ctx, _ := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil)}, a)

		err := o.Run(ctx)
		var sevErr *SeverityError
		require.ErrorAs(t, err, &sevErr)
		assert.Contains(t, err.Error(), `unknown severity "FATAL"`)
		assert.Equal(t, Aborted, o.Status().State)
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("nil pointer somewhere")
		a := &testutil.FakeElement{Label: "A", RunFunc: testutil.Failing(cause)}
		o, ctx, _ := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil)}, a)

		err := o.Run(ctx)
		var failure *ElementFailureError
		require.ErrorAs(t, err, &failure)
		assert.ErrorIs(t, err, cause)
	})
}

func TestOrchestrator_InitializeFailures(t *testing.T) {
	t.Parallel()

	t.Run("definition error", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.Context(t)
		parseErr := &definition.DefinitionError{Source: "bad.yml", Index: -1, Reason: "document is empty"}
		o := New(&staticParser{err: parseErr}, fakeRegistry(&testutil.FakeElement{Label: "A"}))

		err := o.Initialize(ctx, "bad.yml")
		require.ErrorIs(t, err, parseErr)
		assert.Equal(t, Failed, o.Status().State)
		assert.Nil(t, o.Definition())
		require.NoError(t, o.Cleanup(ctx))
		assert.ErrorIs(t, o.Run(ctx), ErrInvalidState)
	})

	t.Run("unknown element name", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.Context(t)
		o := New(&staticParser{def: definition.Definition{spec(0, "Missing", nil, nil)}}, fakeRegistry(&testutil.FakeElement{Label: "A"}))

		err := o.Initialize(ctx, "pipeline.yml")
		var notFound *registry.NameNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Missing", notFound.Name)
		assert.Equal(t, Failed, o.Status().State)
	})

	t.Run("factory rejects settings", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.Context(t)
		reg := registry.New()
		reg.RegisterUnit("modules/picky", registry.Types(registry.Type{
			Name: "Picky",
			New: func(element.Values) (element.Element, error) {
				return nil, errors.New("setting 'mode' is required")
			},
		}))
		o := New(&staticParser{def: definition.Definition{spec(0, "Picky", nil, nil)}}, reg)

		err := o.Initialize(ctx, "pipeline.yml")
		var defErr *definition.DefinitionError
		require.ErrorAs(t, err, &defErr)
		assert.Equal(t, "Picky", defErr.Name)
		assert.Contains(t, err.Error(), "setting 'mode' is required")
	})

	t.Run("discovery failure", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.Context(t)
		o := New(&staticParser{def: definition.Definition{spec(0, "A", nil, nil)}}, registry.New())

		err := o.Initialize(ctx, "pipeline.yml")
		var discErr *registry.DiscoveryError
		require.ErrorAs(t, err, &discErr)
	})
}

func TestOrchestrator_SettingsPassedVerbatim(t *testing.T) {
	t.Parallel()

	a := &testutil.FakeElement{Label: "A"}
	s := spec(0, "A", nil, nil)
	s.Settings = element.Values{"chunk_size": 10}
	o, _, _ := newOrchestrator(t, definition.Definition{s}, a)

	assert.Equal(t, element.Values{"chunk_size": 10}, a.Settings)
	assert.Same(t, a, o.Definition()[0].Instance)
}

func TestOrchestrator_LifecycleOrdering(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.Context(t)
	o := New(&staticParser{def: definition.Definition{spec(0, "A", nil, nil)}}, fakeRegistry(&testutil.FakeElement{Label: "A"}))

	assert.ErrorIs(t, o.Run(ctx), ErrInvalidState, "run before initialize")
	require.NoError(t, o.Cleanup(ctx), "cleanup before initialize is a no-op")

	require.NoError(t, o.Initialize(ctx, "pipeline.yml"))
	assert.ErrorIs(t, o.Initialize(ctx, "pipeline.yml"), ErrInvalidState)
	require.NoError(t, o.Run(ctx))
	assert.ErrorIs(t, o.Run(ctx), ErrInvalidState, "elements run at most once")
}

func TestOrchestrator_CleanupWithoutRun(t *testing.T) {
	t.Parallel()

	rec := &testutil.Recorder{}
	a := &testutil.FakeElement{Label: "A", Recorder: rec}
	b := &testutil.FakeElement{Label: "B", Recorder: rec}
	o, ctx, _ := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil), spec(1, "B", nil, nil)}, a, b)

	require.NoError(t, o.Cleanup(ctx))
	assert.Equal(t, []string{"cleanup:A", "cleanup:B"}, rec.Events())

	require.NoError(t, o.Cleanup(ctx), "second cleanup is a no-op")
	assert.Equal(t, 1, a.Cleanups())
}

func TestOrchestrator_CleanupErrorsDoNotStopOthers(t *testing.T) {
	t.Parallel()

	errA := errors.New("temp dir busy")
	a := &testutil.FakeElement{Label: "A", CleanupErr: errA}
	b := &testutil.FakeElement{Label: "B"}
	o, ctx, logs := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil), spec(1, "B", nil, nil)}, a, b)

	require.NoError(t, o.Run(ctx))
	err := o.Cleanup(ctx)
	require.ErrorIs(t, err, errA)
	assert.Equal(t, 1, b.Cleanups())
	assert.Equal(t, CleanedUp, o.Status().State)
	assert.Contains(t, logs.String(), "Element cleanup failed.")
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	t.Parallel()

	a := &testutil.FakeElement{Label: "A"}
	o, ctx, _ := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil)}, a)

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	err := o.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, a.Runs())
	assert.Equal(t, Aborted, o.Status().State)
}

func TestOrchestrator_StatusDuringRun(t *testing.T) {
	t.Parallel()

	var o *Orchestrator
	var seen Status
	a := &testutil.FakeElement{Label: "A"}
	b := &testutil.FakeElement{Label: "B", RunFunc: func(context.Context, element.Values, element.Values) (element.Values, error) {
		seen = o.Status()
		return element.Values{}, nil
	}}
	o, ctx, _ := newOrchestrator(t, definition.Definition{spec(0, "A", nil, nil), spec(1, "B", nil, nil)}, a, b)

	assert.Equal(t, Status{State: Initialized, Total: 2}, o.Status())
	require.NoError(t, o.Run(ctx))
	assert.Equal(t, Status{State: Running, Element: "B", Completed: 1, Total: 2}, seen)
	assert.Equal(t, Status{State: Completed, Completed: 2, Total: 2}, o.Status())
}

func TestState_MarshalText(t *testing.T) {
	t.Parallel()

	text, err := CleanedUp.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "cleaned_up", string(text))
	assert.Equal(t, "unknown", State(42).String())
}
