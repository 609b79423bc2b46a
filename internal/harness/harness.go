package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dhrn/devkit/internal/builtin"
	"github.com/dhrn/devkit/internal/collection"
	"github.com/dhrn/devkit/internal/engine"
	"github.com/dhrn/devkit/internal/rules"
	"github.com/dhrn/devkit/internal/store"
	"github.com/dhrn/devkit/internal/testutil"
	"github.com/dhrn/devkit/internal/tree"
)

// Harness runs the steps of one scenario.
type Harness struct {
	store      *store.Store
	engine     *engine.Engine
	collection string
	clock      *testutil.DeterministicClock
	ids        *testutil.SequentialIDs
	logger     *slog.Logger
}

// Run executes scenario and returns its result.
//
// Each run uses a fresh in-memory store and engine. A returned error means
// the scenario could not be set up or a step named an unknown schematic;
// expectation and assertion failures are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory store: %w", err)
	}
	defer st.Close()

	desc, err := collection.Load(scenario.Collection)
	if err != nil {
		return nil, err
	}

	logger := testutil.DiscardLogger()
	eng := engine.New(
		engine.WithLogger(logger),
		engine.WithIDGenerator(testutil.NewSequentialIDs("ctx")),
	)
	builtin.Register(eng)
	if _, err := eng.AddCollection(desc); err != nil {
		return nil, err
	}

	h := &Harness{
		store:      st,
		engine:     eng,
		collection: desc.Name,
		clock:      testutil.NewDeterministicClock(),
		ids:        testutil.NewSequentialIDs("run"),
		logger:     logger,
	}

	current := tree.Empty()
	for p, content := range scenario.Input {
		if err := current.Create(p, []byte(content)); err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		next, ok, err := h.executeStep(ctx, i, step, current, result)
		if err != nil {
			return nil, err
		}
		current = next
		if !ok {
			break
		}
	}

	trace, err := st.ReadInvocations(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	result.Trace = trace

	for _, p := range current.Files() {
		b, err := current.Read(p)
		if err != nil {
			return nil, err
		}
		result.Files[p] = string(b)
	}

	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(current, a); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

// executeStep runs one step on a copy of current and records it. It
// returns the tree the next step should see and whether to continue.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, current *tree.HostTree, result *Result) (*tree.HostTree, bool, error) {
	s, err := h.engine.CreateSchematic(h.collection, step.Schematic)
	if err != nil {
		return nil, false, fmt.Errorf("steps[%d]: %w", index, err)
	}

	strategy, err := tree.ParseMergeStrategy(step.Strategy)
	if err != nil {
		return nil, false, fmt.Errorf("steps[%d]: %w", index, err)
	}

	input, err := tree.Copy(current)
	if err != nil {
		return nil, false, err
	}

	parent := &rules.Context{Strategy: strategy, Debug: step.Debug, Logger: h.logger}
	out, runErr := rules.Last(s.Call(ctx, step.Options, rules.Trees(input), parent))

	inv := store.Invocation{
		ID:         h.ids.Generate(),
		Seq:        h.clock.Next(),
		Collection: h.collection,
		Schematic:  s.Description().Name,
		Options:    step.Options,
		Strategy:   strategy.String(),
		Debug:      step.Debug,
		Status:     store.StatusOK,
	}
	if runErr != nil {
		inv.Status = store.StatusFailed
		inv.Error = runErr.Error()
	} else {
		inv.Files = out.Files()
	}
	if err := h.store.WriteInvocation(ctx, inv); err != nil {
		return nil, false, fmt.Errorf("record steps[%d]: %w", index, err)
	}

	switch {
	case runErr != nil && step.Expect == nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Schematic, runErr))
		return current, false, nil

	case runErr != nil && !strings.Contains(runErr.Error(), step.Expect.Error):
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error containing %q, got %q",
			index, step.Schematic, step.Expect.Error, runErr.Error()))
		return current, true, nil

	case runErr != nil:
		return current, true, nil

	case step.Expect != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error containing %q, got success",
			index, step.Schematic, step.Expect.Error))
	}

	next, err := tree.Copy(out)
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}
