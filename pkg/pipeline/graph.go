package pipeline

import (
	"context"
	"fmt"
	"time"

	"notes-intelligence-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const moduleName = "Pipeline"

// step is either a single stage or a parallel region of stages.
type step struct {
	stages   []Stage
	parallel bool
}

// Graph runs stages in a fixed order. Parallel regions fan out over
// snapshots of the state as it was before the region and fan back in by
// deep merge.
type Graph struct {
	steps      []step
	logger     logger.ILogger
	observer   Observer
	tracer     trace.Tracer
	sequential bool
}

type Option func(*Graph)

func WithLogger(l logger.ILogger) Option {
	return func(g *Graph) { g.logger = l }
}

func WithObserver(o Observer) Option {
	return func(g *Graph) {
		if o != nil {
			g.observer = o
		}
	}
}

// WithSequentialFanOut runs parallel regions one stage at a time.
// The merged result is identical to the concurrent path.
func WithSequentialFanOut(on bool) Option {
	return func(g *Graph) { g.sequential = on }
}

func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		logger:   logger.NewNopLogger(),
		observer: Observers(),
		tracer:   otel.Tracer("notes-intelligence-be/pipeline"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Then appends a sequential stage.
func (g *Graph) Then(s Stage) *Graph {
	g.steps = append(g.steps, step{stages: []Stage{s}})
	return g
}

// Parallel appends a fan-out region. The stages must write disjoint keys.
func (g *Graph) Parallel(stages ...Stage) *Graph {
	g.steps = append(g.steps, step{stages: stages, parallel: true})
	return g
}

// Names lists stage names in execution order, parallel regions flattened.
func (g *Graph) Names() []string {
	var names []string
	for _, st := range g.steps {
		for _, s := range st.stages {
			names = append(names, s.Name())
		}
	}
	return names
}

// Run executes the graph to completion and returns the final state.
// The initial state is never modified.
func (g *Graph) Run(ctx context.Context, initial *State) (*State, error) {
	ctx, span := g.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(attribute.String("run_id", RunID(ctx))))
	defer span.End()

	state, err := initial.Clone()
	if err != nil {
		return nil, fmt.Errorf("snapshot initial state: %w", err)
	}

	for _, st := range g.steps {
		var updates []Update
		if st.parallel {
			updates, err = g.runRegion(ctx, state, st.stages)
		} else {
			var u Update
			u, err = g.runStage(ctx, state, st.stages[0])
			updates = []Update{u}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		if err := AssertDisjoint(updates...); err != nil {
			span.RecordError(err)
			return nil, err
		}
		state, err = Apply(state, updates...)
		if err != nil {
			return nil, fmt.Errorf("merge updates: %w", err)
		}
	}

	g.logger.Info(moduleName, "Workflow completed", map[string]interface{}{"run_id": RunID(ctx)})
	return state, nil
}

func (g *Graph) runRegion(ctx context.Context, base *State, stages []Stage) ([]Update, error) {
	updates := make([]Update, len(stages))

	if g.sequential {
		for i, s := range stages {
			u, err := g.runStage(ctx, base, s)
			if err != nil {
				return nil, err
			}
			updates[i] = u
		}
		return updates, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, s := range stages {
		eg.Go(func() error {
			u, err := g.runStage(egCtx, base, s)
			if err != nil {
				return err
			}
			updates[i] = u
			return nil
		})
	}
	// Any failure discards every sibling result.
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return updates, nil
}

// runStage hands the stage its own deep copy of the state.
func (g *Graph) runStage(ctx context.Context, state *State, s Stage) (Update, error) {
	name := s.Name()
	runID := RunID(ctx)

	ctx, span := g.tracer.Start(ctx, "pipeline.stage."+name)
	defer span.End()

	snapshot, err := state.Clone()
	if err != nil {
		return nil, &StageError{Stage: name, Err: err}
	}

	g.observer.StageStarted(ctx, StageEvent{RunID: runID, Stage: name, Status: "started"})
	g.logger.Debug(moduleName, "Stage started", map[string]interface{}{"run_id": runID, "stage": name})

	start := time.Now()
	update, err := s.Run(ctx, snapshot)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.observer.StageFinished(ctx, StageEvent{RunID: runID, Stage: name, Status: StatusFailed, Elapsed: elapsed.Milliseconds(), Error: err.Error()})
		g.logger.Error(moduleName, "Stage failed", map[string]interface{}{
			"run_id": runID, "stage": name, "error": err.Error(), "elapsed_ms": elapsed.Milliseconds(),
		})
		return nil, &StageError{Stage: name, Err: err}
	}

	g.observer.StageFinished(ctx, StageEvent{RunID: runID, Stage: name, Status: StatusSuccess, Elapsed: elapsed.Milliseconds()})
	g.logger.Info(moduleName, "Stage finished", map[string]interface{}{
		"run_id": runID, "stage": name, "keys": update.Keys(), "elapsed_ms": elapsed.Milliseconds(),
	})
	return update, nil
}
