package pipeline

import (
	"context"
	"fmt"
)

// Stage is one processing step. Run receives a private copy of the state and
// returns only the fields it owns plus its status field.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) (Update, error)
}

// StageFunc adapts a plain function into a Stage.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, state *State) (Update, error)
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context, state *State) (Update, error) {
	return s.Fn(ctx, state)
}

// NewStage builds a Stage from a name and function.
func NewStage(name string, fn func(ctx context.Context, state *State) (Update, error)) Stage {
	return StageFunc{StageName: name, Fn: fn}
}

// StageError carries the failing stage name alongside the cause.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
