package pipeline

import "context"

type runIDKey struct{}

// WithRunID tags the context with a run identifier that observers can read.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run identifier set by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// StageEvent describes a stage transition.
type StageEvent struct {
	RunID   string `json:"run_id"`
	Stage   string `json:"stage"`
	Status  string `json:"status"`
	Elapsed int64  `json:"elapsed_ms,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Observer receives stage lifecycle notifications. Implementations must be
// safe for concurrent use since parallel stages report from goroutines.
type Observer interface {
	StageStarted(ctx context.Context, ev StageEvent)
	StageFinished(ctx context.Context, ev StageEvent)
}

type multiObserver []Observer

func (m multiObserver) StageStarted(ctx context.Context, ev StageEvent) {
	for _, o := range m {
		o.StageStarted(ctx, ev)
	}
}

func (m multiObserver) StageFinished(ctx context.Context, ev StageEvent) {
	for _, o := range m {
		o.StageFinished(ctx, ev)
	}
}

// Observers fans notifications out to several observers.
func Observers(obs ...Observer) Observer {
	var flat multiObserver
	for _, o := range obs {
		if o != nil {
			flat = append(flat, o)
		}
	}
	return flat
}
