package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []StageEvent
}

func (r *recordingObserver) StageStarted(_ context.Context, ev StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, ev.Stage)
}

func (r *recordingObserver) StageFinished(_ context.Context, ev StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, ev)
}

func fanOutGraph(opts ...Option) *Graph {
	return NewGraph(opts...).
		Then(NewStage("ingest", func(_ context.Context, s *State) (Update, error) {
			return Update{
				KeyIngestionStatus: StatusSuccess,
				KeyDocuments:       []Document{{Content: "alpha beta", Metadata: map[string]any{"chunk_id": 0}}},
			}, nil
		})).
		Parallel(
			NewStage("tags", func(_ context.Context, s *State) (Update, error) {
				return Update{KeyTagStatus: StatusSuccess, KeyTags: []string{"alpha"}}, nil
			}),
			NewStage("resources", func(_ context.Context, s *State) (Update, error) {
				return Update{
					KeyWebSearchStatus: StatusSuccess,
					KeyResources:       map[string][]Resource{"alpha": {{Title: "A", Link: "https://a"}}},
				}, nil
			}),
			NewStage("rewrite", func(_ context.Context, s *State) (Update, error) {
				score := 29.5
				return Update{
					KeyStyleRewriteStatus: StatusSuccess,
					KeyRewrittenNotes:     "# Alpha\n" + s.Documents[0].Content,
					KeyTotalScore:         score,
				}, nil
			}),
		)
}

func TestGraphParallelMatchesSequential(t *testing.T) {
	initial := &State{InputSource: Sources{"alpha beta"}}

	concurrent, err := fanOutGraph().Run(context.Background(), initial)
	require.NoError(t, err)

	sequential, err := fanOutGraph(WithSequentialFanOut(true)).Run(context.Background(), initial)
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
	assert.Equal(t, []string{"alpha"}, concurrent.Tags)
	assert.Equal(t, "https://a", concurrent.Resources["alpha"][0].Link)
	assert.Equal(t, "# Alpha\nalpha beta", concurrent.RewrittenNotes)
	require.NotNil(t, concurrent.TotalScore)
	assert.Equal(t, 29.5, *concurrent.TotalScore)
	assert.Empty(t, initial.Documents, "initial state must not be modified")
}

func TestGraphStageSeesSnapshot(t *testing.T) {
	g := NewGraph().
		Then(NewStage("seed", func(_ context.Context, s *State) (Update, error) {
			return Update{KeyConcepts: []string{"one"}}, nil
		})).
		Parallel(
			NewStage("mutator", func(_ context.Context, s *State) (Update, error) {
				s.Concepts[0] = "changed"
				return Update{KeyTags: []string{"x"}}, nil
			}),
			NewStage("reader", func(_ context.Context, s *State) (Update, error) {
				return Update{KeyFeedback: s.Concepts[0]}, nil
			}),
		)

	out, err := g.Run(context.Background(), &State{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, out.Concepts)
	assert.Equal(t, "one", out.Feedback)
}

func TestGraphParallelFailureDiscardsSiblings(t *testing.T) {
	boom := errors.New("search backend down")
	var ran atomic.Int32

	g := NewGraph().Parallel(
		NewStage("tags", func(_ context.Context, s *State) (Update, error) {
			ran.Add(1)
			return Update{KeyTags: []string{"a"}}, nil
		}),
		NewStage("resources", func(_ context.Context, s *State) (Update, error) {
			ran.Add(1)
			return nil, boom
		}),
	)

	out, err := g.Run(context.Background(), &State{})
	assert.Nil(t, out)
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "resources", stageErr.Stage)
	assert.True(t, errors.Is(err, boom))
}

func TestGraphSequentialFailureStopsRun(t *testing.T) {
	var laterRan bool
	g := NewGraph().
		Then(NewStage("ingest", func(_ context.Context, s *State) (Update, error) {
			return nil, errors.New("unreadable")
		})).
		Then(NewStage("clean", func(_ context.Context, s *State) (Update, error) {
			laterRan = true
			return Update{}, nil
		}))

	_, err := g.Run(context.Background(), &State{})
	require.Error(t, err)
	assert.False(t, laterRan)
	assert.Contains(t, err.Error(), "stage ingest failed")
}

func TestGraphRejectsOverlappingParallelUpdates(t *testing.T) {
	g := NewGraph().Parallel(
		NewStage("a", func(_ context.Context, s *State) (Update, error) {
			return Update{KeyTags: []string{"a"}}, nil
		}),
		NewStage("b", func(_ context.Context, s *State) (Update, error) {
			return Update{KeyTags: []string{"b"}}, nil
		}),
	)

	_, err := g.Run(context.Background(), &State{})
	assert.True(t, errors.Is(err, ErrOverlappingUpdate))
}

func TestGraphNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	ctx := WithRunID(context.Background(), "run-1")

	_, err := fanOutGraph(WithObserver(obs)).Run(ctx, &State{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ingest", "tags", "resources", "rewrite"}, obs.started)
	require.Len(t, obs.finished, 4)
	for _, ev := range obs.finished {
		assert.Equal(t, "run-1", ev.RunID)
		assert.Equal(t, StatusSuccess, ev.Status)
	}
}
