package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/events"
	"notes-intelligence-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWorkflow struct {
	runID   string
	initial *pipeline.State
	final   *pipeline.State
	err     error
}

func (w *stubWorkflow) Run(ctx context.Context, initial *pipeline.State) (*pipeline.State, error) {
	w.runID = pipeline.RunID(ctx)
	w.initial = initial
	return w.final, w.err
}

type countingRecorder struct{ ok, failed int }

func (r *countingRecorder) ObserveRun(_ *pipeline.State, err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func finishedState() *pipeline.State {
	score := 28.0
	return &pipeline.State{
		RewrittenNotes: "# AUPR Explained\nArea under the precision recall curve.",
		Concepts:       []string{"aupr"},
		Tags:           []string{"aupr", "metrics"},
		Resources:      map[string][]pipeline.Resource{"aupr": {{Title: "AUPR", Link: "https://example.org"}}},
		Evaluation:     &pipeline.Evaluation{StyleAdherenceScore: 9, ClarityScore: 9, CoherenceScore: 10},
		TotalScore:     &score,
	}
}

func TestPipelineRunPersistsAndQueuesNote(t *testing.T) {
	db := newStore()
	queue := &recordingQueue{}
	bus := &recordingBus{}
	rec := &countingRecorder{}
	wf := &stubWorkflow{final: finishedState()}
	svc := NewPipelineService(wf, db, queue, bus, rec, logger.NewNopLogger())

	res, err := svc.Run(context.Background(), &dto.RunPipelineRequest{
		InputSource: pipeline.Sources{"AUPR notes"},
		RunId:       "run-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunId)
	assert.Equal(t, "run-1", wf.runID)
	assert.Equal(t, "# AUPR Explained", res.Title)
	require.NotNil(t, res.NoteId)

	note := db.notes[*res.NoteId]
	require.NotNil(t, note)
	assert.Equal(t, "AUPR notes", note.InputSource)
	assert.Equal(t, 28.0, note.TotalScore)
	assert.Equal(t, entity.IndexingPending, note.IndexingStatus)
	assert.Equal(t, []string{"aupr", "metrics"}, note.Tags)

	require.Len(t, queue.payloads, 1)
	var msg dto.PublishEmbedNoteMessage
	require.NoError(t, json.Unmarshal(queue.payloads[0], &msg))
	assert.Equal(t, *res.NoteId, msg.NoteId)

	assert.Equal(t, []string{events.NoteCreated, events.PipelineCompleted}, bus.events)
	assert.Equal(t, 1, rec.ok)
}

func TestPipelineRunGeneratesRunID(t *testing.T) {
	wf := &stubWorkflow{final: finishedState()}
	svc := NewPipelineService(wf, newStore(), &recordingQueue{}, nil, nil, logger.NewNopLogger())

	res, err := svc.Run(context.Background(), &dto.RunPipelineRequest{InputSource: pipeline.Sources{"x"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunId)
	assert.Equal(t, res.RunId, wf.runID)
}

func TestPipelineRunUsesStoredProfile(t *testing.T) {
	db := newStore()
	db.profile = &entity.StyleProfile{Data: map[string]any{"tone": map[string]any{"formality": "casual"}}}
	wf := &stubWorkflow{final: finishedState()}
	svc := NewPipelineService(wf, db, &recordingQueue{}, nil, nil, logger.NewNopLogger())

	_, err := svc.Run(context.Background(), &dto.RunPipelineRequest{InputSource: pipeline.Sources{"x"}})
	require.NoError(t, err)
	assert.Equal(t, db.profile.Data, wf.initial.StyleProfile)

	explicit := map[string]any{"tone": map[string]any{"formality": "formal"}}
	_, err = svc.Run(context.Background(), &dto.RunPipelineRequest{InputSource: pipeline.Sources{"x"}, StyleProfile: explicit})
	require.NoError(t, err)
	assert.Equal(t, explicit, wf.initial.StyleProfile)
}

func TestPipelineRunFailure(t *testing.T) {
	db := newStore()
	bus := &recordingBus{}
	rec := &countingRecorder{}
	boom := &pipeline.StageError{Stage: "web_search", Err: errors.New("rate limited")}
	svc := NewPipelineService(&stubWorkflow{err: boom}, db, &recordingQueue{}, bus, rec, logger.NewNopLogger())

	res, err := svc.Run(context.Background(), &dto.RunPipelineRequest{InputSource: pipeline.Sources{"x"}})
	require.Error(t, err)
	assert.Nil(t, res)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "web_search", stageErr.Stage)
	assert.Empty(t, db.notes)
	assert.Equal(t, []string{events.PipelineFailed}, bus.events)
	assert.Equal(t, 1, rec.failed)
}

func TestPipelineRunPersistenceFailureStillReturnsState(t *testing.T) {
	db := newStore()
	db.createErr = errors.New("db down")
	queue := &recordingQueue{}
	svc := NewPipelineService(&stubWorkflow{final: finishedState()}, db, queue, nil, nil, logger.NewNopLogger())

	res, err := svc.Run(context.Background(), &dto.RunPipelineRequest{InputSource: pipeline.Sources{"x"}})
	require.NoError(t, err)
	assert.Nil(t, res.NoteId)
	assert.NotNil(t, res.State)
	assert.Empty(t, queue.payloads)
}
