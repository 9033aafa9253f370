package service

import (
	"context"
	"testing"
	"time"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/contract"
	"notes-intelligence-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(noteId uuid.UUID, idx int, doc string, score float64) *contract.ScoredNoteEmbedding {
	return &contract.ScoredNoteEmbedding{
		Embedding:  &entity.NoteEmbedding{Id: uuid.New(), NoteId: noteId, ChunkIndex: idx, Document: doc},
		Similarity: score,
	}
}

func TestListNewestFirst(t *testing.T) {
	db := newStore()
	old := seedNote(db, "old")
	old.CreatedAt = time.Now().Add(-time.Hour)
	fresh := seedNote(db, "fresh")

	svc := NewNoteService(db, &recordingQueue{}, nil, nil, logger.NewNopLogger())
	res, err := svc.List(context.Background(), &dto.ListNotesRequest{})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.EqualValues(t, 2, res.Total)
	assert.Equal(t, fresh.Id, res.Items[0].Id)
	assert.Equal(t, old.Id, res.Items[1].Id)
}

func TestShowNotFound(t *testing.T) {
	svc := NewNoteService(newStore(), &recordingQueue{}, nil, nil, logger.NewNopLogger())
	_, err := svc.Show(context.Background(), uuid.New())
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestDeleteRemovesEmbeddings(t *testing.T) {
	db := newStore()
	keep := seedNote(db, "keep")
	gone := seedNote(db, "gone")
	db.embeddings = []*entity.NoteEmbedding{{NoteId: keep.Id}, {NoteId: gone.Id}, {NoteId: gone.Id}}
	bus := &recordingBus{}

	svc := NewNoteService(db, &recordingQueue{}, nil, bus, logger.NewNopLogger())
	require.NoError(t, svc.Delete(context.Background(), gone.Id))

	assert.NotContains(t, db.notes, gone.Id)
	require.Len(t, db.embeddings, 1)
	assert.Equal(t, keep.Id, db.embeddings[0].NoteId)
	assert.Equal(t, 1, db.commits)
	assert.Equal(t, []string{events.NoteDeleted}, bus.events)

	assert.ErrorIs(t, svc.Delete(context.Background(), gone.Id), contract.ErrNotFound)
}

func TestReindexQueuesNote(t *testing.T) {
	db := newStore()
	note := seedNote(db, "x")
	note.IndexingStatus = entity.IndexingFailed
	queue := &recordingQueue{}

	svc := NewNoteService(db, queue, nil, nil, logger.NewNopLogger())
	require.NoError(t, svc.Reindex(context.Background(), note.Id))

	assert.Equal(t, entity.IndexingPending, note.IndexingStatus)
	assert.Len(t, queue.payloads, 1)
}

func TestSemanticSearchBestChunkPerNote(t *testing.T) {
	db := newStore()
	a := seedNote(db, "a")
	b := seedNote(db, "b")
	db.similar = []*contract.ScoredNoteEmbedding{
		chunk(b.Id, 2, "light reactions", 0.91),
		chunk(a.Id, 0, "calvin cycle", 0.80),
		chunk(b.Id, 0, "chlorophyll", 0.75),
		chunk(a.Id, 1, "unrelated", 0.10),
	}

	svc := NewNoteService(db, &recordingQueue{}, &fakeEmbedder{}, nil, logger.NewNopLogger())
	res, err := svc.SemanticSearch(context.Background(), "how do plants make sugar")
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.Equal(t, b.Id, res[0].Id)
	assert.Equal(t, "light reactions", res[0].Snippet)
	assert.InDelta(t, 0.91, res[0].RelevanceScore, 1e-9)
	assert.Equal(t, a.Id, res[1].Id)
}

func TestSemanticSearchEdgeCases(t *testing.T) {
	db := newStore()
	seedNote(db, "Photosynthesis")

	withEmbedder := NewNoteService(db, &recordingQueue{}, &fakeEmbedder{}, nil, logger.NewNopLogger())
	res, err := withEmbedder.SemanticSearch(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = withEmbedder.SemanticSearch(context.Background(), "nothing indexed")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	literal := NewNoteService(db, &recordingQueue{}, nil, nil, logger.NewNopLogger())
	res, err = literal.SemanticSearch(context.Background(), "photo")
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b", snippet("  a\n\n b "))
	long := snippet(string(make([]rune, 300)))
	assert.Len(t, []rune(long), snippetLength+3)
}
