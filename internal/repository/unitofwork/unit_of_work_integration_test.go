package unitofwork

import (
	"context"
	"os"
	"testing"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/model"
	"notes-intelligence-be/internal/repository/specification"
	"notes-intelligence-be/pkg/database"
	"notes-intelligence-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Runs against a real Postgres with pgvector, e.g.
// DB_CONNECTION_STRING=postgres://... go test ./internal/repository/unitofwork/
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.EnsureVectorExtension(db))
	require.NoError(t, db.AutoMigrate(&model.Note{}, &model.NoteEmbedding{}, &model.StyleProfile{}))
	return db
}

func vector(hot int) []float32 {
	v := make([]float32, model.EmbeddingDimensions)
	v[hot] = 1
	return v
}

func TestNoteLifecycle(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(openTestDB(t)).NewUnitOfWork(ctx)
	tag := "it-" + uuid.NewString()[:8]

	note := &entity.Note{
		Title:          "Photosynthesis",
		InputSource:    "notes.txt",
		Content:        "Light becomes sugar.",
		Concepts:       []string{"photosynthesis"},
		Tags:           []string{tag, "biology"},
		Resources:      map[string][]pipeline.Resource{"photosynthesis": {{Title: "Wiki", Link: "https://en.wikipedia.org/wiki/Photosynthesis"}}},
		Evaluation:     &pipeline.Evaluation{StyleAdherenceScore: 9, ClarityScore: 9, CoherenceScore: 10},
		TotalScore:     28.5,
		IndexingStatus: entity.IndexingPending,
	}
	require.NoError(t, uow.NoteRepository().Create(ctx, note))
	require.NotEqual(t, uuid.Nil, note.Id)
	t.Cleanup(func() {
		_ = uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, note.Id)
		_ = uow.NoteRepository().Delete(ctx, note.Id)
	})

	t.Run("find by tag", func(t *testing.T) {
		notes, err := uow.NoteRepository().FindAll(ctx, specification.HasTag{Tag: tag})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, note.Resources, notes[0].Resources)
		assert.Equal(t, 28.0, notes[0].Evaluation.Total())
	})

	t.Run("index and search in one transaction", func(t *testing.T) {
		require.NoError(t, uow.Begin(ctx))
		err := uow.NoteEmbeddingRepository().CreateBulk(ctx, []*entity.NoteEmbedding{
			{NoteId: note.Id, Document: "light", EmbeddingValue: vector(0), ChunkIndex: 0},
			{NoteId: note.Id, Document: "sugar", EmbeddingValue: vector(1), ChunkIndex: 1},
		})
		require.NoError(t, err)
		require.NoError(t, uow.NoteRepository().UpdateIndexingStatus(ctx, note.Id, entity.IndexingCompleted))
		require.NoError(t, uow.Commit())

		hits, err := uow.NoteEmbeddingRepository().SearchSimilar(ctx, vector(1), 1, &note.Id)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "sugar", hits[0].Embedding.Document)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)

		stored, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		assert.Equal(t, entity.IndexingCompleted, stored.IndexingStatus)
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, note.Id))
		require.NoError(t, uow.Rollback())

		hits, err := uow.NoteEmbeddingRepository().SearchSimilar(ctx, vector(0), 5, &note.Id)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("delete hides the note", func(t *testing.T) {
		require.NoError(t, uow.NoteRepository().Delete(ctx, note.Id))
		found, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestStyleProfileReplaceKeepsOne(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryFactory(openTestDB(t)).NewUnitOfWork(ctx).StyleProfileRepository()

	for _, lang := range []string{"en", "id"} {
		require.NoError(t, repo.Replace(ctx, &entity.StyleProfile{
			Id:   uuid.New(),
			Data: map[string]any{"language": map[string]any{"primary": lang}},
		}))
	}

	current, err := repo.FindCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "id", current.Data["language"].(map[string]any)["primary"])
}
