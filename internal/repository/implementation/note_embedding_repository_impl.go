package implementation

import (
	"context"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/mapper"
	"notes-intelligence-be/internal/model"
	"notes-intelligence-be/internal/repository/contract"
	"notes-intelligence-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteEmbeddingMapper
}

func NewNoteEmbeddingRepository(db *gorm.DB) contract.NoteEmbeddingRepository {
	return &NoteEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteEmbeddingMapper(),
	}
}

func (r *NoteEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.NoteEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.NoteEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

// DeleteByNoteId hard-deletes so a re-index never leaves stale chunks behind.
func (r *NoteEmbeddingRepositoryImpl) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("note_id = ?", noteId).Delete(&model.NoteEmbedding{}).Error
}

func (r *NoteEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteEmbedding, error) {
	var models []*model.NoteEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.NoteEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *NoteEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.NoteEmbedding{}).Count(&count).Error
	return count, err
}

func (r *NoteEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, noteId *uuid.UUID) ([]*contract.ScoredNoteEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector cosine distance is 1 - cosine similarity.
	type result struct {
		model.NoteEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("note_embeddings").
		Select("note_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN notes ON notes.id = note_embeddings.note_id").
		Where("note_embeddings.deleted_at IS NULL").
		Where("notes.deleted_at IS NULL")
	if noteId != nil {
		query = query.Where("note_embeddings.note_id = ?", *noteId)
	}

	err := query.
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredNoteEmbedding, len(results))
	for i := range results {
		scored[i] = &contract.ScoredNoteEmbedding{
			Embedding:  r.mapper.ToEntity(&results[i].NoteEmbedding),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
