package mapper

import (
	"encoding/json"
	"time"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/model"
	"notes-intelligence-be/pkg/pipeline"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	resources := map[string][]pipeline.Resource{}
	if len(n.Resources) > 0 {
		_ = json.Unmarshal(n.Resources, &resources)
	}

	var evaluation *pipeline.Evaluation
	if len(n.Evaluation) > 0 && string(n.Evaluation) != "null" {
		evaluation = &pipeline.Evaluation{}
		if err := json.Unmarshal(n.Evaluation, evaluation); err != nil {
			evaluation = nil
		}
	}

	return &entity.Note{
		Id:             n.Id,
		Title:          n.Title,
		InputSource:    n.InputSource,
		Content:        n.Content,
		Concepts:       nonNil(n.Concepts),
		Tags:           nonNil(n.Tags),
		Resources:      resources,
		Evaluation:     evaluation,
		TotalScore:     n.TotalScore,
		IndexingStatus: n.IndexingStatus,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      n.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	status := n.IndexingStatus
	if status == "" {
		status = entity.IndexingPending
	}

	return &model.Note{
		Id:             n.Id,
		Title:          n.Title,
		InputSource:    n.InputSource,
		Content:        n.Content,
		Concepts:       datatypes.JSONSlice[string](nonNil(n.Concepts)),
		Tags:           datatypes.JSONSlice[string](nonNil(n.Tags)),
		Resources:      toJSON(n.Resources),
		Evaluation:     toJSON(n.Evaluation),
		TotalScore:     n.TotalScore,
		IndexingStatus: status,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func toJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
