package mapper

import (
	"encoding/json"
	"time"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/model"

	"gorm.io/datatypes"
)

type StyleProfileMapper struct{}

func NewStyleProfileMapper() *StyleProfileMapper {
	return &StyleProfileMapper{}
}

func (m *StyleProfileMapper) ToEntity(p *model.StyleProfile) (*entity.StyleProfile, error) {
	if p == nil {
		return nil, nil
	}

	data := map[string]any{}
	if err := json.Unmarshal(p.DataJSON, &data); err != nil {
		return nil, err
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.StyleProfile{
		Id:        p.Id,
		Data:      data,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (m *StyleProfileMapper) ToModel(p *entity.StyleProfile) (*model.StyleProfile, error) {
	if p == nil {
		return nil, nil
	}

	raw, err := json.Marshal(p.Data)
	if err != nil {
		return nil, err
	}

	return &model.StyleProfile{
		Id:        p.Id,
		DataJSON:  datatypes.JSON(raw),
		CreatedAt: p.CreatedAt,
	}, nil
}
