package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StyleProfile struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DataJSON  datatypes.JSON `gorm:"column:data_json;type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (StyleProfile) TableName() string {
	return "style_profiles"
}
