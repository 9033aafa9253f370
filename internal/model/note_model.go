package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string                      `gorm:"type:varchar(255);not null"`
	InputSource    string                      `gorm:"type:text"`
	Content        string                      `gorm:"type:text"`
	Concepts       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Tags           datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Resources      datatypes.JSON              `gorm:"type:jsonb"`
	Evaluation     datatypes.JSON              `gorm:"type:jsonb"`
	TotalScore     float64                     `gorm:"default:0"`
	IndexingStatus string                      `gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt              `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
