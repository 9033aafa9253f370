package specification

import (
	"encoding/json"

	"gorm.io/gorm"
)

// HasTag matches notes whose tags array contains the tag.
type HasTag struct {
	Tag string
}

func (s HasTag) Apply(db *gorm.DB) *gorm.DB {
	raw, _ := json.Marshal([]string{s.Tag})
	return db.Where("tags @> ?", string(raw))
}
