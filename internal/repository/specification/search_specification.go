package specification

import "gorm.io/gorm"

// NoteSearchQuery filters notes by title or content (case-insensitive)
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}
