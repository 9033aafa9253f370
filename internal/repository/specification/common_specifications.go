package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxPageSize caps every paginated query.
const MaxPageSize = 100

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs filters by a list of IDs. An empty list matches nothing.
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	if len(s.IDs) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where("id IN ?", s.IDs)
}

var sortable = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"title":       true,
	"total_score": true,
}

// OrderBy sorts by a known column; unknown columns fall back to created_at.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	field := s.Field
	if !sortable[field] {
		field = "created_at"
	}
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: s.Desc})
}

// Pagination clamps the limit to 1..MaxPageSize.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	limit := s.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := s.Offset
	if offset < 0 {
		offset = 0
	}
	return db.Limit(limit).Offset(offset)
}
