package specification

import (
	"fmt"

	"gorm.io/gorm"
)

type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.id = ?", s.ID)
}

type ByIDs struct {
	IDs []int64
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.id IN ?", s.IDs)
}

// OrderBy sorts on a notes column, newest or largest first when Desc is set.
// Ties fall back to id so listings stay stable across requests.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("notes.%s %s", s.Field, direction)).Order("notes.id ASC")
}
