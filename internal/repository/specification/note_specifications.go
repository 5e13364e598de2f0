package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteOwnedByUser struct {
	UserID uuid.UUID
}

func (s NoteOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ?", s.UserID)
}

// ActiveNotes keeps notes that take part in the board sequences.
type ActiveNotes struct{}

func (s ActiveNotes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.is_archived = ? AND notes.is_deleted = ?", false, false)
}

type ArchivedNotes struct{}

func (s ArchivedNotes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.is_archived = ? AND notes.is_deleted = ?", true, false)
}

type TrashedNotes struct{}

func (s TrashedNotes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.is_deleted = ?", true)
}

// BoardOrder sorts pinned notes first, each sequence by display order.
type BoardOrder struct{}

func (s BoardOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("notes.is_pinned DESC").Order("notes.display_order ASC").Order("notes.id ASC")
}

type WithLabels struct{}

func (s WithLabels) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Labels")
}
