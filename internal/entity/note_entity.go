package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultNoteColor = "#FFFFFF"

type Note struct {
	Id           int64
	UserId       uuid.UUID
	Title        string
	Content      string
	Color        string
	IsPinned     bool
	IsArchived   bool
	IsDeleted    bool
	DisplayOrder int
	Labels       []Label
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
}

// IsActive reports whether the note takes part in the pinned/unpinned sequences.
func (n *Note) IsActive() bool {
	return !n.IsArchived && !n.IsDeleted
}

func (n *Note) LabelNames() []string {
	names := make([]string, 0, len(n.Labels))
	for _, l := range n.Labels {
		names = append(names, l.Name)
	}
	return names
}

type Label struct {
	Id     int64
	UserId uuid.UUID
	Name   string
}

// NoteOrderItem is one entry of a persisted reordering batch.
type NoteOrderItem struct {
	NoteId       int64
	DisplayOrder int
}
