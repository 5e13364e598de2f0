package mapper

import (
	"time"

	"notekeep-be/internal/entity"
	"notekeep-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	labels := make([]entity.Label, len(n.Labels))
	for i, l := range n.Labels {
		labels[i] = entity.Label{Id: l.Id, UserId: l.UserId, Name: l.Name}
	}

	return &entity.Note{
		Id:           n.Id,
		UserId:       n.UserId,
		Title:        n.Title,
		Content:      n.Content,
		Color:        n.Color,
		IsPinned:     n.IsPinned,
		IsArchived:   n.IsArchived,
		IsDeleted:    n.IsDeleted,
		DisplayOrder: n.DisplayOrder,
		Labels:       labels,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    n.DeletedAt,
	}
}

// ToModel leaves Labels empty: labels are attached through their own table
// and must not be upserted by a note save.
func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	deletedAt := n.DeletedAt
	if n.IsDeleted && deletedAt == nil {
		now := time.Now()
		deletedAt = &now
	}

	return &model.Note{
		Id:           n.Id,
		UserId:       n.UserId,
		Title:        n.Title,
		Content:      n.Content,
		Color:        n.Color,
		IsPinned:     n.IsPinned,
		IsArchived:   n.IsArchived,
		IsDeleted:    n.IsDeleted,
		DisplayOrder: n.DisplayOrder,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
