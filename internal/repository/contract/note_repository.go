package contract

import (
	"context"
	"errors"

	"notekeep-be/internal/entity"

	"github.com/google/uuid"
)

// ErrNoteNotFound is returned by writes that target a note the user does not own
// or that does not exist. Reads return (nil, nil) instead.
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository is the note store. Every method is scoped to one owner; a
// repository obtained from a UnitOfWork inside Begin/Commit shares its transaction.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	FindByID(ctx context.Context, userId uuid.UUID, id int64) (*entity.Note, error)

	// LoadActiveNotes returns non-archived, non-deleted notes, pinned first,
	// then by display order and id.
	LoadActiveNotes(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error)
	FindArchived(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error)
	FindTrashed(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error)

	// Search matches title, content or a label name, case-insensitively, over active notes.
	Search(ctx context.Context, userId uuid.UUID, query string) ([]*entity.Note, error)

	ApplyOrderBatch(ctx context.Context, userId uuid.UUID, items []entity.NoteOrderItem) error
	SetPinned(ctx context.Context, userId uuid.UUID, id int64, pinned bool) error
	SoftDelete(ctx context.Context, userId uuid.UUID, ids []int64) (int64, error)

	// OwnerIds lists every user with at least one note.
	OwnerIds(ctx context.Context) ([]uuid.UUID, error)
}
