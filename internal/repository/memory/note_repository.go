package memory

import (
	"context"
	"strings"
	"time"

	"notekeep-be/internal/entity"
	"notekeep-be/internal/repository/contract"

	"github.com/google/uuid"
)

type NoteRepository struct {
	store *NoteStore
	uow   *UnitOfWork
}

func NewNoteRepository(store *NoteStore) contract.NoteRepository {
	return &NoteRepository{store: store}
}

// write runs fn under the store lock, and under the transaction lock too
// unless the repository already belongs to an open unit of work.
func (r *NoteRepository) write(fn func() error) error {
	if r.uow == nil || !r.uow.active {
		r.store.txMu.Lock()
		defer r.store.txMu.Unlock()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn()
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	return r.write(func() error {
		r.store.nextId++
		note.Id = r.store.nextId
		if note.CreatedAt.IsZero() {
			note.CreatedAt = time.Now()
		}
		if note.Color == "" {
			note.Color = entity.DefaultNoteColor
		}
		r.store.notes[note.Id] = cloneNote(note)
		return nil
	})
}

func (r *NoteRepository) Update(ctx context.Context, note *entity.Note) error {
	return r.write(func() error {
		current := r.store.get(note.UserId, note.Id)
		if current == nil {
			return contract.ErrNoteNotFound
		}
		next := cloneNote(note)
		next.Labels = current.Labels
		next.CreatedAt = current.CreatedAt
		now := time.Now()
		next.UpdatedAt = &now
		if next.IsDeleted && next.DeletedAt == nil {
			next.DeletedAt = &now
		}
		if !next.IsDeleted {
			next.DeletedAt = nil
		}
		r.store.notes[note.Id] = next
		return nil
	})
}

func (r *NoteRepository) FindByID(ctx context.Context, userId uuid.UUID, id int64) (*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := r.store.get(userId, id)
	if n == nil {
		return nil, nil
	}
	return cloneNote(n), nil
}

func (r *NoteRepository) LoadActiveNotes(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	notes := r.store.filter(userId, (*entity.Note).IsActive)
	sortBoard(notes)
	return notes, nil
}

func (r *NoteRepository) FindArchived(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	notes := r.store.filter(userId, func(n *entity.Note) bool {
		return n.IsArchived && !n.IsDeleted
	})
	sortByTimeDesc(notes, func(n *entity.Note) time.Time {
		if n.UpdatedAt != nil {
			return *n.UpdatedAt
		}
		return n.CreatedAt
	})
	return notes, nil
}

func (r *NoteRepository) FindTrashed(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	notes := r.store.filter(userId, func(n *entity.Note) bool {
		return n.IsDeleted
	})
	sortByTimeDesc(notes, func(n *entity.Note) time.Time {
		if n.DeletedAt != nil {
			return *n.DeletedAt
		}
		return n.CreatedAt
	})
	return notes, nil
}

func (r *NoteRepository) Search(ctx context.Context, userId uuid.UUID, query string) ([]*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	notes := r.store.filter(userId, func(n *entity.Note) bool {
		return n.IsActive() && matches(n, needle)
	})
	sortBoard(notes)
	return notes, nil
}

func (r *NoteRepository) ApplyOrderBatch(ctx context.Context, userId uuid.UUID, items []entity.NoteOrderItem) error {
	return r.write(func() error {
		for _, item := range items {
			if r.store.get(userId, item.NoteId) == nil {
				return contract.ErrNoteNotFound
			}
		}
		for _, item := range items {
			r.store.notes[item.NoteId].DisplayOrder = item.DisplayOrder
		}
		return nil
	})
}

func (r *NoteRepository) SetPinned(ctx context.Context, userId uuid.UUID, id int64, pinned bool) error {
	return r.write(func() error {
		n := r.store.get(userId, id)
		if n == nil {
			return contract.ErrNoteNotFound
		}
		now := time.Now()
		n.IsPinned = pinned
		n.UpdatedAt = &now
		return nil
	})
}

func (r *NoteRepository) SoftDelete(ctx context.Context, userId uuid.UUID, ids []int64) (int64, error) {
	var deleted int64
	err := r.write(func() error {
		now := time.Now()
		for _, id := range ids {
			n := r.store.get(userId, id)
			if n == nil || n.IsDeleted {
				continue
			}
			n.IsDeleted = true
			n.DeletedAt = &now
			n.UpdatedAt = &now
			deleted++
		}
		return nil
	})
	return deleted, err
}

func (r *NoteRepository) OwnerIds(ctx context.Context) ([]uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, n := range r.store.notes {
		if _, ok := seen[n.UserId]; ok {
			continue
		}
		seen[n.UserId] = struct{}{}
		ids = append(ids, n.UserId)
	}
	return ids, nil
}
