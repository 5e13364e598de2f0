package implementation

import (
	"context"
	"errors"
	"time"

	"notekeep-be/internal/entity"
	"notekeep-be/internal/mapper"
	"notekeep-be/internal/model"
	"notekeep-be/internal/repository/contract"
	"notekeep-be/internal/repository/scope"
	"notekeep-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Omit("Labels").Create(m).Error; err != nil {
		return err
	}
	labels := note.Labels
	*note = *r.mapper.ToEntity(m)
	note.Labels = labels
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	res := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", m.Id, m.UserId).
		Select("title", "content", "color", "is_pinned", "is_archived", "is_deleted", "display_order", "deleted_at", "updated_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) FindByID(ctx context.Context, userId uuid.UUID, id int64) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
		specification.WithLabels{},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) LoadActiveNotes(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.ActiveNotes{},
		specification.BoardOrder{},
		specification.WithLabels{},
	)
}

func (r *NoteRepositoryImpl) FindArchived(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.ArchivedNotes{},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.WithLabels{},
	)
}

func (r *NoteRepositoryImpl) FindTrashed(ctx context.Context, userId uuid.UUID) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.TrashedNotes{},
		specification.OrderBy{Field: "deleted_at", Desc: true},
		specification.WithLabels{},
	)
}

func (r *NoteRepositoryImpl) Search(ctx context.Context, userId uuid.UUID, query string) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.ActiveNotes{},
		specification.NoteSearchQuery{Query: query},
		specification.BoardOrder{},
		specification.WithLabels{},
	)
}

// ApplyOrderBatch writes display orders without touching updated_at; a
// reorder is not an edit of the note.
func (r *NoteRepositoryImpl) ApplyOrderBatch(ctx context.Context, userId uuid.UUID, items []entity.NoteOrderItem) error {
	db := r.db.WithContext(ctx)
	for _, item := range items {
		res := db.Model(&model.Note{}).
			Where("id = ? AND user_id = ?", item.NoteId, userId).
			UpdateColumn("display_order", item.DisplayOrder)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return contract.ErrNoteNotFound
		}
	}
	return nil
}

func (r *NoteRepositoryImpl) SetPinned(ctx context.Context, userId uuid.UUID, id int64, pinned bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{
			"is_pinned":  pinned,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) SoftDelete(ctx context.Context, userId uuid.UUID, ids []int64) (int64, error) {
	now := time.Now()
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Note{}),
		specification.ByIDs{IDs: ids},
		specification.NoteOwnedByUser{UserID: userId},
	)
	res := query.
		Scopes(scope.ExcludeTrashed).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *NoteRepositoryImpl) OwnerIds(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
