package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"notekeep-be/internal/dto"
	"notekeep-be/internal/entity"
	"notekeep-be/internal/ordering"
	"notekeep-be/internal/pkg/logger"
	"notekeep-be/internal/repository/contract"
	"notekeep-be/internal/repository/memory"
	"notekeep-be/internal/repository/unitofwork"
	"notekeep-be/internal/rules"
	"notekeep-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id int64) (*dto.ShowNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	ChangeColor(ctx context.Context, userId uuid.UUID, req *dto.ChangeColorRequest) (*dto.ShowNoteResponse, error)

	Board(ctx context.Context, userId uuid.UUID) (*dto.NoteBoardResponse, error)
	Archived(ctx context.Context, userId uuid.UUID) ([]*dto.ShowNoteResponse, error)
	Trash(ctx context.Context, userId uuid.UUID) ([]*dto.ShowNoteResponse, error)
	Search(ctx context.Context, userId uuid.UUID, query string) (*dto.NoteBoardResponse, error)

	TogglePin(ctx context.Context, userId uuid.UUID, id int64) (*dto.NoteBoardResponse, error)
	Archive(ctx context.Context, userId uuid.UUID, id int64) error
	Unarchive(ctx context.Context, userId uuid.UUID, id int64) error
	Restore(ctx context.Context, userId uuid.UUID, id int64) error
	Delete(ctx context.Context, userId uuid.UUID, id int64) error
	BulkDelete(ctx context.Context, userId uuid.UUID, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error)

	Move(ctx context.Context, userId uuid.UUID, req *dto.MoveNoteRequest) (*dto.NoteBoardResponse, error)
	SaveOrder(ctx context.Context, userId uuid.UUID, req *dto.ReorderNotesRequest) (*dto.ReorderNotesResponse, error)
	NormalizeOrder(ctx context.Context, userId uuid.UUID) (int, error)
}

// IEventPublisher is satisfied by the NATS publisher.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	reorderGuard     *memory.ReorderGuard
	publisherService IPublisherService
	eventPublisher   IEventPublisher
	logger           logger.ILogger
	tracer           trace.Tracer
}

// NewNoteService wires the note use cases. publisherService and
// eventPublisher may be nil; order normalization and realtime sync are then
// skipped.
func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	reorderGuard *memory.ReorderGuard,
	publisherService IPublisherService,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		reorderGuard:     reorderGuard,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		tracer:           otel.Tracer("notekeep-be/service"),
	}
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	if err := rules.ValidateCreate(req); err != nil {
		return nil, err
	}

	color := entity.DefaultNoteColor
	if strings.TrimSpace(req.Color) != "" {
		color = rules.NormalizeColor(req.Color)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer uow.Rollback()
	repo := uow.NoteRepository()

	snap, _, err := c.loadBoard(ctx, repo, userId)
	if err != nil {
		return nil, err
	}

	note := entity.Note{
		UserId:       userId,
		Title:        req.Title,
		Content:      req.Content,
		Color:        color,
		IsPinned:     req.IsPinned,
		DisplayOrder: ordering.NextDisplayOrder(snap.Sequence(ordering.SequenceOf(req.IsPinned))),
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, &note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	c.publishEvent(ctx, events.NoteCreated, userId, map[string]interface{}{
		"note_id":       note.Id,
		"title":         note.Title,
		"display_order": note.DisplayOrder,
		"is_pinned":     note.IsPinned,
	})

	return &dto.CreateNoteResponse{
		Id:           note.Id,
		DisplayOrder: note.DisplayOrder,
	}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id int64) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := c.findNote(ctx, uow.NoteRepository(), userId, id)
	if err != nil {
		return nil, err
	}
	return toShowResponse(note), nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	if err := rules.ValidateUpdate(req); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := c.findNote(ctx, repo, userId, req.Id)
	if err != nil {
		return nil, err
	}

	if req.Title.IsPresent() {
		note.Title = req.Title.Value()
	}
	if req.Content.IsPresent() {
		note.Content = req.Content.Value()
	}
	if err := rules.EnsureNotEmpty(note.Title, note.Content); err != nil {
		return nil, err
	}

	if err := c.save(ctx, repo, note); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NoteUpdated, userId, map[string]interface{}{
		"note_id": note.Id,
		"title":   note.Title,
	})

	return &dto.UpdateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) ChangeColor(ctx context.Context, userId uuid.UUID, req *dto.ChangeColorRequest) (*dto.ShowNoteResponse, error) {
	if err := rules.ValidateColor(req.Color); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := c.findNote(ctx, repo, userId, req.Id)
	if err != nil {
		return nil, err
	}

	note.Color = rules.NormalizeColor(req.Color)
	if err := c.save(ctx, repo, note); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NoteUpdated, userId, map[string]interface{}{
		"note_id": note.Id,
		"color":   note.Color,
	})

	return toShowResponse(note), nil
}

func (c *noteService) Board(ctx context.Context, userId uuid.UUID) (*dto.NoteBoardResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	snap, notes, err := c.loadBoard(ctx, uow.NoteRepository(), userId)
	if err != nil {
		return nil, err
	}

	if snap.HasDuplicateOrders() {
		c.requestNormalization(ctx, userId)
	}

	return toBoardResponse(snap, notes), nil
}

func (c *noteService) Archived(ctx context.Context, userId uuid.UUID) ([]*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindArchived(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("load archived notes: %w", err)
	}
	return toShowResponses(notes), nil
}

func (c *noteService) Trash(ctx context.Context, userId uuid.UUID) ([]*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindTrashed(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("load trashed notes: %w", err)
	}
	return toShowResponses(notes), nil
}

// Search matches active notes only and returns them grouped the same way as
// the board.
func (c *noteService) Search(ctx context.Context, userId uuid.UUID, query string) (*dto.NoteBoardResponse, error) {
	if err := rules.ValidateSearchQuery(query); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().Search(ctx, userId, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	snap, err := ordering.NewSnapshot(notes)
	if err != nil {
		return nil, err
	}
	return toBoardResponse(snap, indexNotes(notes)), nil
}

// TogglePin moves an active note to the end of the other sequence. Archived
// and trashed notes only get the flag flipped; they take a slot when they
// come back.
func (c *noteService) TogglePin(ctx context.Context, userId uuid.UUID, id int64) (*dto.NoteBoardResponse, error) {
	var board *dto.NoteBoardResponse
	err := c.withReorder(ctx, userId, func(repo contract.NoteRepository, snap ordering.Snapshot, notes map[int64]*entity.Note) (*ordering.Result, error) {
		seq, idx, ok := snap.Locate(id)
		if !ok {
			note, err := c.findNote(ctx, repo, userId, id)
			if err != nil {
				return nil, err
			}
			if err := repo.SetPinned(ctx, userId, note.Id, !note.IsPinned); err != nil {
				return nil, fmt.Errorf("toggle pin: %w", err)
			}
			board = toBoardResponse(snap, notes)
			return nil, nil
		}

		dst := ordering.Pinned
		if seq == ordering.Pinned {
			dst = ordering.Unpinned
		}
		res, err := ordering.TransferBetween(snap, seq, dst, idx, len(snap.Sequence(dst)))
		if err != nil {
			return nil, err
		}
		board = toBoardResponse(res.Snapshot, notes)
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NotePinToggled, userId, map[string]interface{}{"note_id": id})
	return board, nil
}

func (c *noteService) Archive(ctx context.Context, userId uuid.UUID, id int64) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := c.findNote(ctx, repo, userId, id)
	if err != nil {
		return err
	}
	if note.IsArchived {
		return nil
	}

	note.IsArchived = true
	if err := c.save(ctx, repo, note); err != nil {
		return err
	}

	c.publishEvent(ctx, events.NoteArchived, userId, map[string]interface{}{"note_id": id})
	return nil
}

func (c *noteService) Unarchive(ctx context.Context, userId uuid.UUID, id int64) error {
	changed, err := c.reactivate(ctx, userId, id, func(n *entity.Note) bool {
		if !n.IsArchived {
			return false
		}
		n.IsArchived = false
		return true
	})
	if err != nil || !changed {
		return err
	}

	c.publishEvent(ctx, events.NoteRestored, userId, map[string]interface{}{"note_id": id, "from": "archive"})
	return nil
}

func (c *noteService) Restore(ctx context.Context, userId uuid.UUID, id int64) error {
	changed, err := c.reactivate(ctx, userId, id, func(n *entity.Note) bool {
		if !n.IsDeleted {
			return false
		}
		n.IsDeleted = false
		n.DeletedAt = nil
		return true
	})
	if err != nil || !changed {
		return err
	}

	c.publishEvent(ctx, events.NoteRestored, userId, map[string]interface{}{"note_id": id, "from": "trash"})
	return nil
}

// reactivate applies flip and, when the note is active afterwards, gives it
// the next free slot at the end of its sequence.
func (c *noteService) reactivate(ctx context.Context, userId uuid.UUID, id int64, flip func(*entity.Note) bool) (bool, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("begin reactivate: %w", err)
	}
	defer uow.Rollback()
	repo := uow.NoteRepository()

	note, err := c.findNote(ctx, repo, userId, id)
	if err != nil {
		return false, err
	}
	if !flip(note) {
		return false, nil
	}

	if note.IsActive() {
		snap, _, err := c.loadBoard(ctx, repo, userId)
		if err != nil {
			return false, err
		}
		note.DisplayOrder = ordering.NextDisplayOrder(snap.Sequence(ordering.SequenceOf(note.IsPinned)))
	}

	if err := c.save(ctx, repo, note); err != nil {
		return false, err
	}
	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("commit reactivate: %w", err)
	}
	return true, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id int64) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := c.findNote(ctx, repo, userId, id)
	if err != nil {
		return err
	}
	if note.IsDeleted {
		return nil
	}

	if _, err := repo.SoftDelete(ctx, userId, []int64{id}); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	c.publishEvent(ctx, events.NotesDeleted, userId, map[string]interface{}{"note_ids": []int64{id}})
	return nil
}

func (c *noteService) BulkDelete(ctx context.Context, userId uuid.UUID, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error) {
	if err := rules.ValidateBulkDelete(req.Ids); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.NoteRepository().SoftDelete(ctx, userId, req.Ids)
	if err != nil {
		return nil, fmt.Errorf("bulk delete notes: %w", err)
	}

	if deleted > 0 {
		c.publishEvent(ctx, events.NotesDeleted, userId, map[string]interface{}{"note_ids": req.Ids})
	}

	return &dto.BulkDeleteResponse{
		Deleted: deleted,
	}, nil
}

// Move applies a completed drag to the board and persists the resulting
// order batch, together with the pin flag when the note changed sequence.
func (c *noteService) Move(ctx context.Context, userId uuid.UUID, req *dto.MoveNoteRequest) (*dto.NoteBoardResponse, error) {
	ctx, span := c.tracer.Start(ctx, "NoteService.Move", trace.WithAttributes(
		attribute.String("user_id", userId.String()),
		attribute.String("sequence", req.SequenceId),
		attribute.Int("from_index", req.FromIndex),
		attribute.Int("to_index", req.ToIndex),
	))
	defer span.End()

	move, err := toMove(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var board *dto.NoteBoardResponse
	err = c.withReorder(ctx, userId, func(repo contract.NoteRepository, snap ordering.Snapshot, notes map[int64]*entity.Note) (*ordering.Result, error) {
		res, err := ordering.Apply(snap, move)
		if err != nil {
			return nil, err
		}

		// Apply has bounds-checked FromIndex against the sequence.
		if req.NoteId != 0 {
			if moved := snap.Sequence(move.Sequence)[move.FromIndex].NoteID; moved != req.NoteId {
				return nil, fmt.Errorf("%w: note %d is not at %s[%d], found %d",
					ordering.ErrStateInconsistency, req.NoteId, move.Sequence, move.FromIndex, moved)
			}
		}
		span.SetAttributes(attribute.Int("batch_size", len(res.Batch)))
		board = toBoardResponse(res.Snapshot, notes)
		return res, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.publishEvent(ctx, events.NotesReordered, userId, map[string]interface{}{
		"sequence_id": req.SequenceId,
		"from_index":  req.FromIndex,
		"to_index":    req.ToIndex,
	})
	return board, nil
}

func (c *noteService) SaveOrder(ctx context.Context, userId uuid.UUID, req *dto.ReorderNotesRequest) (*dto.ReorderNotesResponse, error) {
	items := make([]entity.NoteOrderItem, len(req.NoteOrders))
	for i, o := range req.NoteOrders {
		items[i] = entity.NoteOrderItem{NoteId: o.NoteId, DisplayOrder: o.DisplayOrder}
	}
	if err := rules.ValidateOrderBatch(items); err != nil {
		return nil, err
	}

	res := &dto.ReorderNotesResponse{}
	err := c.withReorder(ctx, userId, func(repo contract.NoteRepository, snap ordering.Snapshot, notes map[int64]*entity.Note) (*ordering.Result, error) {
		out, err := ordering.ApplyBatch(snap, items)
		if err != nil {
			return nil, err
		}
		res.Updated = len(out.Batch)
		res.Board = toBoardResponse(out.Snapshot, notes)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	if res.Updated > 0 {
		c.publishEvent(ctx, events.NotesReordered, userId, map[string]interface{}{"updated": res.Updated})
	}
	return res, nil
}

// NormalizeOrder renumbers both sequences of a board 0..n-1 and returns how
// many notes changed.
func (c *noteService) NormalizeOrder(ctx context.Context, userId uuid.UUID) (int, error) {
	var changed int
	err := c.withReorder(ctx, userId, func(repo contract.NoteRepository, snap ordering.Snapshot, notes map[int64]*entity.Note) (*ordering.Result, error) {
		res := ordering.Normalize(snap)
		changed = len(res.Batch)
		return res, nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		c.logger.Info("NoteService", "Board order normalized", map[string]interface{}{"user_id": userId, "changed": changed})
		c.publishEvent(ctx, events.NotesReordered, userId, map[string]interface{}{"updated": changed})
	}
	return changed, nil
}

type reorderFunc func(repo contract.NoteRepository, snap ordering.Snapshot, notes map[int64]*entity.Note) (*ordering.Result, error)

// withReorder runs fn against a fresh snapshot of the board inside one
// transaction and persists the result it returns. Only one reorder per user
// runs at a time.
func (c *noteService) withReorder(ctx context.Context, userId uuid.UUID, fn reorderFunc) error {
	if !c.reorderGuard.Acquire(userId) {
		return ErrReorderInProgress
	}
	defer c.reorderGuard.Release(userId)

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer uow.Rollback()
	repo := uow.NoteRepository()

	snap, notes, err := c.loadBoard(ctx, repo, userId)
	if err != nil {
		return err
	}

	res, err := fn(repo, snap, notes)
	if err != nil {
		return err
	}

	if res != nil && !res.IsNoop() {
		if err := persist(ctx, repo, userId, res); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// persist writes the pin flag first so a failing batch rolls both back.
func persist(ctx context.Context, repo contract.NoteRepository, userId uuid.UUID, res *ordering.Result) error {
	if res.PinChange != nil {
		if err := repo.SetPinned(ctx, userId, res.PinChange.NoteID, res.PinChange.Pinned); err != nil {
			return fmt.Errorf("set pinned: %w", mapStoreError(err))
		}
	}
	if len(res.Batch) > 0 {
		if err := repo.ApplyOrderBatch(ctx, userId, res.Batch); err != nil {
			return fmt.Errorf("apply order batch: %w", mapStoreError(err))
		}
	}
	return nil
}

func (c *noteService) loadBoard(ctx context.Context, repo contract.NoteRepository, userId uuid.UUID) (ordering.Snapshot, map[int64]*entity.Note, error) {
	notes, err := repo.LoadActiveNotes(ctx, userId)
	if err != nil {
		return ordering.Snapshot{}, nil, fmt.Errorf("load board: %w", err)
	}
	snap, err := ordering.NewSnapshot(notes)
	if err != nil {
		return ordering.Snapshot{}, nil, err
	}
	return snap, indexNotes(notes), nil
}

func (c *noteService) findNote(ctx context.Context, repo contract.NoteRepository, userId uuid.UUID, id int64) (*entity.Note, error) {
	note, err := repo.FindByID(ctx, userId, id)
	if err != nil {
		return nil, fmt.Errorf("find note %d: %w", id, err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (c *noteService) save(ctx context.Context, repo contract.NoteRepository, note *entity.Note) error {
	now := time.Now()
	note.UpdatedAt = &now
	if err := repo.Update(ctx, note); err != nil {
		return fmt.Errorf("update note %d: %w", note.Id, mapStoreError(err))
	}
	return nil
}

func (c *noteService) requestNormalization(ctx context.Context, userId uuid.UUID) {
	if c.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.PublishNormalizeOrderMessage{UserId: userId.String()})
	if err != nil {
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.logger.Warn("NoteService", "Failed to queue order normalization", map[string]interface{}{"user_id": userId, "error": err.Error()})
	}
}

func (c *noteService) publishEvent(ctx context.Context, eventType string, userId uuid.UUID, data map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	data["user_id"] = userId.String()
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	// Sync is best effort; the mutation is already committed.
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("NoteService", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, contract.ErrNoteNotFound) {
		return ErrNoteNotFound
	}
	return err
}

func toMove(req *dto.MoveNoteRequest) (ordering.Move, error) {
	seq, err := ordering.ParseSequenceID(req.SequenceId)
	if err != nil {
		return ordering.Move{}, err
	}
	move := ordering.Move{Sequence: seq, FromIndex: req.FromIndex, ToIndex: req.ToIndex}
	if req.TargetSequence != nil {
		target, err := ordering.ParseSequenceID(*req.TargetSequence)
		if err != nil {
			return ordering.Move{}, err
		}
		move.Target = &target
	}
	return move, nil
}
