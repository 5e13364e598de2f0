package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	noteA int64 = iota + 1
	noteB
	noteC
	noteD
	noteE
)

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingJobs struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingJobs) Publish(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

type fixture struct {
	user    uuid.UUID
	store   *memory.NoteStore
	guard   *memory.ReorderGuard
	events  *recordingEvents
	jobs    *recordingJobs
	service INoteService
}

// newFixture seeds pinned [A,B,C] and unpinned [D,E].
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		user:   uuid.New(),
		store:  memory.NewNoteStore(),
		guard:  memory.NewReorderGuard(time.Minute),
		events: &recordingEvents{},
		jobs:   &recordingJobs{},
	}
	f.store.Seed(
		&entity.Note{Id: noteA, UserId: f.user, Title: "A", IsPinned: true, DisplayOrder: 0},
		&entity.Note{Id: noteB, UserId: f.user, Title: "B", IsPinned: true, DisplayOrder: 1},
		&entity.Note{Id: noteC, UserId: f.user, Title: "C", IsPinned: true, DisplayOrder: 2},
		&entity.Note{Id: noteD, UserId: f.user, Title: "D", DisplayOrder: 0},
		&entity.Note{Id: noteE, UserId: f.user, Title: "E", DisplayOrder: 1},
	)
	f.service = f.build(memory.NewRepositoryFactory(f.store))
	return f
}

func (f *fixture) build(factory unitofwork.RepositoryFactory) INoteService {
	return NewNoteService(factory, f.guard, f.jobs, f.events, logger.NewNop())
}

// stored reloads the board from the store.
func (f *fixture) stored(t *testing.T) ordering.Snapshot {
	t.Helper()
	notes, err := memory.NewNoteRepository(f.store).LoadActiveNotes(context.Background(), f.user)
	require.NoError(t, err)
	snap, err := ordering.NewSnapshot(notes)
	require.NoError(t, err)
	return snap
}

func (f *fixture) note(t *testing.T, id int64) *entity.Note {
	t.Helper()
	n, err := memory.NewNoteRepository(f.store).FindByID(context.Background(), f.user, id)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func boardIds(b *dto.NoteBoardResponse) (pinned, unpinned []int64) {
	pinned, unpinned = []int64{}, []int64{}
	for _, n := range b.Pinned {
		pinned = append(pinned, n.Id)
	}
	for _, n := range b.Unpinned {
		unpinned = append(unpinned, n.Id)
	}
	return pinned, unpinned
}

func seq(s string) *string { return &s }

func TestMove_WithinPinned(t *testing.T) {
	f := newFixture(t)

	board, err := f.service.Move(context.Background(), f.user, &dto.MoveNoteRequest{
		NoteId: noteA, SequenceId: "pinned", FromIndex: 0, ToIndex: 2,
	})
	require.NoError(t, err)

	pinned, unpinned := boardIds(board)
	assert.Equal(t, []int64{noteB, noteC, noteA}, pinned)
	assert.Equal(t, []int64{noteD, noteE}, unpinned)
	for i, n := range board.Pinned {
		assert.Equal(t, i, n.DisplayOrder)
	}

	stored := f.stored(t)
	assert.Equal(t, []int64{noteB, noteC, noteA}, stored.IDs(ordering.Pinned))
	assert.True(t, stored.IsCanonical())
	assert.Equal(t, []string{events.NotesReordered}, f.events.types())
}

func TestMove_TransferCommitsPinFlagWithBatch(t *testing.T) {
	f := newFixture(t)

	board, err := f.service.Move(context.Background(), f.user, &dto.MoveNoteRequest{
		SequenceId: "unpinned", FromIndex: 0, ToIndex: 0, TargetSequence: seq("pinned"),
	})
	require.NoError(t, err)

	pinned, unpinned := boardIds(board)
	assert.Equal(t, []int64{noteD, noteA, noteB, noteC}, pinned)
	assert.Equal(t, []int64{noteE}, unpinned)
	assert.True(t, board.Pinned[0].IsPinned)

	assert.True(t, f.note(t, noteD).IsPinned)
	stored := f.stored(t)
	assert.Equal(t, []int64{noteD, noteA, noteB, noteC}, stored.IDs(ordering.Pinned))
	assert.Equal(t, []int64{noteE}, stored.IDs(ordering.Unpinned))
	assert.True(t, stored.IsCanonical())
}

var errBatchFailed = errors.New("batch write failed")

type failingFactory struct {
	inner unitofwork.RepositoryFactory
}

func (f failingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return failingUnitOfWork{f.inner.NewUnitOfWork(ctx)}
}

type failingUnitOfWork struct {
	unitofwork.UnitOfWork
}

func (u failingUnitOfWork) NoteRepository() contract.NoteRepository {
	return failingRepository{u.UnitOfWork.NoteRepository()}
}

type failingRepository struct {
	contract.NoteRepository
}

func (r failingRepository) ApplyOrderBatch(ctx context.Context, userId uuid.UUID, items []entity.NoteOrderItem) error {
	return errBatchFailed
}

func TestMove_TransferRollsBackPinFlagWhenBatchFails(t *testing.T) {
	f := newFixture(t)
	svc := f.build(failingFactory{memory.NewRepositoryFactory(f.store)})

	_, err := svc.Move(context.Background(), f.user, &dto.MoveNoteRequest{
		SequenceId: "unpinned", FromIndex: 0, ToIndex: 0, TargetSequence: seq("pinned"),
	})
	require.ErrorIs(t, err, errBatchFailed)

	assert.False(t, f.note(t, noteD).IsPinned)
	stored := f.stored(t)
	assert.Equal(t, []int64{noteA, noteB, noteC}, stored.IDs(ordering.Pinned))
	assert.Equal(t, []int64{noteD, noteE}, stored.IDs(ordering.Unpinned))
	assert.Empty(t, f.events.types())
}

func TestMove_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  dto.MoveNoteRequest
		want error
	}{
		{"stale note id", dto.MoveNoteRequest{NoteId: noteB, SequenceId: "pinned", FromIndex: 0, ToIndex: 1}, ordering.ErrStateInconsistency},
		{"from out of range", dto.MoveNoteRequest{SequenceId: "pinned", FromIndex: 3, ToIndex: 0}, ordering.ErrIndexOutOfRange},
		{"to out of range", dto.MoveNoteRequest{SequenceId: "unpinned", FromIndex: 0, ToIndex: 2}, ordering.ErrIndexOutOfRange},
		{"transfer past end", dto.MoveNoteRequest{SequenceId: "unpinned", FromIndex: 0, ToIndex: 4, TargetSequence: seq("pinned")}, ordering.ErrIndexOutOfRange},
		{"unknown sequence", dto.MoveNoteRequest{SequenceId: "archived", FromIndex: 0, ToIndex: 0}, ordering.ErrUnknownSequence},
		{"negative from with note id", dto.MoveNoteRequest{NoteId: noteA, SequenceId: "pinned", FromIndex: -1, ToIndex: 0}, ordering.ErrIndexOutOfRange},
		{"negative from transfer with note id", dto.MoveNoteRequest{NoteId: noteD, SequenceId: "unpinned", FromIndex: -1, ToIndex: 0, TargetSequence: seq("pinned")}, ordering.ErrIndexOutOfRange},
		{"from past end with note id", dto.MoveNoteRequest{NoteId: noteA, SequenceId: "pinned", FromIndex: 3, ToIndex: 0}, ordering.ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.stored(t)

			var err error
			require.NotPanics(t, func() {
				_, err = f.service.Move(context.Background(), f.user, &tt.req)
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, f.stored(t))
		})
	}
}

func TestMove_SameIndexWritesNothing(t *testing.T) {
	f := newFixture(t)
	before := f.note(t, noteB)

	board, err := f.service.Move(context.Background(), f.user, &dto.MoveNoteRequest{
		SequenceId: "pinned", FromIndex: 1, ToIndex: 1,
	})
	require.NoError(t, err)

	pinned, _ := boardIds(board)
	assert.Equal(t, []int64{noteA, noteB, noteC}, pinned)
	assert.Equal(t, before.UpdatedAt, f.note(t, noteB).UpdatedAt)
}

func TestMove_ReorderInProgress(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.guard.Acquire(f.user))

	_, err := f.service.Move(context.Background(), f.user, &dto.MoveNoteRequest{
		SequenceId: "pinned", FromIndex: 0, ToIndex: 1,
	})
	assert.ErrorIs(t, err, ErrReorderInProgress)

	f.guard.Release(f.user)
	_, err = f.service.Move(context.Background(), f.user, &dto.MoveNoteRequest{
		SequenceId: "pinned", FromIndex: 0, ToIndex: 1,
	})
	assert.NoError(t, err)
}

func TestTogglePin_MovesToEndOfOtherSequence(t *testing.T) {
	f := newFixture(t)

	board, err := f.service.TogglePin(context.Background(), f.user, noteB)
	require.NoError(t, err)

	pinned, unpinned := boardIds(board)
	assert.Equal(t, []int64{noteA, noteC}, pinned)
	assert.Equal(t, []int64{noteD, noteE, noteB}, unpinned)

	stored := f.stored(t)
	assert.Equal(t, []int64{noteD, noteE, noteB}, stored.IDs(ordering.Unpinned))
	assert.True(t, stored.IsCanonical())
	assert.False(t, f.note(t, noteB).IsPinned)
}

func TestTogglePin_ArchivedNoteOnlyFlipsFlag(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.Archive(context.Background(), f.user, noteD))

	_, err := f.service.TogglePin(context.Background(), f.user, noteD)
	require.NoError(t, err)

	d := f.note(t, noteD)
	assert.True(t, d.IsPinned)
	assert.Equal(t, 0, d.DisplayOrder)
}

func TestTogglePin_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.TogglePin(context.Background(), uuid.New(), noteA)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.service.Create(ctx, f.user, &dto.CreateNoteRequest{Title: "F", IsPinned: true, Color: " #fbbc04 "})
	require.NoError(t, err)
	assert.Equal(t, 3, res.DisplayOrder)
	assert.Equal(t, "#FBBC04", f.note(t, res.Id).Color)

	other := uuid.New()
	res, err = f.service.Create(ctx, other, &dto.CreateNoteRequest{Content: "first note"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.DisplayOrder)

	shown, err := f.service.Show(ctx, other, res.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultNoteColor, shown.Color)

	assert.Contains(t, f.events.types(), events.NoteCreated)
}

func TestCreate_Rejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.user, &dto.CreateNoteRequest{Title: "  ", Content: "\n"})
	assert.ErrorIs(t, err, rules.ErrEmptyNote)

	_, err = f.service.Create(context.Background(), f.user, &dto.CreateNoteRequest{Title: "x", Color: "#123456"})
	assert.Equal(t, rules.ReasonColorNotAllowed, rules.ReasonOf(err))
}

func TestUpdate_TriState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Update(ctx, f.user, &dto.UpdateNoteRequest{Id: noteA, Content: dto.Text("body")})
	require.NoError(t, err)
	a := f.note(t, noteA)
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "body", a.Content)

	_, err = f.service.Update(ctx, f.user, &dto.UpdateNoteRequest{Id: noteA, Title: dto.Clear()})
	require.NoError(t, err)
	a = f.note(t, noteA)
	assert.Equal(t, "", a.Title)
	assert.Equal(t, "body", a.Content)

	_, err = f.service.Update(ctx, f.user, &dto.UpdateNoteRequest{Id: noteA, Content: dto.Text("   ")})
	assert.Equal(t, rules.ReasonEmptyNote, rules.ReasonOf(err))
	assert.Equal(t, "body", f.note(t, noteA).Content)

	_, err = f.service.Update(ctx, f.user, &dto.UpdateNoteRequest{Id: noteB, Title: dto.Clear(), Content: dto.Clear()})
	assert.Equal(t, rules.ReasonEmptyNote, rules.ReasonOf(err))

	_, err = f.service.Update(ctx, f.user, &dto.UpdateNoteRequest{Id: 99, Title: dto.Text("x")})
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestChangeColor(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.ChangeColor(context.Background(), f.user, &dto.ChangeColorRequest{Id: noteC, Color: "#aecbfa"})
	require.NoError(t, err)
	assert.Equal(t, "#AECBFA", res.Color)
	assert.Equal(t, 2, res.DisplayOrder)

	_, err = f.service.ChangeColor(context.Background(), f.user, &dto.ChangeColorRequest{Id: noteC, Color: "blue"})
	assert.Equal(t, rules.ReasonInvalidColorFormat, rules.ReasonOf(err))
}

func TestArchiveAndUnarchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Archive(ctx, f.user, noteB))
	assert.Equal(t, []int64{noteA, noteC}, f.stored(t).IDs(ordering.Pinned))

	archived, err := f.service.Archived(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, noteB, archived[0].Id)

	require.NoError(t, f.service.Unarchive(ctx, f.user, noteB))
	stored := f.stored(t)
	assert.Equal(t, []int64{noteA, noteC, noteB}, stored.IDs(ordering.Pinned))
	assert.Equal(t, 3, f.note(t, noteB).DisplayOrder)

	require.NoError(t, f.service.Unarchive(ctx, f.user, noteB), "unarchiving an active note is a no-op")
	assert.Equal(t, 3, f.note(t, noteB).DisplayOrder)
}

func TestDeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Delete(ctx, f.user, noteD))
	require.NoError(t, f.service.Delete(ctx, f.user, noteD))
	assert.Equal(t, []int64{noteE}, f.stored(t).IDs(ordering.Unpinned))

	trash, err := f.service.Trash(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.True(t, trash[0].IsDeleted)

	require.NoError(t, f.service.Restore(ctx, f.user, noteD))
	assert.Equal(t, []int64{noteE, noteD}, f.stored(t).IDs(ordering.Unpinned))
	assert.Equal(t, 2, f.note(t, noteD).DisplayOrder)

	assert.ErrorIs(t, f.service.Delete(ctx, f.user, 99), ErrNoteNotFound)
}

func TestRestore_ArchivedNoteKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Archive(ctx, f.user, noteE))
	require.NoError(t, f.service.Delete(ctx, f.user, noteE))
	require.NoError(t, f.service.Restore(ctx, f.user, noteE))

	e := f.note(t, noteE)
	assert.True(t, e.IsArchived)
	assert.False(t, e.IsDeleted)
	assert.Equal(t, 1, e.DisplayOrder)
}

func TestBulkDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.service.BulkDelete(ctx, f.user, &dto.BulkDeleteRequest{Ids: []int64{noteA, noteE, 99}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Deleted)

	_, err = f.service.BulkDelete(ctx, f.user, &dto.BulkDeleteRequest{Ids: []int64{noteB, noteB}})
	assert.ErrorIs(t, err, rules.ErrDuplicateIds)

	_, err = f.service.BulkDelete(ctx, f.user, &dto.BulkDeleteRequest{})
	assert.ErrorIs(t, err, rules.ErrNoIdsProvided)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.store.AttachLabel(noteE, "Travel"))
	_, err := f.service.Update(ctx, f.user, &dto.UpdateNoteRequest{Id: noteB, Content: dto.Text("plan the travel budget")})
	require.NoError(t, err)

	board, err := f.service.Search(ctx, f.user, " TRAVEL ")
	require.NoError(t, err)
	pinned, unpinned := boardIds(board)
	assert.Equal(t, []int64{noteB}, pinned)
	assert.Equal(t, []int64{noteE}, unpinned)

	_, err = f.service.Search(ctx, f.user, " a ")
	assert.ErrorIs(t, err, rules.ErrQueryTooShort)
}

func TestSaveOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.service.SaveOrder(ctx, f.user, &dto.ReorderNotesRequest{NoteOrders: []dto.NoteOrderItem{
		{NoteId: noteE, DisplayOrder: 0},
		{NoteId: noteD, DisplayOrder: 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	_, unpinned := boardIds(res.Board)
	assert.Equal(t, []int64{noteE, noteD}, unpinned)
	assert.Equal(t, []int64{noteE, noteD}, f.stored(t).IDs(ordering.Unpinned))

	_, err = f.service.SaveOrder(ctx, f.user, &dto.ReorderNotesRequest{NoteOrders: []dto.NoteOrderItem{
		{NoteId: noteA, DisplayOrder: 1},
	}})
	assert.ErrorIs(t, err, ordering.ErrStateInconsistency)

	_, err = f.service.SaveOrder(ctx, f.user, &dto.ReorderNotesRequest{NoteOrders: []dto.NoteOrderItem{
		{NoteId: noteA, DisplayOrder: -1},
	}})
	assert.ErrorIs(t, err, rules.ErrInvalidDisplayOrder)
}

func TestSaveOrder_RejectsOrderBeyondSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.stored(t)

	_, err := f.service.SaveOrder(ctx, f.user, &dto.ReorderNotesRequest{NoteOrders: []dto.NoteOrderItem{
		{NoteId: noteD, DisplayOrder: math.MaxInt},
	}})
	assert.ErrorIs(t, err, rules.ErrDisplayOrderTooLarge)

	_, err = f.service.SaveOrder(ctx, f.user, &dto.ReorderNotesRequest{NoteOrders: []dto.NoteOrderItem{
		{NoteId: noteD, DisplayOrder: 2},
	}})
	assert.ErrorIs(t, err, ordering.ErrIndexOutOfRange)
	assert.Equal(t, before, f.stored(t))

	res, err := f.service.Create(ctx, f.user, &dto.CreateNoteRequest{Title: "F"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.DisplayOrder)
}

func TestBoard_LegacyOrdersQueueNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := uuid.New()
	f.store.Seed(
		&entity.Note{Id: 20, UserId: legacy, Title: "x"},
		&entity.Note{Id: 21, UserId: legacy, Title: "y"},
		&entity.Note{Id: 22, UserId: legacy, Title: "z"},
	)

	board, err := f.service.Board(ctx, legacy)
	require.NoError(t, err)
	_, unpinned := boardIds(board)
	assert.Equal(t, []int64{20, 21, 22}, unpinned)
	require.Len(t, f.jobs.payloads, 1)
	assert.JSONEq(t, `{"user_id":"`+legacy.String()+`"}`, string(f.jobs.payloads[0]))

	changed, err := f.service.NormalizeOrder(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	_, err = f.service.Board(ctx, legacy)
	require.NoError(t, err)
	assert.Len(t, f.jobs.payloads, 1)
}

func TestEventsCarryUserId(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.Archive(context.Background(), f.user, noteA))

	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.NoteArchived, f.events.events[0].EventType())
	assert.Equal(t, f.user.String(), f.events.events[0].Payload()["user_id"])
}
