package ordering

import (
	"fmt"
	"slices"

	"notekeep-be/internal/entity"
)

// Move is a drag completion raised by the client. Target is nil for a move
// inside Sequence.
type Move struct {
	Sequence  SequenceID
	FromIndex int
	ToIndex   int
	Target    *SequenceID
}

// PinChange must be committed together with the batch it came with.
type PinChange struct {
	NoteID int64
	Pinned bool
}

type Result struct {
	Snapshot  Snapshot
	Batch     []entity.NoteOrderItem
	PinChange *PinChange
}

func (r *Result) IsNoop() bool {
	return len(r.Batch) == 0 && r.PinChange == nil
}

// Apply dispatches a move to ReorderWithin or TransferBetween.
func Apply(snap Snapshot, m Move) (*Result, error) {
	if m.Target == nil || *m.Target == m.Sequence {
		return ReorderWithin(snap, m.Sequence, m.FromIndex, m.ToIndex)
	}
	return TransferBetween(snap, m.Sequence, *m.Target, m.FromIndex, m.ToIndex)
}

// ReorderWithin moves the entry at from to position to inside one sequence
// and renumbers that sequence 0..n-1.
func ReorderWithin(snap Snapshot, seq SequenceID, from, to int) (*Result, error) {
	if !seq.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSequence, seq)
	}

	entries := snap.Sequence(seq)
	if err := checkIndex("from", from, len(entries)); err != nil {
		return nil, err
	}
	if err := checkIndex("to", to, len(entries)); err != nil {
		return nil, err
	}

	if from == to {
		return &Result{Snapshot: snap.Clone()}, nil
	}

	moved := slices.Clone(entries)
	e := moved[from]
	moved = slices.Delete(moved, from, from+1)
	moved = slices.Insert(moved, to, e)

	next := snap.Clone()
	setSequence(&next, seq, renumber(moved))

	return &Result{
		Snapshot: next,
		Batch:    diff(snap, next, 0),
	}, nil
}

// TransferBetween moves the entry at from in src to position to in dst,
// renumbers both sequences and flips the note's pin flag to match dst.
// to may equal len(dst) to append.
func TransferBetween(snap Snapshot, src, dst SequenceID, from, to int) (*Result, error) {
	if !src.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSequence, src)
	}
	if !dst.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSequence, dst)
	}
	if src == dst {
		return ReorderWithin(snap, src, from, to)
	}

	source := snap.Sequence(src)
	dest := snap.Sequence(dst)
	if err := checkIndex("from", from, len(source)); err != nil {
		return nil, err
	}
	if err := checkIndex("to", to, len(dest)+1); err != nil {
		return nil, err
	}

	e := source[from]
	newSource := slices.Delete(slices.Clone(source), from, from+1)
	newDest := slices.Insert(slices.Clone(dest), to, e)

	next := snap.Clone()
	setSequence(&next, src, renumber(newSource))
	setSequence(&next, dst, renumber(newDest))

	return &Result{
		Snapshot:  next,
		Batch:     diff(snap, next, e.NoteID),
		PinChange: &PinChange{NoteID: e.NoteID, Pinned: dst.IsPinned()},
	}, nil
}

// Normalize renumbers both sequences 0..n-1 in their current order. Rows that
// predate display ordering all sit at 0 and are sorted by id until then.
func Normalize(snap Snapshot) *Result {
	next := Snapshot{
		Pinned:   renumber(snap.Pinned),
		Unpinned: renumber(snap.Unpinned),
	}
	return &Result{
		Snapshot: next,
		Batch:    diff(snap, next, 0),
	}
}

// ApplyBatch applies an explicit client ordering to the board. Every id must
// be on the board, each order must be a position in the note's sequence and
// orders must stay unique within each sequence.
func ApplyBatch(snap Snapshot, items []entity.NoteOrderItem) (*Result, error) {
	orders := make(map[int64]int, len(items))
	for _, item := range items {
		seq, _, ok := snap.Locate(item.NoteId)
		if !ok {
			return nil, fmt.Errorf("%w: note %d is not on the board", ErrStateInconsistency, item.NoteId)
		}
		if err := checkIndex("display order", item.DisplayOrder, len(snap.Sequence(seq))); err != nil {
			return nil, err
		}
		orders[item.NoteId] = item.DisplayOrder
	}

	next := snap.Clone()
	for _, seq := range []SequenceID{Pinned, Unpinned} {
		entries := next.Sequence(seq)
		used := make(map[int]int64, len(entries))
		for i := range entries {
			if order, ok := orders[entries[i].NoteID]; ok {
				entries[i].DisplayOrder = order
			}
			if other, taken := used[entries[i].DisplayOrder]; taken {
				return nil, fmt.Errorf("%w: notes %d and %d share display order %d in %s",
					ErrStateInconsistency, other, entries[i].NoteID, entries[i].DisplayOrder, seq)
			}
			used[entries[i].DisplayOrder] = entries[i].NoteID
		}
		sortEntries(entries)
	}

	return &Result{
		Snapshot: next,
		Batch:    diff(snap, next, 0),
	}, nil
}

func checkIndex(name string, idx, n int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: %s index %d not in [0, %d)", ErrIndexOutOfRange, name, idx, n)
	}
	return nil
}

func setSequence(s *Snapshot, seq SequenceID, entries []Entry) {
	if seq == Pinned {
		s.Pinned = entries
	} else {
		s.Unpinned = entries
	}
}

func renumber(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{NoteID: e.NoteID, DisplayOrder: i}
	}
	return out
}

// diff lists every entry of next whose order differs from prev, pinned
// sequence first. always is included even when its number did not change,
// which is the case for a note that changed sequence at the same slot.
func diff(prev, next Snapshot, always int64) []entity.NoteOrderItem {
	before := make(map[int64]int, prev.Len())
	for _, e := range prev.Pinned {
		before[e.NoteID] = e.DisplayOrder
	}
	for _, e := range prev.Unpinned {
		before[e.NoteID] = e.DisplayOrder
	}

	batch := make([]entity.NoteOrderItem, 0)
	for _, seq := range [][]Entry{next.Pinned, next.Unpinned} {
		for _, e := range seq {
			old, ok := before[e.NoteID]
			if ok && old == e.DisplayOrder && e.NoteID != always {
				continue
			}
			batch = append(batch, entity.NoteOrderItem{NoteId: e.NoteID, DisplayOrder: e.DisplayOrder})
		}
	}
	return batch
}
