// Package ordering reconciles drag-and-drop moves on a user's note board into
// persisted display orders.
//
// A board is two independent sequences, pinned and unpinned, over the active
// notes. Every operation takes a Snapshot by value and returns a new one; the
// input is never modified and nothing is kept between calls.
package ordering

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"notekeep-be/internal/entity"
)

var (
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrStateInconsistency = errors.New("board state inconsistency")
	ErrUnknownSequence    = errors.New("unknown sequence")
)

type SequenceID string

const (
	Pinned   SequenceID = "pinned"
	Unpinned SequenceID = "unpinned"
)

func ParseSequenceID(s string) (SequenceID, error) {
	switch SequenceID(s) {
	case Pinned, Unpinned:
		return SequenceID(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSequence, s)
}

// SequenceOf returns the sequence a note with the given pin flag belongs to.
func SequenceOf(isPinned bool) SequenceID {
	if isPinned {
		return Pinned
	}
	return Unpinned
}

func (s SequenceID) IsPinned() bool {
	return s == Pinned
}

func (s SequenceID) valid() bool {
	return s == Pinned || s == Unpinned
}

type Entry struct {
	NoteID       int64
	DisplayOrder int
}

type Snapshot struct {
	Pinned   []Entry
	Unpinned []Entry
}

// NewSnapshot builds the board from the notes a store returned. Inactive
// notes are dropped; each sequence is sorted by display order, ties by id.
func NewSnapshot(notes []*entity.Note) (Snapshot, error) {
	var snap Snapshot
	seen := make(map[int64]struct{}, len(notes))

	for _, n := range notes {
		if n == nil || !n.IsActive() {
			continue
		}
		if _, dup := seen[n.Id]; dup {
			return Snapshot{}, fmt.Errorf("%w: note %d listed twice", ErrStateInconsistency, n.Id)
		}
		seen[n.Id] = struct{}{}

		e := Entry{NoteID: n.Id, DisplayOrder: n.DisplayOrder}
		if n.IsPinned {
			snap.Pinned = append(snap.Pinned, e)
		} else {
			snap.Unpinned = append(snap.Unpinned, e)
		}
	}

	sortEntries(snap.Pinned)
	sortEntries(snap.Unpinned)
	return snap, nil
}

func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.NoteID, b.NoteID)
	})
}

func (s Snapshot) Sequence(id SequenceID) []Entry {
	if id == Pinned {
		return s.Pinned
	}
	return s.Unpinned
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Pinned:   slices.Clone(s.Pinned),
		Unpinned: slices.Clone(s.Unpinned),
	}
}

func (s Snapshot) Len() int {
	return len(s.Pinned) + len(s.Unpinned)
}

// Locate returns the sequence and index holding noteID.
func (s Snapshot) Locate(noteID int64) (SequenceID, int, bool) {
	for i, e := range s.Pinned {
		if e.NoteID == noteID {
			return Pinned, i, true
		}
	}
	for i, e := range s.Unpinned {
		if e.NoteID == noteID {
			return Unpinned, i, true
		}
	}
	return "", -1, false
}

// IDs returns the note ids of a sequence in render order.
func (s Snapshot) IDs(id SequenceID) []int64 {
	seq := s.Sequence(id)
	ids := make([]int64, len(seq))
	for i, e := range seq {
		ids[i] = e.NoteID
	}
	return ids
}

// IsCanonical reports whether both sequences are numbered exactly 0..n-1.
func (s Snapshot) IsCanonical() bool {
	return isCanonical(s.Pinned) && isCanonical(s.Unpinned)
}

func isCanonical(entries []Entry) bool {
	for i, e := range entries {
		if e.DisplayOrder != i {
			return false
		}
	}
	return true
}

// HasDuplicateOrders reports whether two notes of one sequence share a
// display order, which is how rows from before ordering existed look.
func (s Snapshot) HasDuplicateOrders() bool {
	return hasDuplicates(s.Pinned) || hasDuplicates(s.Unpinned)
}

func hasDuplicates(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].DisplayOrder == entries[i-1].DisplayOrder {
			return true
		}
	}
	return false
}

// NextDisplayOrder is the slot a note takes when appended to seq.
func NextDisplayOrder(seq []Entry) int {
	next := 0
	for _, e := range seq {
		if e.DisplayOrder >= next {
			next = e.DisplayOrder + 1
		}
	}
	return next
}
