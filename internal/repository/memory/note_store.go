package memory

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"notekeep-be/internal/entity"

	"github.com/google/uuid"
)

// NoteStore keeps notes in process memory. It backs STORAGE_DRIVER=memory and
// the service tests. Writes made outside a unit of work and whole transactions
// are serialized on txMu; mu guards the maps for single operations.
type NoteStore struct {
	txMu sync.Mutex

	mu      sync.RWMutex
	notes   map[int64]*entity.Note
	nextId  int64
	labelId int64
}

func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes: make(map[int64]*entity.Note),
	}
}

// Seed stores a note as given, id included. Used to load fixtures and legacy
// rows with arbitrary display orders.
func (s *NoteStore) Seed(notes ...*entity.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range notes {
		c := cloneNote(n)
		if c.Id == 0 {
			s.nextId++
			c.Id = s.nextId
		} else if c.Id > s.nextId {
			s.nextId = c.Id
		}
		if c.Color == "" {
			c.Color = entity.DefaultNoteColor
		}
		s.notes[c.Id] = c
	}
}

// AttachLabel adds a label to a note. Returns false if the note is unknown.
func (s *NoteStore) AttachLabel(noteId int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[noteId]
	if !ok {
		return false
	}
	s.labelId++
	n.Labels = append(n.Labels, entity.Label{Id: s.labelId, UserId: n.UserId, Name: name})
	return true
}

func (s *NoteStore) get(userId uuid.UUID, id int64) *entity.Note {
	n, ok := s.notes[id]
	if !ok || n.UserId != userId {
		return nil
	}
	return n
}

func (s *NoteStore) filter(userId uuid.UUID, keep func(*entity.Note) bool) []*entity.Note {
	out := make([]*entity.Note, 0)
	for _, n := range s.notes {
		if n.UserId == userId && keep(n) {
			out = append(out, cloneNote(n))
		}
	}
	return out
}

// snapshot and restore back the memory unit of work.
func (s *NoteStore) snapshot() (map[int64]*entity.Note, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make(map[int64]*entity.Note, len(s.notes))
	for id, n := range s.notes {
		notes[id] = cloneNote(n)
	}
	return notes, s.nextId
}

func (s *NoteStore) restore(notes map[int64]*entity.Note, nextId int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = notes
	s.nextId = nextId
}

func cloneNote(n *entity.Note) *entity.Note {
	c := *n
	c.Labels = slices.Clone(n.Labels)
	if n.UpdatedAt != nil {
		t := *n.UpdatedAt
		c.UpdatedAt = &t
	}
	if n.DeletedAt != nil {
		t := *n.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func sortBoard(notes []*entity.Note) {
	slices.SortFunc(notes, func(a, b *entity.Note) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return compareIds(a.Id, b.Id)
	})
}

func sortByTimeDesc(notes []*entity.Note, at func(*entity.Note) time.Time) {
	slices.SortFunc(notes, func(a, b *entity.Note) int {
		if c := at(b).Compare(at(a)); c != 0 {
			return c
		}
		return compareIds(a.Id, b.Id)
	})
}

func compareIds(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func matches(n *entity.Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	for _, l := range n.Labels {
		if strings.Contains(strings.ToLower(l.Name), needle) {
			return true
		}
	}
	return false
}
