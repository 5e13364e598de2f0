package specification

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NoteSearchQuery matches title, content or any attached label name.
// Matching is case-insensitive substring; LIKE wildcards in the query are literal.
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(s.Query)) + "%"
	return db.Where(
		`(LOWER(notes.title) LIKE ? ESCAPE '\' OR LOWER(notes.content) LIKE ? ESCAPE '\' OR EXISTS (
			SELECT 1 FROM note_labels
			JOIN labels ON labels.id = note_labels.label_id
			WHERE note_labels.note_id = notes.id AND LOWER(labels.name) LIKE ? ESCAPE '\'
		))`,
		pattern, pattern, pattern,
	)
}
