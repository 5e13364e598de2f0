package specification

import "gorm.io/gorm"

// Specification narrows or shapes a note query. Repositories apply them in
// the order given.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
