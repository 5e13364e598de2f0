package scope

import "gorm.io/gorm"

// ExcludeTrashed hides notes flagged as deleted. Notes use a plain flag rather
// than gorm.DeletedAt so the trash stays queryable without Unscoped.
func ExcludeTrashed(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
