package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id           int64      `gorm:"primaryKey;autoIncrement"`
	UserId       uuid.UUID  `gorm:"type:uuid;not null;index:idx_notes_board,priority:1"`
	Title        string     `gorm:"type:varchar(200)"`
	Content      string     `gorm:"type:text"`
	Color        string     `gorm:"type:varchar(7);not null;default:'#FFFFFF'"`
	IsPinned     bool       `gorm:"not null;default:false;index:idx_notes_board,priority:2"`
	IsArchived   bool       `gorm:"not null;default:false"`
	IsDeleted    bool       `gorm:"not null;default:false;index"`
	DisplayOrder int        `gorm:"not null;default:0;index:idx_notes_board,priority:3"`
	Labels       []Label    `gorm:"many2many:note_labels;"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
	DeletedAt    *time.Time `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

type Label struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_labels_user_name,priority:1"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_labels_user_name,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Label) TableName() string {
	return "labels"
}
