package dto

import (
	"time"
)

type CreateNoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Color    string `json:"color"`
	IsPinned bool   `json:"is_pinned"`
}

type CreateNoteResponse struct {
	Id           int64 `json:"id"`
	DisplayOrder int   `json:"display_order"`
}

type UpdateNoteRequest struct {
	Id      int64        `json:"-"`
	Title   OptionalText `json:"title"`
	Content OptionalText `json:"content"`
}

type UpdateNoteResponse struct {
	Id int64 `json:"id"`
}

type ChangeColorRequest struct {
	Id    int64  `json:"-"`
	Color string `json:"color"`
}

type LabelResponse struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type ShowNoteResponse struct {
	Id           int64           `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Color        string          `json:"color"`
	IsPinned     bool            `json:"is_pinned"`
	IsArchived   bool            `json:"is_archived"`
	IsDeleted    bool            `json:"is_deleted"`
	DisplayOrder int             `json:"display_order"`
	Labels       []LabelResponse `json:"labels"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at"`
}

// NoteBoardResponse is the two-sequence view the client renders.
type NoteBoardResponse struct {
	Pinned   []*ShowNoteResponse `json:"pinned"`
	Unpinned []*ShowNoteResponse `json:"unpinned"`
}

// MoveNoteRequest is raised by the client when a drag completes.
// NoteId is optional; when set it must match the note found at FromIndex.
type MoveNoteRequest struct {
	NoteId         int64   `json:"note_id" validate:"omitempty,gt=0"`
	SequenceId     string  `json:"sequence_id" validate:"required,oneof=pinned unpinned"`
	FromIndex      int     `json:"from_index"`
	ToIndex        int     `json:"to_index"`
	TargetSequence *string `json:"target_sequence_id" validate:"omitempty,oneof=pinned unpinned"`
}

type NoteOrderItem struct {
	NoteId       int64 `json:"note_id"`
	DisplayOrder int   `json:"display_order"`
}

type ReorderNotesRequest struct {
	NoteOrders []NoteOrderItem `json:"note_orders"`
}

type ReorderNotesResponse struct {
	Updated int                `json:"updated"`
	Board   *NoteBoardResponse `json:"board"`
}

type BulkDeleteRequest struct {
	Ids []int64 `json:"ids"`
}

type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type PublishNormalizeOrderMessage struct {
	UserId string `json:"user_id"`
}
