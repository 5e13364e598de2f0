package rules

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"notekeep-be/internal/dto"
	"notekeep-be/internal/entity"
)

const (
	MaxTitleLength       = 200
	MaxContentLength     = 10000
	MaxQueryLength       = 200
	MinQueryLength       = 2
	MaxBulkDeleteIds     = 100
	MaxOrderBatchEntries = 500
	MaxDisplayOrder      = math.MaxInt32
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func ValidateCreate(req *dto.CreateNoteRequest) error {
	if isBlank(req.Title) && isBlank(req.Content) {
		return ErrEmptyNote
	}

	if length(req.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if req.Title != "" && isBlank(req.Title) {
		return ErrTitleBlank
	}

	if length(req.Content) > MaxContentLength {
		return ErrContentTooLong
	}

	if !isBlank(req.Color) {
		return ValidateColor(req.Color)
	}
	return nil
}

// ValidateUpdate checks the per-field intents of an update. A cleared field
// is still length checked against what the client sent.
func ValidateUpdate(req *dto.UpdateNoteRequest) error {
	if req.Title.IsClear() && req.Content.IsClear() {
		return newError(ReasonEmptyNote, "Either title or content must have a value")
	}

	if req.Title.IsPresent() && length(req.Title.Raw()) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if req.Content.IsPresent() && length(req.Content.Raw()) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// EnsureNotEmpty guards the merged note after an update has been applied.
func EnsureNotEmpty(title, content string) error {
	if isBlank(title) && isBlank(content) {
		return ErrEmptyNote
	}
	return nil
}

func ValidateColor(color string) error {
	if isBlank(color) {
		return ErrColorRequired
	}

	color = NormalizeColor(color)

	if !hexColorPattern.MatchString(color) {
		return ErrInvalidColorFormat
	}

	if !IsPaletteColor(color) {
		return newError(ReasonColorNotAllowed,
			fmt.Sprintf("Color must be one of the predefined colors: %s", strings.Join(palette, ", ")))
	}
	return nil
}

func ValidateSearchQuery(query string) error {
	if isBlank(query) {
		return ErrEmptyQuery
	}

	trimmed := strings.TrimSpace(query)
	if length(trimmed) > MaxQueryLength {
		return ErrQueryTooLong
	}
	if length(trimmed) < MinQueryLength {
		return ErrQueryTooShort
	}
	return nil
}

func ValidateBulkDelete(ids []int64) error {
	if len(ids) == 0 {
		return ErrNoIdsProvided
	}

	if len(ids) > MaxBulkDeleteIds {
		return ErrTooManyIds
	}

	if countDistinct(ids) != len(ids) {
		return ErrDuplicateIds
	}

	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidId
		}
	}
	return nil
}

// ValidateOrderBatch checks an explicit client-supplied ordering before it is
// reconciled against the stored board.
func ValidateOrderBatch(items []entity.NoteOrderItem) error {
	if len(items) == 0 {
		return ErrNoIdsProvided
	}

	if len(items) > MaxOrderBatchEntries {
		return newError(ReasonTooManyIds,
			fmt.Sprintf("Cannot reorder more than %d notes at once", MaxOrderBatchEntries))
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.NoteId
	}
	if countDistinct(ids) != len(ids) {
		return ErrDuplicateIds
	}

	for _, item := range items {
		if item.NoteId <= 0 {
			return ErrInvalidId
		}
	}

	for _, item := range items {
		if item.DisplayOrder < 0 {
			return ErrInvalidDisplayOrder
		}
		if item.DisplayOrder > MaxDisplayOrder {
			return ErrDisplayOrderTooLarge
		}
	}
	return nil
}

func countDistinct(ids []int64) int {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
