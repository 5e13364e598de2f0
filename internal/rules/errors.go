package rules

import (
	"errors"
	"fmt"
)

// Reason identifies which rule rejected a mutation.
type Reason string

const (
	ReasonEmptyNote           Reason = "EMPTY_NOTE"
	ReasonTitleTooLong        Reason = "TITLE_TOO_LONG"
	ReasonTitleBlank          Reason = "TITLE_BLANK"
	ReasonContentTooLong      Reason = "CONTENT_TOO_LONG"
	ReasonColorRequired       Reason = "COLOR_REQUIRED"
	ReasonInvalidColorFormat  Reason = "INVALID_COLOR_FORMAT"
	ReasonColorNotAllowed     Reason = "COLOR_NOT_ALLOWED"
	ReasonEmptyQuery          Reason = "EMPTY_QUERY"
	ReasonQueryTooLong        Reason = "QUERY_TOO_LONG"
	ReasonQueryTooShort       Reason = "QUERY_TOO_SHORT"
	ReasonNoIdsProvided       Reason = "NO_IDS_PROVIDED"
	ReasonTooManyIds          Reason = "TOO_MANY_IDS"
	ReasonDuplicateIds        Reason = "DUPLICATE_IDS"
	ReasonInvalidId           Reason = "INVALID_ID"
	ReasonInvalidDisplayOrder Reason = "INVALID_DISPLAY_ORDER"
)

// ValidationError is a recoverable rejection of user input.
// Two ValidationErrors match under errors.Is when their reasons are equal.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

func newError(reason Reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

var (
	ErrEmptyNote           = newError(ReasonEmptyNote, "Either title or content is required")
	ErrTitleTooLong        = newError(ReasonTitleTooLong, "Title cannot exceed 200 characters")
	ErrTitleBlank          = newError(ReasonTitleBlank, "Title cannot be only whitespace")
	ErrContentTooLong      = newError(ReasonContentTooLong, "Content cannot exceed 10,000 characters")
	ErrColorRequired       = newError(ReasonColorRequired, "Color is required")
	ErrInvalidColorFormat  = newError(ReasonInvalidColorFormat, "Invalid color format. Use hex format (e.g., #FFFFFF)")
	ErrColorNotAllowed     = newError(ReasonColorNotAllowed, "Color must be one of the predefined colors")
	ErrEmptyQuery          = newError(ReasonEmptyQuery, "Search query cannot be empty")
	ErrQueryTooLong        = newError(ReasonQueryTooLong, "Search query cannot exceed 200 characters")
	ErrQueryTooShort       = newError(ReasonQueryTooShort, "Search query must be at least 2 characters long")
	ErrNoIdsProvided       = newError(ReasonNoIdsProvided, "At least one note ID is required")
	ErrTooManyIds          = newError(ReasonTooManyIds, "Cannot delete more than 100 notes at once")
	ErrDuplicateIds        = newError(ReasonDuplicateIds, "Duplicate note IDs are not allowed")
	ErrInvalidId           = newError(ReasonInvalidId, "Invalid note ID detected")
	ErrInvalidDisplayOrder = newError(ReasonInvalidDisplayOrder, "Display order cannot be negative")
)

var ErrDisplayOrderTooLarge = newError(ReasonInvalidDisplayOrder,
	fmt.Sprintf("Display order cannot exceed %d", MaxDisplayOrder))

// ReasonOf returns the reason carried by err, or "" when err is not a ValidationError.
func ReasonOf(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
