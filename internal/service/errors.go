package service

import "errors"

var (
	ErrNoteNotFound      = errors.New("note not found")
	ErrReorderInProgress = errors.New("another reorder of this board is in progress")
)
