package unitofwork

import (
	"context"

	"notekeep-be/internal/repository/contract"
)

// UnitOfWork hands out repositories that share one transaction between Begin
// and Commit/Rollback. Outside a transaction each call commits on its own.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
}
