package memory

import (
	"context"

	"notekeep-be/internal/entity"
	"notekeep-be/internal/repository/contract"
	"notekeep-be/internal/repository/unitofwork"
)

type RepositoryFactory struct {
	store *NoteStore
}

func NewRepositoryFactory(store *NoteStore) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork holds the store's transaction lock from Begin until Commit or
// Rollback. Rollback puts back the copy taken at Begin.
type UnitOfWork struct {
	store  *NoteStore
	active bool
	saved  map[int64]*entity.Note
	nextId int64
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return unitofwork.ErrTxAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.txMu.Lock()
	u.saved, u.nextId = u.store.snapshot()
	u.active = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.active {
		return unitofwork.ErrNoTransaction
	}
	u.finish()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.active {
		return unitofwork.ErrNoTransaction
	}
	u.store.restore(u.saved, u.nextId)
	u.finish()
	return nil
}

func (u *UnitOfWork) finish() {
	u.saved = nil
	u.active = false
	u.store.txMu.Unlock()
}

func (u *UnitOfWork) NoteRepository() contract.NoteRepository {
	return &NoteRepository{store: u.store, uow: u}
}
