package main

import (
	"context"
	"testing"

	"notekeep-be/internal/entity"
	"notekeep-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingRenumber_ReportsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	legacy, tidy := uuid.New(), uuid.New()
	store := memory.NewNoteStore()
	store.Seed(
		&entity.Note{Id: 1, UserId: legacy, Title: "a"},
		&entity.Note{Id: 2, UserId: legacy, Title: "b"},
		&entity.Note{Id: 3, UserId: legacy, Title: "c", DisplayOrder: 7},
		&entity.Note{Id: 4, UserId: tidy, Title: "d", DisplayOrder: 0},
		&entity.Note{Id: 5, UserId: tidy, Title: "e", DisplayOrder: 1},
	)
	repo := memory.NewNoteRepository(store)

	n, err := pendingRenumber(ctx, repo, legacy)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = pendingRenumber(ctx, repo, tidy)
	require.NoError(t, err)
	assert.Zero(t, n)

	notes, err := repo.LoadActiveNotes(ctx, legacy)
	require.NoError(t, err)
	orders := make([]int, len(notes))
	for i, note := range notes {
		orders[i] = note.DisplayOrder
	}
	assert.Equal(t, []int{0, 0, 7}, orders)
}
