package main

import (
	"context"
	"fmt"

	"notekeep-be/internal/bootstrap"
	"notekeep-be/internal/ordering"
	"notekeep-be/internal/pkg/logger"
	"notekeep-be/internal/repository/contract"
	"notekeep-be/internal/repository/memory"
	"notekeep-be/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var dryRun bool

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Rewrite display orders of every board as 0..n-1",
	Long: `Renumber loads the board of every user that owns notes and rewrites
colliding or sparse display orders so both the pinned and unpinned
sequences are numbered 0..n-1 in their current order.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		uowFactory, err := bootstrap.NewStorage(cfg)
		if err != nil {
			fail("open storage: %v", err)
		}

		repo := uowFactory.NewUnitOfWork(ctx).NoteRepository()
		owners, err := repo.OwnerIds(ctx)
		if err != nil {
			fail("list owners: %v", err)
		}
		fmt.Printf("Found %d boards\n", len(owners))
		if dryRun {
			var pending int
			for _, userId := range owners {
				n, err := pendingRenumber(ctx, repo, userId)
				if err != nil {
					fmt.Printf("%s %s: %v\n", warnStyle("skip"), userId, err)
					continue
				}
				if n > 0 {
					pending++
					fmt.Printf("%s %s: %d notes would be renumbered\n", warnStyle("plan"), userId, n)
				}
			}
			fmt.Printf("%d boards would change\n", pending)
			return
		}

		noteService := service.NewNoteService(
			uowFactory,
			memory.NewReorderGuard(cfg.Ordering.ReorderLockTTL),
			nil,
			nil,
			logger.NewNop(),
		)

		var failed int
		for _, userId := range owners {
			updated, err := noteService.NormalizeOrder(ctx, userId)
			if err != nil {
				failed++
				fmt.Printf("%s %s: %v\n", warnStyle("skip"), userId, err)
				continue
			}
			if updated > 0 {
				fmt.Printf("%s %s: %d notes renumbered\n", okStyle("fixed"), userId, updated)
			}
		}

		if failed > 0 {
			fail("%d boards could not be renumbered", failed)
		}
		fmt.Println(okStyle("Renumber complete"))
	},
}

// pendingRenumber reports how many notes of userId's board a renumber would
// rewrite. Nothing is persisted.
func pendingRenumber(ctx context.Context, repo contract.NoteRepository, userId uuid.UUID) (int, error) {
	notes, err := repo.LoadActiveNotes(ctx, userId)
	if err != nil {
		return 0, err
	}
	snap, err := ordering.NewSnapshot(notes)
	if err != nil {
		return 0, err
	}
	return len(ordering.Normalize(snap).Batch), nil
}

func init() {
	renumberCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the notes each board would renumber without writing")
	rootCmd.AddCommand(renumberCmd)
}
