package main

import (
	"fmt"

	"notekeep-be/internal/model"
	"notekeep-be/pkg/database"

	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update the notes and labels tables",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.Database.Connection == "" {
			fail("DB_CONNECTION_STRING is not set")
		}

		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			fail("connect to database: %v", err)
		}

		fmt.Println("Running AutoMigrate for notes and labels...")
		if err := db.AutoMigrate(&model.Label{}, &model.Note{}); err != nil {
			fail("auto migrate: %v", err)
		}

		fmt.Println(okStyle("Migration complete"))
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
}
