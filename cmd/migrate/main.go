package main

import (
	"fmt"
	"os"

	"notekeep-be/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema and data maintenance for the notes database",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

var (
	okStyle   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnStyle = color.New(color.FgYellow).SprintFunc()
	failStyle = color.New(color.FgRed, color.Bold).SprintFunc()
)

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", failStyle("error:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
