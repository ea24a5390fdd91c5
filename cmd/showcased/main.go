package main

import (
	"fmt"
	"os"

	"github.com/pxtester/showcase/internal/cli"
	"github.com/pxtester/showcase/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "showcased",
		Short: "Showcase daemon and CLI",
		Long:  "Showcase daemon for running the API server, searching the catalog and managing sessions",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SearchCmd())
	rootCmd.AddCommand(admin.SimilarCmd())
	rootCmd.AddCommand(admin.BackfillCmd())
	rootCmd.AddCommand(admin.SessionCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
