// Migrate command for the coursedb CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openedu-labs/coursedb/pkg/coursedb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Re-apply the course schema to every registered course database",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		if err := svc.MigrateAll(cmd.Context(), coursedb.DefaultSchema()); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Migrated %d course database(s)\n", len(svc.Courses()))
		return nil
	},
}
