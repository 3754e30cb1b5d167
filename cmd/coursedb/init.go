// Init command for the coursedb CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the data directory and registry",
	Long:  `Initialize creates the data directory, an empty connection registry, and the default database location so worker processes can start against them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		dataDir, err := resolveDataDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		fmt.Printf("Initialized coursedb data directory at %s\n", dataDir)
		return nil
	},
}
