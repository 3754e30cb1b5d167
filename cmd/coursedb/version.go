// Version command for the coursedb CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openedu-labs/coursedb/pkg/coursedb"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("coursedb v" + coursedb.Version)
	},
}
