// Delete command for the coursedb CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openedu-labs/coursedb/pkg/types"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <course-id>",
	Short: "Drop a course database and remove it from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID := args[0]

		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		if err := svc.DeleteCourse(cmd.Context(), courseID); err != nil {
			if errors.Is(err, types.ErrUnknownCourse) {
				fmt.Fprintf(os.Stderr, "unknown course %q\n", courseID)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Deleted course %s\n", courseID)
		return nil
	},
}
