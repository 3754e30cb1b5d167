// Resolve command for the coursedb CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openedu-labs/coursedb/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <course-id>",
	Short: "Print the registered connection descriptor for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID := args[0]

		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "resolve:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		rec, err := svc.Resolve(courseID)
		if err != nil {
			if errors.Is(err, types.ErrUnknownCourse) {
				fmt.Fprintf(os.Stderr, "unknown course %q\n", courseID)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "resolve:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
		} else {
			fmt.Printf("%s\t%s\t%s\n", rec.CourseID(), rec.Params.Driver, rec.Params.Path)
		}
		return nil
	},
}
