// Create command for the coursedb CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openedu-labs/coursedb/pkg/coursedb"
	"github.com/openedu-labs/coursedb/pkg/types"
)

var (
	createID   string
	createName string
	createYear int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new course database and register it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if createID == "" && createName == "" {
			fmt.Fprintln(os.Stderr, "create: one of --id or --name is required")
			os.Exit(exitUserError)
		}

		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		id := createID
		if id == "" {
			year := createYear
			if year == 0 {
				year = time.Now().Year()
			}
			taken := func(candidate string) bool {
				_, err := svc.Resolve(candidate)
				return err == nil
			}
			id = types.GenerateCourseID(createName, year, taken)
		}

		ident := types.Identity{CourseID: id, DisplayName: createName}
		rec, err := svc.CreateCourse(cmd.Context(), ident, coursedb.DefaultSchema())
		if err != nil {
			switch {
			case errors.Is(err, types.ErrDuplicateCourse),
				errors.Is(err, types.ErrInvalidCourseID):
				fmt.Fprintln(os.Stderr, "create:", err)
				os.Exit(exitUserError)
			default:
				fmt.Fprintln(os.Stderr, "create:", err)
				os.Exit(exitSysError)
			}
		}

		if flagJSON {
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
		} else {
			fmt.Printf("Created course %s: %s\n", rec.CourseID(), rec.Params.Path)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createID, "id", "", "course id (lowercase letters, digits, underscore)")
	createCmd.Flags().StringVar(&createName, "name", "", "course display name (id derived from it when --id is absent)")
	createCmd.Flags().IntVar(&createYear, "year", 0, "year used when deriving the id (default: current year)")
}
