// List command for the coursedb CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		recs := svc.Records()

		if flagJSON {
			out, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
			return nil
		}

		if len(recs) == 0 {
			fmt.Println("No courses registered")
			return nil
		}
		for _, rec := range recs {
			fmt.Printf("%s\t%s\t%s\n", rec.CourseID(), rec.Identity.DisplayName,
				rec.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}
