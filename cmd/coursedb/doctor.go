// Doctor command for the coursedb CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Cross-check the registry against the physical database files",
	Long: `Doctor reports disagreements between the connection registry and the
database files on disk: registered courses whose file is missing, and
orphaned files no registry entry points at. It never repairs anything;
resolving a finding is an operator decision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "doctor:", err)
			os.Exit(exitSysError)
		}
		defer svc.Close()

		findings, err := svc.Doctor(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "doctor:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(findings, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
		} else if len(findings) == 0 {
			fmt.Println("Registry and database files agree")
		} else {
			for _, f := range findings {
				fmt.Println(f)
			}
		}

		// Findings are an abnormal state operators should script against.
		if len(findings) > 0 {
			os.Exit(exitUserError)
		}
		return nil
	},
}
