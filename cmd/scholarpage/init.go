package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/scholarpage/scaffold"
)

var (
	initName  string
	initEmail string
)

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a starter homepage project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new homepage project: %s\n\n", dir)
		if err := scaffold.Generate(dir, scaffold.Data{Name: initName, Email: initEmail}, out); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDone! Next steps:\n\n")
		fmt.Fprintf(out, "  cd %s\n", dir)
		fmt.Fprintf(out, "  export SCHOLARPAGE_ADMIN_PASSWORD=... SCHOLARPAGE_ADMIN_SESSION_SECRET=...\n")
		fmt.Fprintf(out, "  scholarpage serve\n")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "your full name")
	initCmd.Flags().StringVar(&initEmail, "email", "", "contact email")
	rootCmd.AddCommand(initCmd)
}
