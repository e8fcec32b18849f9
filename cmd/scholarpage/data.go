package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/scholarpage/content"
)

var (
	exportFormat string
	exportOut    string
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the site as JSON, a data.js module or Markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		encode, err := exportEncoder(exportFormat)
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return encode(w, a.Site.State().Current())
	},
}

func exportEncoder(format string) (func(io.Writer, content.Site) error, error) {
	switch format {
	case "json":
		return content.EncodeJSON, nil
	case "js":
		return func(w io.Writer, s content.Site) error { return content.EncodeDataJS(w, s, time.Now()) }, nil
	case "md", "markdown":
		return func(w io.Writer, s content.Site) error { return content.EncodeMarkdown(w, s, time.Now()) }, nil
	}
	return nil, fmt.Errorf("unknown export format %q (want json, js or md)", format)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the site with a JSON export",
	Long: `Import validates a site-data.json file and replaces the whole site with it.
The current site is saved as a snapshot first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := content.DecodeImport(f, a.Logger())
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if !importYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Replace all current data with "+args[0]+"?") {
			return fmt.Errorf("import cancelled")
		}
		if err := a.Site.Import(s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format: json, js or md")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd, importCmd)
}
