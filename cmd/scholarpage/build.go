package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write a static copy of the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Build(context.Background(), buildOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Built %d files into %s\n", len(res.Files), buildOut)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "dist", "output directory")
	rootCmd.AddCommand(buildCmd)
}
