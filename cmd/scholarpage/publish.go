package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/scholarpage/publish"
)

var publishDir string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build the site and upload it to the configured bucket",
	Long: `Publish builds the static site into a temporary directory, or uses --dir,
and uploads every file to publish.bucket. Credentials come from the
standard AWS environment variables or shared config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		pc := a.Config.Publish
		p, err := publish.New(ctx, publish.Config{
			Bucket:    pc.Bucket,
			Region:    pc.Region,
			Endpoint:  pc.Endpoint,
			Prefix:    pc.Prefix,
			PathStyle: pc.PathStyle,
		})
		if err != nil {
			return err
		}

		dir := publishDir
		if dir == "" {
			tmp, err := os.MkdirTemp("", "scholarpage-build-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmp)
			if _, err := a.Build(ctx, tmp); err != nil {
				return err
			}
			dir = tmp
		}

		res, err := p.Publish(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %d files (%d bytes) to s3://%s/%s\n", res.Files, res.Bytes, pc.Bucket, pc.Prefix)
		if verbose {
			for _, k := range res.Keys {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", k)
			}
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishDir, "dir", "", "upload an existing build instead of building")
	rootCmd.AddCommand(publishCmd)
}
