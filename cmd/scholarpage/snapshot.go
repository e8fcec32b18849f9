package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var snapshotYes bool

var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Aliases: []string{"versions"},
	Short:   "Manage the version history",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		snaps, err := a.Site.Snapshots()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No snapshots.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tLABEL")
		for _, s := range snaps {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Time().Local().Format("2006-01-02 15:04:05"), s.Label)
		}
		return tw.Flush()
	},
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create [label]",
	Short: "Save the current site as a snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		label := ""
		if len(args) == 1 {
			label = args[0]
		}
		snap, err := a.Site.CreateSnapshot(label)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created snapshot %d (%s)\n", snap.ID, snap.Label)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Replace the site with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Site.Snapshot(id); err != nil {
			return err
		}
		if !snapshotYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Restore snapshot %d? Current data is saved first.", id)) {
			return fmt.Errorf("restore cancelled")
		}
		snap, err := a.Site.RestoreSnapshot(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %d (%s)\n", snap.ID, snap.Label)
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Site.DeleteSnapshot(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %d\n", id)
		return nil
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !snapshotYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all snapshots?") {
			return fmt.Errorf("clear cancelled")
		}
		if err := a.Site.ClearSnapshots(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Version history cleared")
		return nil
	},
}

func parseSnapshotID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot id %q", s)
	}
	return id, nil
}

func init() {
	snapshotCmd.PersistentFlags().BoolVarP(&snapshotYes, "yes", "y", false, "skip confirmation prompts")
	snapshotCmd.AddCommand(snapshotListCmd, snapshotCreateCmd, snapshotRestoreCmd, snapshotDeleteCmd, snapshotClearCmd)
	rootCmd.AddCommand(snapshotCmd)
}
