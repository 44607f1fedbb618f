package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Update a checksum manifest and report changes",
	Long: `Merge the existing manifest against the current state of the tree.

Files whose size and timestamp are unchanged keep their stored checksum
without being read again. New and modified files are checksummed, deleted
files are dropped, and each change is reported as it is found. The previous
manifest is kept with a ".previous" suffix.

The exit status is 1 when any file changed, was added or was removed, and 0
when the tree matches the manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Bool("always-checksum", false, "recompute checksums even when size and timestamp match")
	updateCmd.Flags().Bool("no-update-messages", false, "suppress per-file change messages")
	_ = viper.BindPFlag("always_checksum", updateCmd.Flags().Lookup("always-checksum"))
	_ = viper.BindPFlag("no_update_messages", updateCmd.Flags().Lookup("no-update-messages"))

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(_ *cobra.Command, args []string) error {
	return runManifest(args, true)
}
