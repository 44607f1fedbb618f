package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fsum/pkg/fsum/checksum"
	"github.com/jamesainslie/fsum/pkg/fsum/diff"
	"github.com/jamesainslie/fsum/pkg/fsum/output"
)

var createCmd = &cobra.Command{
	Use:   "create [path]",
	Short: "Create a checksum manifest for a directory tree",
	Long: `Scan a directory tree, checksum every file and write the manifest.

An existing manifest is replaced. Use update to refresh a manifest while
reusing checksums of unmodified files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(_ *cobra.Command, args []string) error {
	return runManifest(args, false)
}

// runManifest executes a create or update run and renders its summary.
// Shared by the create and update commands; update mode merges against the
// existing manifest and reports per-file changes.
func runManifest(args []string, update bool) error {
	env, err := setupRun(args)
	if err != nil {
		return err
	}
	defer finishRun(env)

	result, err := executeManifest(env, update)
	if err != nil {
		return err
	}
	if err := render(result); err != nil {
		return err
	}

	if update && result.HasChanges() {
		exitCode = 1
	}
	return nil
}

// executeManifest runs the scan-and-merge pass and assembles its summary,
// including the per-file change list an update run reports.
func executeManifest(env *runEnv, update bool) (*output.Result, error) {
	typ, err := checksumType()
	if err != nil {
		return nil, err
	}
	fltr, err := buildFilter(env.cfg)
	if err != nil {
		return nil, err
	}

	opts := diff.Options{
		Root:           env.root,
		Names:          env.names,
		Checksum:       checksum.NewCalculator(typ, viper.GetInt("block_size"), env.stop),
		AlwaysChecksum: viper.GetBool("always_checksum") || env.cfg.AlwaysChecksum,
		Filter:         fltr,
		Stop:           env.stop,
		Update:         update,
	}
	var changes []output.Change
	if update && !viper.GetBool("no_update_messages") {
		opts.OnChange = func(class diff.Class, path string) {
			changes = append(changes, output.Change{Kind: class.String(), Path: path})
		}
	}

	stats, err := diff.Run(opts)
	if err != nil {
		return nil, err
	}

	command := "create"
	if update {
		command = "update"
	}
	return &output.Result{
		Command:     command,
		Source:      env.root,
		Manifest:    env.names.Final,
		Changes:     changes,
		Dirs:        stats.Dirs,
		Files:       stats.Files,
		TotalSize:   stats.TotalSize,
		Unchanged:   stats.Unchanged,
		Changed:     stats.Changed,
		Added:       stats.Added,
		Removed:     stats.Removed,
		Failures:    stats.Failures,
		Duration:    time.Since(env.started),
		Interrupted: stats.Interrupted,
	}, nil
}
