package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fsum/pkg/fsum/output"
	"github.com/jamesainslie/fsum/pkg/fsum/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify a directory tree against its checksum manifest",
	Long: `Re-hash every file named in the manifest and report mismatches.

Failures (missing files, size changes, checksum mismatches) are written to a
report file next to the manifest. Progress is checkpointed periodically so an
interrupted run can continue with --resume or an explicit --resume-from-line.

The exit status is 1 when any file failed verification, and 0 when the whole
tree matches the manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("report-file", "", "report path (default: manifest path with a .report suffix)")
	verifyCmd.Flags().Uint64("resume-from-line", 0, "skip manifest entries before this 1-based entry number")
	verifyCmd.Flags().Bool("resume", false, "resume from the checkpoint left by an interrupted run")
	_ = viper.BindPFlag("report_file", verifyCmd.Flags().Lookup("report-file"))
	_ = viper.BindPFlag("resume_from_line", verifyCmd.Flags().Lookup("resume-from-line"))
	_ = viper.BindPFlag("resume", verifyCmd.Flags().Lookup("resume"))

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, args []string) error {
	env, err := setupRun(args)
	if err != nil {
		return err
	}
	defer finishRun(env)

	resumeFrom := viper.GetUint64("resume_from_line")
	if viper.GetBool("resume") {
		if resumeFrom > 0 {
			return fmt.Errorf("--resume and --resume-from-line are mutually exclusive")
		}
		resumeFrom, err = readResumePoint(env)
		if err != nil {
			return err
		}
	}

	reportPath := viper.GetString("report_file")
	if reportPath != "" && !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(env.root, reportPath)
	}

	stats, err := verify.Run(verify.Options{
		Root:               env.root,
		Names:              env.names,
		ReportPath:         reportPath,
		ResumeFromLine:     resumeFrom,
		CheckpointInterval: time.Duration(env.cfg.Verify.CheckpointSeconds) * time.Second,
		BlockSize:          viper.GetInt("block_size"),
		Stop:               env.stop,
		RunID:              env.runID,
	})
	if err != nil {
		return err
	}

	if reportPath == "" {
		reportPath = env.names.Report
	}
	result := &output.Result{
		Command:     "verify",
		Source:      env.root,
		Manifest:    env.names.Final,
		Report:      reportPath,
		Verified:    stats.Verified,
		Failed:      stats.Failed,
		Skipped:     stats.Skipped,
		Duration:    time.Since(env.started),
		Interrupted: stats.Interrupted,
		NextLine:    stats.NextLine,
	}
	if err := render(result); err != nil {
		return err
	}

	if stats.Failed > 0 {
		exitCode = 1
	}
	return nil
}

// readResumePoint loads the checkpoint left by a previous run. A missing
// checkpoint starts verification from the beginning.
func readResumePoint(env *runEnv) (uint64, error) {
	next, err := verify.ReadCheckpoint(env.names.Checkpoint)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printInfo("no checkpoint found, verifying from the beginning")
			return 0, nil
		}
		return 0, err
	}
	if next > 0 {
		printInfo("resuming from entry %d", next)
	}
	return next, nil
}
