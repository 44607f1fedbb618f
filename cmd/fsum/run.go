package main

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fsum/pkg/fsum/cancel"
	"github.com/jamesainslie/fsum/pkg/fsum/config"
	"github.com/jamesainslie/fsum/pkg/fsum/logging"
	"github.com/jamesainslie/fsum/pkg/fsum/manifest"
	"github.com/jamesainslie/fsum/pkg/fsum/output"
)

// runEnv carries the per-invocation state every command needs: resolved
// paths, loaded configuration, the cancellation flag and the signal
// plumbing behind it.
type runEnv struct {
	cfg     *config.Config
	stop    *cancel.Flag
	sigCh   chan os.Signal
	runID   string
	root    string
	names   manifest.Names
	started time.Time
}

// setupRun resolves the scan root, loads configuration, initializes logging
// and installs the signal handler. Every command calls this first and
// defers finishRun.
func setupRun(args []string) (*runEnv, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s", absRoot)
		}
		return nil, fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absRoot)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := initLogging(cfg); err != nil {
		return nil, err
	}

	manifestPath := viper.GetString("checksum_file")
	if manifestPath == "" {
		manifestPath = cfg.ChecksumFile
	}
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(absRoot, manifestPath)
	}

	env := &runEnv{
		cfg:     cfg,
		stop:    &cancel.Flag{},
		sigCh:   make(chan os.Signal, 1),
		runID:   uuid.New().String(),
		root:    absRoot,
		names:   manifest.Derive(manifestPath),
		started: time.Now(),
	}

	signal.Notify(env.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-env.sigCh
		if !ok {
			return
		}
		env.stop.Set(sig)
	}()

	logging.Get("cli").Info("run started",
		"run_id", env.runID, "root", env.root, "manifest", env.names.Final)
	return env, nil
}

// finishRun tears down the signal handler and the log file. If the run was
// interrupted, the originating signal is re-raised with the default
// disposition so the exit status reflects the termination cause.
func finishRun(env *runEnv) {
	signal.Stop(env.sigCh)
	close(env.sigCh)

	if err := logging.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if env.stop.Requested() {
		if sig, ok := env.stop.Signal().(syscall.Signal); ok {
			reraise(sig)
		}
	}
}

// initLogging configures the global logger from the loaded configuration,
// with --verbose and --quiet adjusting the console level.
func initLogging(cfg *config.Config) error {
	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		ConsoleLevel: cfg.Logging.ConsoleLevel,
		Components:   cfg.Logging.Components,
	}
	if getVerbose() {
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}
	if getQuiet() {
		logCfg.ConsoleLevel = ""
	}
	return logging.Init(logCfg)
}

// render formats the run summary to stdout. Quiet mode suppresses it; the
// exit code still carries the outcome.
func render(r *output.Result) error {
	if getQuiet() {
		return nil
	}

	formatter, err := output.Get(viper.GetString("output"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return err
	}
	fmt.Print(buf.String())
	return nil
}
