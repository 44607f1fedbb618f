package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/fsum/pkg/fsum/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "fsum",
		Short: "Create, update and verify file checksum manifests",
		Long: `fsum maintains a manifest of per-file checksums for a directory tree and
detects files that changed, appeared or disappeared since the last run.

The manifest is a plain text file sorted by path. Updates reuse stored
checksums for files whose size and timestamp are unchanged, so only new and
modified files are read. Verification re-hashes every file against the
manifest and can resume an interrupted run from a checkpoint.

Examples:
  fsum create ~/photos                 # Write FileChecksums.txt for a tree
  fsum update ~/photos                 # Refresh the manifest, report changes
  fsum verify ~/photos                 # Re-hash everything against the manifest
  fsum verify --resume ~/photos        # Continue an interrupted verification
  fsum update -e '\.tmp$' ~/photos     # Exclude paths matching a pattern`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/fsum/config.yaml)")
	rootCmd.PersistentFlags().StringP("checksum-file", "f", "", "manifest path (default: FileChecksums.txt in the scan root)")
	rootCmd.PersistentFlags().StringP("checksum-type", "t", "", "checksum algorithm: crc32, adler32, none")
	rootCmd.PersistentFlags().Int("block-size", 0, "read block size in bytes (0=default)")
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format: pretty, plain")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Ordered filter rules; see flags.go
	rootCmd.PersistentFlags().VarP(newRuleFlag(ruleInclude), "include", "i", "include only paths matching this regular expression (ordered, first match wins)")
	rootCmd.PersistentFlags().VarP(newRuleFlag(ruleExclude), "exclude", "e", "exclude paths matching this regular expression (ordered, first match wins)")

	// Bind flags to viper
	_ = viper.BindPFlag("checksum_file", rootCmd.PersistentFlags().Lookup("checksum-file"))
	_ = viper.BindPFlag("checksum_type", rootCmd.PersistentFlags().Lookup("checksum-type"))
	_ = viper.BindPFlag("block_size", rootCmd.PersistentFlags().Lookup("block-size"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "fsum"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "fsum"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("FSUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("checksum_file", config.DefaultChecksumFile)
	viper.SetDefault("checksum_type", config.DefaultChecksumType)
	viper.SetDefault("block_size", config.DefaultBlockSize)
	viper.SetDefault("verify.checkpoint_seconds", config.DefaultCheckpointSeconds)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
