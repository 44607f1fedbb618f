package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jamesainslie/fsum/pkg/fsum/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage fsum configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/fsum/config.yaml (if set)
  2. ~/.config/fsum/config.yaml

Environment variables can override config file settings using the FSUM_ prefix:
  FSUM_CHECKSUM_TYPE=adler32
  FSUM_CHECKSUM_FILE=Sums.txt
  FSUM_BLOCK_SIZE=65536`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("checksum_file:             %s\n", cfg.ChecksumFile)
	fmt.Printf("checksum_type:             %s\n", cfg.ChecksumType)
	fmt.Printf("always_checksum:           %t\n", cfg.AlwaysChecksum)
	fmt.Printf("block_size:                %d\n", cfg.BlockSize)
	fmt.Printf("exclude:                   %v\n", cfg.Exclude)
	fmt.Printf("verify.checkpoint_seconds: %d\n", cfg.Verify.CheckpointSeconds)
	fmt.Printf("logging.level:             %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:              %s\n", cfg.Logging.Path)
	fmt.Printf("logging.console_level:     %s\n", cfg.Logging.ConsoleLevel)

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return err
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	c := exec.Command(editor, configPath)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists: %s\n", configPath)
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return err
	}

	fmt.Printf("Created config file: %s\n", configPath)
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(configDir, "config.yaml"))
	return nil
}
