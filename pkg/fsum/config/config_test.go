package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChecksumFile != DefaultChecksumFile {
		t.Errorf("ChecksumFile = %q, want %q", cfg.ChecksumFile, DefaultChecksumFile)
	}

	if cfg.ChecksumType != DefaultChecksumType {
		t.Errorf("ChecksumType = %q, want %q", cfg.ChecksumType, DefaultChecksumType)
	}

	if cfg.AlwaysChecksum {
		t.Error("AlwaysChecksum = true, want false")
	}

	if cfg.BlockSize != DefaultBlockSize {
		t.Errorf("BlockSize = %d, want %d", cfg.BlockSize, DefaultBlockSize)
	}

	if cfg.Verify.CheckpointSeconds != DefaultCheckpointSeconds {
		t.Errorf("Verify.CheckpointSeconds = %d, want %d",
			cfg.Verify.CheckpointSeconds, DefaultCheckpointSeconds)
	}

	if len(cfg.Exclude) != 0 {
		t.Errorf("len(Exclude) = %d, want 0", len(cfg.Exclude))
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "fsum")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
checksum_file: Sums.txt
checksum_type: adler32
always_checksum: true
block_size: 65536
exclude:
  - \.bak$
  - ^tmp/
verify:
  checkpoint_seconds: 10
logging:
  level: debug
  console_level: error
  components:
    scanner: warn
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChecksumFile != "Sums.txt" {
		t.Errorf("ChecksumFile = %q, want %q", cfg.ChecksumFile, "Sums.txt")
	}

	if cfg.ChecksumType != "adler32" {
		t.Errorf("ChecksumType = %q, want %q", cfg.ChecksumType, "adler32")
	}

	if !cfg.AlwaysChecksum {
		t.Error("AlwaysChecksum = false, want true")
	}

	if cfg.BlockSize != 65536 {
		t.Errorf("BlockSize = %d, want 65536", cfg.BlockSize)
	}

	if len(cfg.Exclude) != 2 {
		t.Fatalf("len(Exclude) = %d, want 2", len(cfg.Exclude))
	}

	if cfg.Verify.CheckpointSeconds != 10 {
		t.Errorf("Verify.CheckpointSeconds = %d, want 10", cfg.Verify.CheckpointSeconds)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	if cfg.Logging.Components["scanner"] != "warn" {
		t.Errorf("Logging.Components[scanner] = %q, want %q",
			cfg.Logging.Components["scanner"], "warn")
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgDir := filepath.Join(tempDir, "xdg")
	configDir := filepath.Join(xdgDir, "fsum")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := "checksum_type: none\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", xdgDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChecksumType != "none" {
		t.Errorf("ChecksumType = %q, want %q", cfg.ChecksumType, "none")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("FSUM_CHECKSUM_TYPE", "adler32")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChecksumType != "adler32" {
		t.Errorf("ChecksumType = %q, want %q", cfg.ChecksumType, "adler32")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "fsum")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("checksum_file: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestWriteDefault(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	configPath := filepath.Join(tempDir, ".config", "fsum", "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// A second call must not overwrite an existing file.
	if err := os.WriteFile(configPath, []byte("checksum_type: none\n"), 0o644); err != nil {
		t.Fatalf("failed to overwrite config: %v", err)
	}
	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() second call error = %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != "checksum_type: none\n" {
		t.Error("WriteDefault() overwrote an existing config file")
	}
}
