// Package config provides configuration management for the fsum checksum tool.
package config

// Default configuration values for fsum.
const (
	// DefaultChecksumFile is the manifest file name used when none is given.
	DefaultChecksumFile = "FileChecksums.txt"

	// DefaultChecksumType is the checksum algorithm used when none is given.
	DefaultChecksumType = "crc32"

	// DefaultBlockSize is the read block size for checksum computation.
	DefaultBlockSize = 128 * 1024

	// DefaultCheckpointSeconds is how often, in seconds, a verification run
	// rewrites its checkpoint file.
	DefaultCheckpointSeconds = 60

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/fsum"
)
