package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fsum/pkg/fsum/checksum"
	"github.com/jamesainslie/fsum/pkg/fsum/config"
	"github.com/jamesainslie/fsum/pkg/fsum/filter"
)

func resetRules(t *testing.T) {
	t.Helper()
	saved := cliRules
	cliRules = nil
	t.Cleanup(func() { cliRules = saved })
}

func TestRuleFlag_PreservesCommandLineOrder(t *testing.T) {
	resetRules(t)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.VarP(newRuleFlag(ruleInclude), "include", "i", "")
	fs.VarP(newRuleFlag(ruleExclude), "exclude", "e", "")

	// Interleaved include and exclude flags must keep their relative order,
	// because the first matching rule wins.
	err := fs.Parse([]string{
		"--exclude", `\.tmp$`,
		"--include", `\.txt$`,
		"--exclude", `.`,
	})
	require.NoError(t, err)

	require.Len(t, cliRules, 3)
	assert.Equal(t, filter.Spec{Pattern: `\.tmp$`, Action: filter.Exclude}, cliRules[0])
	assert.Equal(t, filter.Spec{Pattern: `\.txt$`, Action: filter.Include}, cliRules[1])
	assert.Equal(t, filter.Spec{Pattern: `.`, Action: filter.Exclude}, cliRules[2])
}

func TestBuildFilter_ConfigExcludesFirst(t *testing.T) {
	resetRules(t)
	cliRules = []filter.Spec{{Pattern: `\.log$`, Action: filter.Include}}

	cfg := &config.Config{Exclude: []string{`^cache/`}}
	f, err := buildFilter(cfg)
	require.NoError(t, err)

	// The config exclude is consulted before the CLI include. The mixed
	// rule set leaves unmatched paths included by default.
	assert.False(t, f.File("cache/a.log"))
	assert.True(t, f.File("logs/a.log"))
	assert.True(t, f.File("readme.md"))
}

func TestBuildFilter_InvalidPattern(t *testing.T) {
	resetRules(t)
	cliRules = []filter.Spec{{Pattern: `[unclosed`, Action: filter.Exclude}}

	_, err := buildFilter(&config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter rule")
}

func TestBuildFilter_NoRules(t *testing.T) {
	resetRules(t)

	f, err := buildFilter(&config.Config{})
	require.NoError(t, err)
	assert.True(t, f.File("anything.bin"))
}

func TestChecksumType(t *testing.T) {
	for name, want := range map[string]checksum.Type{
		"crc32":   checksum.CRC32,
		"adler32": checksum.Adler32,
		"none":    checksum.None,
	} {
		viper.Set("checksum_type", name)
		typ, err := checksumType()
		require.NoError(t, err, name)
		assert.Equal(t, want, typ, name)
	}

	viper.Set("checksum_type", "sha1")
	_, err := checksumType()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid checksum type")

	viper.Set("checksum_type", config.DefaultChecksumType)
}
