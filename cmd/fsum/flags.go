package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jamesainslie/fsum/pkg/fsum/checksum"
	"github.com/jamesainslie/fsum/pkg/fsum/config"
	"github.com/jamesainslie/fsum/pkg/fsum/filter"
)

// ruleKind selects which action a ruleFlag records.
type ruleKind int

const (
	ruleInclude ruleKind = iota
	ruleExclude
)

// cliRules accumulates --include and --exclude patterns in the order they
// appear on the command line. pflag calls Set once per occurrence, left to
// right, so appending to one shared slice preserves the interleaving that
// first-match-wins semantics depend on.
var cliRules []filter.Spec

// ruleFlag is a pflag.Value that appends one filter rule per occurrence.
type ruleFlag struct {
	kind ruleKind
}

func newRuleFlag(kind ruleKind) *ruleFlag {
	return &ruleFlag{kind: kind}
}

func (f *ruleFlag) String() string { return "" }

func (f *ruleFlag) Type() string { return "regexp" }

func (f *ruleFlag) Set(value string) error {
	action := filter.Include
	if f.kind == ruleExclude {
		action = filter.Exclude
	}
	cliRules = append(cliRules, filter.Spec{Pattern: value, Action: action})
	return nil
}

// buildFilter compiles the effective rule set: configuration-file excludes
// first, then the command-line rules in their given order.
func buildFilter(cfg *config.Config) (*filter.Filter, error) {
	specs := make([]filter.Spec, 0, len(cfg.Exclude)+len(cliRules))
	for _, pattern := range cfg.Exclude {
		specs = append(specs, filter.Spec{Pattern: pattern, Action: filter.Exclude})
	}
	specs = append(specs, cliRules...)

	f, err := filter.Compile(specs)
	if err != nil {
		return nil, fmt.Errorf("invalid filter rule: %w", err)
	}
	return f, nil
}

// checksumType parses the configured checksum algorithm.
func checksumType() (checksum.Type, error) {
	name := viper.GetString("checksum_type")
	typ, err := checksum.ParseType(name)
	if err != nil {
		return 0, fmt.Errorf("invalid checksum type %q: %w", name, err)
	}
	return typ, nil
}
