// Package output provides formatters for displaying fsum run summaries
// in various output formats (pretty, plain).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// durationPrecision is the rounding applied to elapsed times before display.
const durationPrecision = 10 * time.Millisecond

// Change records one manifest change observed during an update run.
type Change struct {
	// Kind is the change classification: "changed", "added", or "removed".
	Kind string `json:"kind"`

	// Path is the manifest-relative path of the file.
	Path string `json:"path"`
}

// Result contains the complete summary data of one run for formatting.
type Result struct {
	// Command is the operation that produced this result: "create",
	// "update", or "verify".
	Command string `json:"command"`

	// Source is the root directory the run operated on.
	Source string `json:"source"`

	// Manifest is the path of the checksum manifest file.
	Manifest string `json:"manifest"`

	// Report is the verification report path. Empty for manifest runs.
	Report string `json:"report,omitempty"`

	// Changes lists per-file manifest changes, in manifest order.
	Changes []Change `json:"changes,omitempty"`

	// Dirs and Files count what the scan traversed.
	Dirs  uint64 `json:"dirs"`
	Files uint64 `json:"files"`

	// TotalSize is the sum of all manifest file sizes in bytes.
	TotalSize uint64 `json:"total_size"`

	// Unchanged, Changed, Added, and Removed break down an update run.
	Unchanged uint64 `json:"unchanged"`
	Changed   uint64 `json:"changed"`
	Added     uint64 `json:"added"`
	Removed   uint64 `json:"removed"`

	// Verified, Failed, and Skipped break down a verification run.
	Verified uint64 `json:"verified"`
	Failed   uint64 `json:"failed"`
	Skipped  uint64 `json:"skipped"`

	// Failures counts files and directories the scan could not read.
	Failures uint64 `json:"failures"`

	// Duration is the total run time.
	Duration time.Duration `json:"duration"`

	// Interrupted indicates the run was stopped by the user.
	Interrupted bool `json:"interrupted"`

	// NextLine is the resume entry number left behind by an interrupted
	// verification run.
	NextLine uint64 `json:"next_line,omitempty"`
}

// HasChanges reports whether an update run observed any manifest change.
func (r *Result) HasChanges() bool {
	return r.Changed > 0 || r.Added > 0 || r.Removed > 0
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
