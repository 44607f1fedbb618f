// Package treepath defines the ordering domain shared by the directory
// scanner, the manifest codec and the merge engine: validated relative paths,
// directory stacks, and the byte-wise comparator that all three must agree on.
//
// Comparison is always over the raw UTF-8 bytes of a name, never locale
// aware, so the ordering is identical on every platform and matches the
// order entries are stored in a manifest.
package treepath

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Separator joins path components in manifest entries regardless of the
// host OS separator.
const Separator = "/"

// ErrInvalidName is returned for names that cannot participate in ordering.
var ErrInvalidName = errors.New("invalid path component")

// ValidateName checks a single path component received from the OS before it
// is allowed into comparison logic or a manifest. It rejects byte sequences
// that are not valid UTF-8 and components that would corrupt a relative path.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: not valid UTF-8: %q", ErrInvalidName, name)
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: contains separator: %q", ErrInvalidName, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// CompareNames compares two names byte-wise. Go string comparison is already
// a byte comparison of the UTF-8 encoding, which is exactly the contract.
func CompareNames(a, b string) int {
	return strings.Compare(a, b)
}

// Stack is an ordered list of path components: either the scanner's current
// directory nesting or the directory portion of a manifest entry path.
type Stack []string

// Compare orders two stacks array-wise: successive components are compared
// with CompareNames, and a shorter stack that is a strict prefix of the
// other sorts first.
func (s Stack) Compare(o Stack) int {
	n := len(s)
	if len(o) < n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		if c := CompareNames(s[i], o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(s) < len(o):
		return -1
	case len(s) > len(o):
		return 1
	default:
		return 0
	}
}

// Equal reports whether both stacks hold the same components.
func (s Stack) Equal(o Stack) bool {
	return s.Compare(o) == 0
}

// Push returns a new stack with name appended. The receiver is not modified,
// so a caller can hold a stack across a recursive call without a paired pop.
func (s Stack) Push(name string) Stack {
	out := make(Stack, len(s)+1)
	copy(out, s)
	out[len(s)] = name
	return out
}

// Join renders the stack as a relative path using the manifest separator.
func (s Stack) Join() string {
	return strings.Join(s, Separator)
}

// File renders the path of a file named name inside the directory s.
func (s Stack) File(name string) string {
	if len(s) == 0 {
		return name
	}
	return s.Join() + Separator + name
}

// Split parses a relative manifest path into its directory stack and final
// name component. It validates every component.
func Split(rel string) (Stack, string, error) {
	if rel == "" {
		return nil, "", fmt.Errorf("%w: empty path", ErrInvalidName)
	}
	parts := strings.Split(rel, Separator)
	for _, p := range parts {
		if err := ValidateName(p); err != nil {
			return nil, "", fmt.Errorf("path %q: %w", rel, err)
		}
	}
	if len(parts) == 1 {
		return nil, parts[0], nil
	}
	return Stack(parts[:len(parts)-1]), parts[len(parts)-1], nil
}
