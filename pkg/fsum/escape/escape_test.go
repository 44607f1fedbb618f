package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain name untouched", in: "report.txt", want: "report.txt"},
		{name: "unicode untouched", in: "naïve-日本語.txt", want: "naïve-日本語.txt"},
		{name: "backslash doubled", in: `a\b`, want: `a\\b`},
		{name: "tab", in: "a\tb", want: `a\tb`},
		{name: "newline", in: "a\nb", want: `a\nb`},
		{name: "carriage return", in: "a\rb", want: `a\rb`},
		{name: "bell becomes hex", in: "a\x07b", want: `a\x07b`},
		{name: "escape char", in: "a\x1bb", want: `a\x1Bb`},
		{name: "del becomes hex", in: "a\x7fb", want: `a\x7Fb`},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestUnescapeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "dangling backslash", in: `abc\`},
		{name: "unknown sequence", in: `a\qb`},
		{name: "truncated hex", in: `a\x0`},
		{name: "lowercase hex rejected", in: `a\x0ab`},
		{name: "non-hex digits", in: `a\xZZb`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Unescape(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	// Unescape(Escape(f)) == f for every filename.
	inputs := []string{
		"simple.txt",
		"with spaces and ümlauts",
		"tabs\tand\nnewlines\rhere",
		`back\slash`,
		"\x00\x01\x02\x1f\x7f",
		"mixed \x07 control \\ and text",
	}
	for _, in := range inputs {
		got, err := Unescape(Escape(in))
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, in, got)
	}
}

func TestRoundTripPrintable(t *testing.T) {
	t.Parallel()

	// Escape(Unescape(s)) == s for the printable-safe subset: strings that
	// are already valid canonical escape output.
	inputs := []string{
		"simple.txt",
		`a\\b`,
		`a\tb\nc\rd`,
		`a\x07b\x1Bc`,
		"unicode 文字",
	}
	for _, in := range inputs {
		un, err := Unescape(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, in, Escape(un))
	}
}
