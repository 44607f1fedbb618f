// Package escape provides reversible escaping of filenames for storage in
// tab-separated manifest and report files. Control characters and the
// backslash are replaced with printable sequences so that any legal filename
// survives a round trip through a text file.
package escape

import (
	"fmt"
	"strings"
)

// hexDigits is the alphabet used for \xNN sequences.
const hexDigits = "0123456789ABCDEF"

// Escape returns s with the backslash and all ASCII control characters
// replaced by printable escape sequences. Tab, newline and carriage return
// use the conventional \t, \n and \r forms; every other control character
// (including DEL) becomes \xNN with two uppercase hex digits.
//
// Unescape(Escape(s)) == s holds for every string s.
func Escape(s string) string {
	if !needsEscaping(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7F:
			b.WriteByte('\\')
			b.WriteByte('x')
			b.WriteByte(hexDigits[r>>4])
			b.WriteByte(hexDigits[r&0xF])
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// needsEscaping reports whether s contains any character Escape rewrites.
func needsEscaping(s string) bool {
	for _, r := range s {
		if r == '\\' || r < 0x20 || r == 0x7F {
			return true
		}
	}
	return false
}

// Unescape reverses Escape. It returns an error for a dangling backslash,
// an unknown escape sequence, or a malformed \xNN sequence.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling backslash at offset %d", i-1)
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'x':
			if i+2 >= len(s) {
				return "", fmt.Errorf("truncated \\x sequence at offset %d", i-1)
			}
			hi := hexValue(s[i+1])
			lo := hexValue(s[i+2])
			if hi < 0 || lo < 0 {
				return "", fmt.Errorf("invalid \\x sequence %q at offset %d", s[i-1:i+3], i-1)
			}
			b.WriteByte(byte(hi<<4 | lo))
			i += 2
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c at offset %d", s[i], i-1)
		}
	}
	return b.String(), nil
}

// hexValue returns the value of an uppercase hex digit, or -1.
func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
