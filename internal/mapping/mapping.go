// Package mapping provides the author-supplied character substitution table.
package mapping

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mapping looks up the display contribution for a typed character.
// Keys are single-character strings; entries with longer keys are inert
// because Resolve only ever probes by single rune. No bijectivity is
// required or enforced.
type Mapping map[string]string

// Resolve returns the display contribution for a typed rune.
// Resolution order: exact match; lower-cased match with the value
// upper-cased back when the typed rune was upper-case; otherwise the
// rune passes through unchanged.
func (m Mapping) Resolve(r rune) string {
	if v, ok := m[string(r)]; ok {
		return v
	}
	if lower := unicode.ToLower(r); lower != r {
		if v, ok := m[string(lower)]; ok {
			if unicode.IsUpper(r) {
				return strings.ToUpper(v)
			}
			return v
		}
	}
	return string(r)
}

// Merge overlays other onto a copy of m. Later sources win per key.
func (m Mapping) Merge(other Mapping) Mapping {
	out := make(Mapping, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ParsePairs parses the flag syntax "a=q,b=w" into a Mapping.
func ParsePairs(s string) (Mapping, error) {
	out := Mapping{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		typed, displayed, err := splitPair(part)
		if err != nil {
			return nil, err
		}
		out[typed] = displayed
	}
	return out, nil
}

// LoadFile reads one "typed=displayed" pair per line. Blank lines and
// lines starting with '#' are skipped.
func LoadFile(path string) (Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only mapping file.
			_ = cerr
		}
	}()

	out := Mapping{}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		typed, displayed, err := splitPair(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		out[typed] = displayed
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("mapping file is empty")
	}
	return out, nil
}

func splitPair(s string) (typed, displayed string, err error) {
	typed, displayed, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid mapping pair %q (expected typed=displayed)", s)
	}
	if utf8.RuneCountInString(typed) != 1 {
		return "", "", fmt.Errorf("mapping key %q must be a single character", typed)
	}
	return typed, displayed, nil
}
