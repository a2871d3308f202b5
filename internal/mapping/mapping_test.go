package mapping

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	m := Mapping{"a": "q", "b": "wx", "Z": "5", "ab": "never"}
	cases := []struct {
		name  string
		typed rune
		want  string
	}{
		{"exact match", 'a', "q"},
		{"multi-char value", 'b', "wx"},
		{"exact upper match", 'Z', "5"},
		{"case fallback uppercases", 'A', "Q"},
		{"case fallback multi-char", 'B', "WX"},
		{"lower typed ignores upper key", 'z', "z"},
		{"unmapped passthrough", 'c', "c"},
		{"digit passthrough", '7', "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Resolve(tc.typed); got != tc.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tc.typed, got, tc.want)
			}
		})
	}
}

func TestResolveMultiRuneKeysInert(t *testing.T) {
	m := Mapping{"ab": "x"}
	if got := m.Resolve('a'); got != "a" {
		t.Fatalf("expected multi-rune key to be inert, got %q", got)
	}
}

func TestMergeLaterWins(t *testing.T) {
	base := Mapping{"a": "1", "b": "2"}
	merged := base.Merge(Mapping{"b": "9", "c": "3"})
	if merged["a"] != "1" || merged["b"] != "9" || merged["c"] != "3" {
		t.Fatalf("unexpected merge result: %v", merged)
	}
	if base["b"] != "2" {
		t.Fatalf("merge mutated receiver: %v", base)
	}
}

func TestParsePairs(t *testing.T) {
	m, err := ParsePairs("a=q, b=w ,x==")
	if err != nil {
		t.Fatalf("parse pairs: %v", err)
	}
	if m["a"] != "q" || m["b"] != "w" || m["x"] != "=" {
		t.Fatalf("unexpected mapping: %v", m)
	}
}

func TestParsePairsRejectsMultiCharKey(t *testing.T) {
	if _, err := ParsePairs("ab=q"); err == nil {
		t.Fatalf("expected error for multi-character key")
	}
	if _, err := ParsePairs("aq"); err == nil {
		t.Fatalf("expected error for missing separator")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jumble.map")
	content := "# comment\na=q\n\nb=wx\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mapping file: %v", err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load mapping file: %v", err)
	}
	if len(m) != 2 || m["a"] != "q" || m["b"] != "wx" {
		t.Fatalf("unexpected mapping: %v", m)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.map")
	if err := os.WriteFile(path, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatalf("write mapping file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for empty mapping file")
	}
}
