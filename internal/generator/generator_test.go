package generator

import (
	"testing"
	"unicode/utf8"
)

func TestJumbleIsFixedPointFreePermutation(t *testing.T) {
	alphabet := []rune(DefaultAlphabet)
	m := New().Jumble(alphabet)
	if len(m) != len(alphabet) {
		t.Fatalf("expected %d entries, got %d", len(alphabet), len(m))
	}
	seen := map[string]bool{}
	for typed, displayed := range m {
		if utf8.RuneCountInString(typed) != 1 || utf8.RuneCountInString(displayed) != 1 {
			t.Fatalf("expected single-character pair, got %q=%q", typed, displayed)
		}
		if typed == displayed {
			t.Fatalf("character %q maps to itself", typed)
		}
		if seen[displayed] {
			t.Fatalf("value %q used twice; not a permutation", displayed)
		}
		seen[displayed] = true
	}
}

func TestJumbleSeededIsDeterministic(t *testing.T) {
	alphabet := []rune("abcdef")
	first := NewSeeded(42).Jumble(alphabet)
	second := NewSeeded(42).Jumble(alphabet)
	for k, v := range first {
		if second[k] != v {
			t.Fatalf("seeded jumbles differ at %q: %q vs %q", k, v, second[k])
		}
	}
}

func TestJumbleTinyAlphabet(t *testing.T) {
	if m := New().Jumble([]rune("a")); len(m) != 0 {
		t.Fatalf("expected empty mapping for single-rune alphabet, got %v", m)
	}
}
