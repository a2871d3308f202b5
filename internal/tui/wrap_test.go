package tui

import (
	"reflect"
	"testing"
)

func TestWrapField(t *testing.T) {
	cases := []struct {
		name    string
		content string
		width   int
		want    []string
	}{
		{"empty content", "", 10, []string{""}},
		{"fits on one line", "hello world", 20, []string{"hello world"}},
		{"breaks at space", "hello world", 8, []string{"hello", "world"}},
		{"hard break without spaces", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"explicit newline", "ab\ncd", 10, []string{"ab", "cd"}},
		{"zero width splits on newlines only", "ab\ncd", 0, []string{"ab", "cd"}},
		{"wide runes count double", "ああ", 2, []string{"あ", "あ"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapField(tc.content, tc.width)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("wrapField(%q, %d) = %q, want %q", tc.content, tc.width, got, tc.want)
			}
		})
	}
}
