package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adriansteffan/jumbletype/internal/mapping"
	"github.com/adriansteffan/jumbletype/internal/model"
	"github.com/adriansteffan/jumbletype/internal/trial"
)

func newTestModel(m mapping.Mapping, requireResponse bool) *Model {
	cfg := model.TrialConfig{
		Stimulus:        "Type the phrase",
		ButtonLabel:     "Continue",
		RequireResponse: requireResponse,
		Placeholder:     "start typing",
	}
	return NewModel(trial.New(m, requireResponse), cfg)
}

func send(t *testing.T, m *Model, msg tea.Msg) *Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(*Model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return next
}

func typeRunes(t *testing.T, m *Model, s string) *Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func keyPress(typ tea.KeyType) tea.Msg {
	return tea.KeyMsg{Type: typ}
}

func TestTypingUpdatesField(t *testing.T) {
	m := newTestModel(mapping.Mapping{"a": "q", "b": "w"}, true)
	m = typeRunes(t, m, "ab")
	if m.field != "qw" {
		t.Fatalf("expected field %q, got %q", "qw", m.field)
	}
}

func TestPasteSuppressed(t *testing.T) {
	m := newTestModel(nil, true)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc"), Paste: true})
	if m.field != "" {
		t.Fatalf("expected empty field after paste, got %q", m.field)
	}
}

func TestMultiRuneBurstSuppressed(t *testing.T) {
	m := newTestModel(nil, true)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	if m.field != "" {
		t.Fatalf("expected multi-rune input to be suppressed, got %q", m.field)
	}
}

func TestSpaceKeypress(t *testing.T) {
	m := newTestModel(mapping.Mapping{" ": "_"}, true)
	m = send(t, m, keyPress(tea.KeySpace))
	if m.field != "_" {
		t.Fatalf("expected mapped space, got %q", m.field)
	}
}

func TestBackspaceRemovesLastContribution(t *testing.T) {
	m := newTestModel(mapping.Mapping{"a": "xyz"}, true)
	m = typeRunes(t, m, "ab")
	m = send(t, m, keyPress(tea.KeyBackspace))
	if m.field != "xyz" {
		t.Fatalf("expected field %q after backspace, got %q", "xyz", m.field)
	}
	m = send(t, m, keyPress(tea.KeyBackspace))
	if m.field != "" {
		t.Fatalf("expected empty field, got %q", m.field)
	}
}

func TestEnterInFieldInsertsNewline(t *testing.T) {
	m := newTestModel(nil, true)
	m = typeRunes(t, m, "a")
	m = send(t, m, keyPress(tea.KeyEnter))
	if m.field != "a\n" {
		t.Fatalf("expected newline in field, got %q", m.field)
	}
	if m.Result() != nil {
		t.Fatalf("enter in field must not submit")
	}
}

func TestSubmitFlow(t *testing.T) {
	m := newTestModel(mapping.Mapping{"a": "q"}, true)
	m = typeRunes(t, m, "a")
	m = send(t, m, keyPress(tea.KeyTab))

	updated, cmd := m.Update(keyPress(tea.KeyEnter))
	m = updated.(*Model)
	if cmd == nil {
		t.Fatalf("expected quit command after submit")
	}
	result := m.Result()
	if result == nil {
		t.Fatalf("expected result after submit")
	}
	if result.Response != "q" || result.RawInput != "a" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if m.Aborted() {
		t.Fatalf("submitted trial must not be aborted")
	}
}

func TestSubmitGatedWhenResponseRequired(t *testing.T) {
	m := newTestModel(nil, true)
	m = send(t, m, keyPress(tea.KeyTab))

	updated, cmd := m.Update(keyPress(tea.KeyEnter))
	m = updated.(*Model)
	if cmd != nil {
		t.Fatalf("expected no command for gated submit")
	}
	if m.Result() != nil {
		t.Fatalf("empty response must not submit when a response is required")
	}
}

func TestSubmitEmptyWithoutRequirement(t *testing.T) {
	m := newTestModel(nil, false)
	m = send(t, m, keyPress(tea.KeyTab))
	m = send(t, m, keyPress(tea.KeyEnter))
	result := m.Result()
	if result == nil {
		t.Fatalf("expected result for optional response")
	}
	if result.Response != "" || len(result.Log) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestEscAborts(t *testing.T) {
	m := newTestModel(nil, true)
	updated, cmd := m.Update(keyPress(tea.KeyEsc))
	m = updated.(*Model)
	if cmd == nil {
		t.Fatalf("expected quit command on abort")
	}
	if !m.Aborted() {
		t.Fatalf("expected aborted state")
	}
	if m.Result() != nil {
		t.Fatalf("aborted trial must not carry a result")
	}
}

func TestInputIgnoredAfterSubmit(t *testing.T) {
	m := newTestModel(nil, false)
	m = typeRunes(t, m, "a")
	m = send(t, m, keyPress(tea.KeyTab))
	m = send(t, m, keyPress(tea.KeyEnter))
	m = typeRunes(t, m, "b")
	if m.field != "a" {
		t.Fatalf("expected field frozen after submit, got %q", m.field)
	}
}

func TestViewShowsStimulusPlaceholderAndButton(t *testing.T) {
	m := newTestModel(nil, true)
	view := m.View()
	for _, want := range []string{"Type the phrase", "start typing", "Continue"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewShowsMappedContent(t *testing.T) {
	m := newTestModel(mapping.Mapping{"a": "q"}, true)
	m = typeRunes(t, m, "a")
	view := m.View()
	if !strings.Contains(view, "q") {
		t.Fatalf("view missing mapped content:\n%s", view)
	}
	if strings.Contains(view, "start typing") {
		t.Fatalf("placeholder should disappear once content exists:\n%s", view)
	}
}
