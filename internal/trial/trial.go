// Package trial implements the jumbled-input trial controller: a small
// state machine that turns key events into two parallel input strings
// (raw and display) plus a timestamped action log.
package trial

import (
	"strings"
	"time"
	"unicode"

	"github.com/adriansteffan/jumbletype/internal/mapping"
	"github.com/adriansteffan/jumbletype/internal/model"
)

// Controller owns all mutable state for one trial. It is the sole
// writer of the display input; the rendered field is a projection that
// can be resynchronized from it at any time.
//
// Invariant: len(raw) == len(display) at every observable point. One
// raw rune contributes exactly one display entry, however many
// characters the mapping produced for it, so backspace always removes
// 1-for-1.
type Controller struct {
	mapping         mapping.Mapping
	requireResponse bool

	raw     []rune
	display []string
	log     []model.LogEntry

	startTime  time.Time
	lastAction time.Time
	submitted  bool

	now func() time.Time
}

// New constructs a controller and captures the trial start time.
func New(m mapping.Mapping, requireResponse bool) *Controller {
	c := &Controller{
		mapping:         m,
		requireResponse: requireResponse,
		now:             time.Now,
	}
	c.startTime = c.now()
	c.lastAction = c.startTime
	return c
}

// Keypress handles a single typed rune. Non-printable runes other than
// newline are composition artifacts and are suppressed without any
// state change or log entry. Reports whether the keypress was accepted.
func (c *Controller) Keypress(r rune) bool {
	if c.submitted {
		return false
	}
	var mapped string
	switch {
	case r == '\n':
		mapped = "\n"
	case !unicode.IsPrint(r):
		return false
	default:
		mapped = c.mapping.Resolve(r)
	}
	c.raw = append(c.raw, r)
	c.display = append(c.display, mapped)
	c.appendLog(model.LogEntry{
		Action:     model.ActionKeypress,
		TypedChar:  string(r),
		MappedChar: mapped,
	})
	return true
}

// Backspace removes the last raw rune together with its display
// contribution. On empty input it is a no-op with no log entry.
func (c *Controller) Backspace() bool {
	if c.submitted || len(c.raw) == 0 {
		return false
	}
	deletedRaw := c.raw[len(c.raw)-1]
	deletedDisplay := c.display[len(c.display)-1]
	c.raw = c.raw[:len(c.raw)-1]
	c.display = c.display[:len(c.display)-1]
	c.appendLog(model.LogEntry{
		Action:             model.ActionBackspace,
		DeletedRawChar:     string(deletedRaw),
		DeletedDisplayChar: deletedDisplay,
	})
	return true
}

// Paste suppresses a paste attempt. Pasted text bypasses per-character
// mapping and would desynchronize raw from display, so it never touches
// trial state and is never logged.
func (c *Controller) Paste(string) bool {
	return false
}

// Resync compares an observed field content against the canonical
// display text. It returns the canonical text and whether the observed
// content diverged and must be overwritten. Logical state is never
// mutated and nothing is logged; this is a corrective path, not an
// input path.
func (c *Controller) Resync(observed string) (string, bool) {
	canonical := c.DisplayText()
	return canonical, observed != canonical
}

// CanSubmit reports submit eligibility. After submission it is always
// false; before it, an empty display input blocks submission when a
// response is required.
func (c *Controller) CanSubmit() bool {
	if c.submitted {
		return false
	}
	if c.requireResponse && len(c.display) == 0 {
		return false
	}
	return true
}

// Submit ends the trial and returns the result record. It fires at
// most once; further events are rejected afterwards.
func (c *Controller) Submit() (model.Result, bool) {
	if !c.CanSubmit() {
		return model.Result{}, false
	}
	c.submitted = true
	return model.Result{
		Response: c.DisplayText(),
		RawInput: string(c.raw),
		Log:      c.Entries(),
		RT:       roundMs(c.now().Sub(c.startTime)),
	}, true
}

// DisplayText returns the mapped text as shown in the field.
func (c *Controller) DisplayText() string {
	return strings.Join(c.display, "")
}

// RawText returns the characters as physically typed.
func (c *Controller) RawText() string {
	return string(c.raw)
}

// Entries returns a copy of the keystroke log.
func (c *Controller) Entries() []model.LogEntry {
	out := make([]model.LogEntry, len(c.log))
	copy(out, c.log)
	return out
}

// Submitted reports whether the trial has ended.
func (c *Controller) Submitted() bool {
	return c.submitted
}

// StartedAt returns the trial start time.
func (c *Controller) StartedAt() time.Time {
	return c.startTime
}

func (c *Controller) appendLog(entry model.LogEntry) {
	now := c.now()
	elapsed := now.Sub(c.lastAction)
	if elapsed < 0 {
		elapsed = 0
	}
	entry.RT = roundMs(elapsed)
	c.log = append(c.log, entry)
	c.lastAction = now
}

func roundMs(d time.Duration) int64 {
	return d.Round(time.Millisecond).Milliseconds()
}
