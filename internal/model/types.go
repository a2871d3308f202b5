// Package model defines shared data structures.
package model

import "time"

// TrialConfig defines the settings for one trial.
type TrialConfig struct {
	Stimulus        string
	ButtonLabel     string
	RequireResponse bool
	Placeholder     string
}

// Action identifies the kind of logged input event.
type Action string

// Log entry actions.
const (
	ActionKeypress  Action = "keypress"
	ActionBackspace Action = "backspace"
)

// LogEntry records one accepted keypress or backspace. RT is the elapsed
// time since the previous logged action (or trial start), in milliseconds.
type LogEntry struct {
	RT                 int64  `json:"rt"`
	Action             Action `json:"action"`
	TypedChar          string `json:"typed_char,omitempty"`
	MappedChar         string `json:"mapped_char,omitempty"`
	DeletedRawChar     string `json:"deleted_raw_char,omitempty"`
	DeletedDisplayChar string `json:"deleted_display_char,omitempty"`
}

// Result is the record emitted to the host when a trial is submitted.
type Result struct {
	Response string     `json:"response"`
	RawInput string     `json:"raw_input"`
	Log      []LogEntry `json:"log"`
	RT       int64      `json:"rt"`
}

// TrialRecord captures a completed, persisted trial.
type TrialRecord struct {
	TrialID     int64
	StartedAt   time.Time
	EndedAt     time.Time
	Stimulus    string
	ButtonLabel string
	Response    string
	RawInput    string
	RTMs        int64
	Keypresses  int
	Backspaces  int
}

// ResultsConfig defines filters and options for results output.
type ResultsConfig struct {
	Since       *time.Time
	Last        int
	TrendWindow int
}

// TrialAggregate summarizes a trial for reporting.
type TrialAggregate struct {
	TrialID     int64
	EndedAt     time.Time
	RTMs        int64
	Keypresses  int
	Backspaces  int
	ResponseLen int
}

// KeyAggregate aggregates keypress stats for one typed character
// across trials.
type KeyAggregate struct {
	Char         string
	Count        int
	LatencySumMs int64
}
