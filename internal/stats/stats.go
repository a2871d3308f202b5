// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// TrialMetrics computes characters-per-minute and backspace rate for a
// trial. CPM counts accepted keypresses against the trial response time.
func TrialMetrics(keypresses, backspaces int, rtMs int64) (cpm, backspaceRate float64) {
	den := float64(keypresses + backspaces)
	if den > 0 {
		backspaceRate = float64(backspaces) / den
	}
	if rtMs <= 0 {
		return 0, backspaceRate
	}
	minutes := float64(rtMs) / 60000.0
	if minutes <= 0 {
		return 0, backspaceRate
	}
	cpm = float64(keypresses) / minutes
	return cpm, backspaceRate
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
