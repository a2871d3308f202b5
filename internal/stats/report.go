// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"golang.org/x/term"

	"github.com/adriansteffan/jumbletype/internal/model"
	"github.com/adriansteffan/jumbletype/internal/store"
)

const terminalWidthBackup = 80

// Report contains precomputed data for results rendering.
type Report struct {
	Trials  []model.TrialAggregate
	KeyAggs []model.KeyAggregate
}

// BuildReport loads and prepares data for results rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.ResultsConfig) (Report, error) {
	trials, err := st.ListTrials(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	keyAggs, err := st.ListKeyAggregates(ctx, trialIDs(trials))
	if err != nil {
		return Report{}, err
	}
	return Report{Trials: trials, KeyAggs: keyAggs}, nil
}

// RenderSummary prints a summary block for recorded trials.
func RenderSummary(w io.Writer, trials []model.TrialAggregate) error {
	if len(trials) == 0 {
		_, err := fmt.Fprintln(w, "No trials found.")
		return err
	}
	var totalCPM, totalRate float64
	var totalRT int64
	bestCPM := 0.0
	for _, t := range trials {
		cpm, rate := TrialMetrics(t.Keypresses, t.Backspaces, t.RTMs)
		totalCPM += cpm
		totalRate += rate
		totalRT += t.RTMs
		if cpm > bestCPM {
			bestCPM = cpm
		}
	}
	count := float64(len(trials))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Trials: %d\n", len(trials)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg RT: %s\n", formatMs(totalRT/int64(len(trials)))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg CPM: %.2f\n", totalCPM/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best CPM: %.2f\n", bestCPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Backspace Rate: %.2f%%\n", (totalRate/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderTrialTable prints one row per recorded trial.
func RenderTrialTable(w io.Writer, trials []model.TrialAggregate) error {
	if len(trials) == 0 {
		return nil
	}
	headers := []string{"ID", "Ended", "RT (ms)", "Keys", "Backspaces", "Resp Len", "CPM"}
	rows := make([][]string, 0, len(trials))
	for _, t := range trials {
		cpm, _ := TrialMetrics(t.Keypresses, t.Backspaces, t.RTMs)
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.TrialID),
			t.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", t.RTMs),
			fmt.Sprintf("%d", t.Keypresses),
			fmt.Sprintf("%d", t.Backspaces),
			fmt.Sprintf("%d", t.ResponseLen),
			fmt.Sprintf("%.1f", cpm),
		})
	}
	if _, err := fmt.Fprintln(w, "Trials"); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderKeyTable prints per-typed-character aggregates, slowest first.
func RenderKeyTable(w io.Writer, aggs []model.KeyAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	headers := []string{"Char", "Count", "Avg Latency (ms)"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range sortKeyAggsByLatency(aggs) {
		label := agg.Char
		switch label {
		case " ":
			label = "<space>"
		case "\n":
			label = "<newline>"
		}
		lat := 0.0
		if agg.Count > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.Count)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%d", agg.Count),
			fmt.Sprintf("%.1f", lat),
		})
	}
	if _, err := fmt.Fprintln(w, "Per-Key"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderTrend prints a response-time trend sparkline for the trials,
// smoothed over the given window and truncated to fit the terminal.
func RenderTrend(w io.Writer, trials []model.TrialAggregate, window int) error {
	return RenderTrendWithWidth(w, trials, window, terminalWidth())
}

// RenderTrendWithWidth prints the trend sized to an explicit width.
func RenderTrendWithWidth(w io.Writer, trials []model.TrialAggregate, window, width int) error {
	if len(trials) < 2 {
		return nil
	}
	values := make([]float64, len(trials))
	for i, t := range trials {
		values[i] = float64(t.RTMs)
	}
	values = MovingAverage(values, window)
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if _, err := fmt.Fprintf(w, "RT trend (window %d, oldest left)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, Sparkline(values)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func trialIDs(trials []model.TrialAggregate) []int64 {
	ids := make([]int64, len(trials))
	for i, t := range trials {
		ids[i] = t.TrialID
	}
	return ids
}

func sortKeyAggsByLatency(aggs []model.KeyAggregate) []model.KeyAggregate {
	out := append([]model.KeyAggregate(nil), aggs...)
	sort.Slice(out, func(i, j int) bool {
		li, lj := avgLatency(out[i]), avgLatency(out[j])
		if li == lj {
			return out[i].Char < out[j].Char
		}
		return li > lj
	})
	return out
}

func avgLatency(agg model.KeyAggregate) float64 {
	if agg.Count == 0 {
		return 0
	}
	return float64(agg.LatencySumMs) / float64(agg.Count)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
