package stats

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adriansteffan/jumbletype/internal/model"
	"github.com/adriansteffan/jumbletype/internal/store"
)

func seedTrials(t *testing.T, st *store.Store, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	var ids []int64
	for i := 0; i < n; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		rec := model.TrialRecord{
			StartedAt:   start,
			EndedAt:     end,
			Stimulus:    "Type the phrase",
			ButtonLabel: "Continue",
			Response:    "qw",
			RawInput:    "ab",
			RTMs:        end.Sub(start).Milliseconds(),
			Keypresses:  3,
			Backspaces:  1,
		}
		log := []model.LogEntry{
			{RT: 100, Action: model.ActionKeypress, TypedChar: "a", MappedChar: "q"},
			{RT: 150, Action: model.ActionKeypress, TypedChar: "b", MappedChar: "w"},
			{RT: 80, Action: model.ActionKeypress, TypedChar: "c", MappedChar: "c"},
			{RT: 60, Action: model.ActionBackspace, DeletedRawChar: "c", DeletedDisplayChar: "c"},
		}
		id, err := st.InsertTrial(ctx, rec, log)
		if err != nil {
			t.Fatalf("insert trial: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "jumbletype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ids := seedTrials(t, st, 3)

	cfg := model.ResultsConfig{Last: 2, TrendWindow: 2}
	report, err := BuildReport(context.Background(), st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Trials) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(report.Trials))
	}
	if report.Trials[0].TrialID != ids[1] || report.Trials[1].TrialID != ids[2] {
		t.Fatalf("unexpected trial ids: %+v", report.Trials)
	}
	if report.Trials[0].Keypresses != 3 || report.Trials[0].Backspaces != 1 {
		t.Fatalf("unexpected trial aggregate: %+v", report.Trials[0])
	}
	if len(report.KeyAggs) != 3 {
		t.Fatalf("expected 3 key aggregates, got %d", len(report.KeyAggs))
	}
	for _, agg := range report.KeyAggs {
		if agg.Count != 2 {
			t.Fatalf("expected 2 presses per key over 2 trials, got %+v", agg)
		}
	}
}

func TestRenderSummaryAndTables(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "jumbletype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	seedTrials(t, st, 2)
	report, err := BuildReport(context.Background(), st, model.ResultsConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	var b strings.Builder
	if err := RenderSummary(&b, report.Trials); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(b.String(), "Trials: 2") {
		t.Fatalf("summary missing trial count: %q", b.String())
	}

	b.Reset()
	if err := RenderTrialTable(&b, report.Trials); err != nil {
		t.Fatalf("render trial table: %v", err)
	}
	if !strings.Contains(b.String(), "Backspaces") {
		t.Fatalf("trial table missing header: %q", b.String())
	}

	b.Reset()
	if err := RenderKeyTable(&b, report.KeyAggs); err != nil {
		t.Fatalf("render key table: %v", err)
	}
	if !strings.Contains(b.String(), "Avg Latency (ms)") {
		t.Fatalf("key table missing header: %q", b.String())
	}

	b.Reset()
	if err := RenderTrendWithWidth(&b, report.Trials, 2, 40); err != nil {
		t.Fatalf("render trend: %v", err)
	}
	if !strings.Contains(b.String(), "RT trend") {
		t.Fatalf("trend missing title: %q", b.String())
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderSummary(&b, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(b.String(), "No trials found.") {
		t.Fatalf("unexpected empty summary: %q", b.String())
	}
}
