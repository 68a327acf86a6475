package reporting

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"prop-amm-lab/internal/domain"
)

func sampleReport() *Report {
	params := domain.RunParams{
		Simulations: 100,
		SeedStart:   42,
		Sim:         domain.DefaultSimConfig(),
	}
	aggs := []domain.StrategyAggregate{
		{StrategyID: "laggard", ArtifactID: "art-b", MeanEdge: 10.5, StdEdge: 3.2, Sharpe: 3.28, EdgeVsNormalizer: -1.5, MeanFinalCapitalWeight: 0.3},
		{StrategyID: "leader", ArtifactID: "art-a", MeanEdge: 25.1, StdEdge: 4.0, Sharpe: 6.27, EdgeVsNormalizer: 13.1, MeanFinalCapitalWeight: 0.7},
	}
	return Build("run-123", params, aggs, 12.0, time.Unix(1_700_000_000, 0).UTC())
}

func TestBuildSortsByMeanEdge(t *testing.T) {
	r := sampleReport()
	if r.Rows[0].StrategyID != "leader" || r.Rows[1].StrategyID != "laggard" {
		t.Errorf("leaderboard not sorted best-first: %s, %s", r.Rows[0].StrategyID, r.Rows[1].StrategyID)
	}
	if r.Simulations != 100 || r.Steps != 10_000 || r.EpochLen != 1_000 || r.SeedStart != 42 {
		t.Error("run metadata not carried from params")
	}
}

func TestReceipt(t *testing.T) {
	r := sampleReport()
	rec := r.Receipt()
	if rec.RunID != "run-123" {
		t.Errorf("run id = %q", rec.RunID)
	}
	if rec.CreatedAt != r.GeneratedAt.UnixMilli() {
		t.Errorf("created_at = %d", rec.CreatedAt)
	}
	if len(rec.Strategies) != 2 || rec.Strategies[0].StrategyID != "leader" {
		t.Error("receipt rows not the sorted leaderboard")
	}
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV(sampleReport().Rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "strategy_id,artifact_id,") {
		t.Errorf("bad header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "leader,art-a,25.100000,") {
		t.Errorf("bad first row: %q", lines[1])
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleReport())
	for _, want := range []string{
		"# Competition Run Report",
		"Run: `run-123`",
		"| Simulations | 100 |",
		"| leader | 25.10 | 4.00 | 13.10 | 6.270 | 70.00 |",
		"Normalizer mean edge: 12.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleReport())
	if !strings.Contains(out, "Run run-123") {
		t.Error("table missing run header")
	}
	leaderLine := strings.Index(out, "leader")
	laggardLine := strings.Index(out, "laggard")
	if leaderLine < 0 || laggardLine < 0 || leaderLine > laggardLine {
		t.Error("table rows out of leaderboard order")
	}
}

func TestRenderJSONReceipt(t *testing.T) {
	out, err := RenderJSONReceipt(sampleReport())
	if err != nil {
		t.Fatalf("RenderJSONReceipt: %v", err)
	}
	var rec domain.RunReceipt
	if err := json.Unmarshal(out, &rec); err != nil {
		t.Fatalf("receipt JSON does not round-trip: %v", err)
	}
	if rec.RunID != "run-123" || len(rec.Strategies) != 2 {
		t.Errorf("decoded receipt incomplete: %+v", rec)
	}
}
