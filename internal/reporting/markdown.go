package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Competition Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))

	// Run parameters
	sb.WriteString("## Run Parameters\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Simulations | %d |\n", r.Simulations))
	sb.WriteString(fmt.Sprintf("| Steps per simulation | %d |\n", r.Steps))
	sb.WriteString(fmt.Sprintf("| Epoch length | %d |\n", r.EpochLen))
	sb.WriteString(fmt.Sprintf("| Seed start | %d |\n", r.SeedStart))
	sb.WriteString("\n")

	// Leaderboard
	sb.WriteString("## Leaderboard\n\n")
	sb.WriteString("| Strategy | Mean Edge | Std Edge | vs Normalizer | Sharpe | Final Cap % |\n")
	sb.WriteString("|----------|-----------|----------|---------------|--------|-------------|\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.3f | %.2f |\n",
			row.StrategyID,
			row.MeanEdge,
			row.StdEdge,
			row.EdgeVsNormalizer,
			row.Sharpe,
			row.MeanFinalCapitalWeight*100,
		))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Normalizer mean edge: %.2f\n", r.NormalizerMeanEdge))

	return sb.String()
}
