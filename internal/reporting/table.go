package reporting

import (
	"fmt"
	"strings"
)

// RenderTable renders the leaderboard as a fixed-width console table.
func RenderTable(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run %s  (%d simulations x %d steps, epoch %d, seeds from %d)\n\n",
		r.RunID, r.Simulations, r.Steps, r.EpochLen, r.SeedStart))

	sb.WriteString("Strategy                           Mean Edge    Std Edge   vs Norm    Sharpe   Final Cap%\n")
	sb.WriteString("---------------------------------------------------------------------------------------------\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("%-34s %10.2f %10.2f %9.2f %9.3f %10.2f\n",
			row.StrategyID,
			row.MeanEdge,
			row.StdEdge,
			row.EdgeVsNormalizer,
			row.Sharpe,
			row.MeanFinalCapitalWeight*100,
		))
	}
	sb.WriteString(fmt.Sprintf("\nNormalizer mean edge: %.2f\n", r.NormalizerMeanEdge))

	return sb.String()
}
