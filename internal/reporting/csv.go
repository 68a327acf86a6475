package reporting

import (
	"fmt"
	"strings"

	"prop-amm-lab/internal/domain"
)

// RenderCSV renders strategy aggregates as CSV string.
func RenderCSV(rows []domain.StrategyAggregate) string {
	var sb strings.Builder

	// Header
	sb.WriteString("strategy_id,artifact_id,mean_edge,std_edge,edge_vs_normalizer,sharpe,mean_final_capital_weight\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			r.StrategyID,
			r.ArtifactID,
			r.MeanEdge,
			r.StdEdge,
			r.EdgeVsNormalizer,
			r.Sharpe,
			r.MeanFinalCapitalWeight,
		))
	}

	return sb.String()
}
