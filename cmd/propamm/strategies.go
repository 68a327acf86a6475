package main

import (
	"fmt"
	"strings"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/idhash"
	"prop-amm-lab/internal/sim"
	"prop-amm-lab/internal/strategy"
	"prop-amm-lab/internal/validator"
)

// resolveStrategies maps CLI strategy entries onto a factory the simulation
// workers can call independently. An entry is either a builtin name or a
// plugin artifact path; plugin entries may carry a signature as
// path:signerKey:signature.
func resolveStrategies(entries []string, allowUnsigned bool) (sim.StrategyFactory, []string, error) {
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("provide at least one strategy (builtins: %s)",
			strings.Join(strategy.BuiltinNames(), ", "))
	}

	artifactIDs := make([]string, len(entries))
	for i, entry := range entries {
		if _, err := strategy.Builtin(builtinName(entry)); err == nil {
			artifactIDs[i] = idhash.ComputeArtifactID([]byte(entry))
			continue
		}

		art := parseArtifact(entry)
		if err := art.Verify(allowUnsigned); err != nil {
			return nil, nil, fmt.Errorf("strategy %s: %w", art.Path, err)
		}
		id, err := idhash.ComputeArtifactIDFromFile(art.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("strategy %s: %w", art.Path, err)
		}
		artifactIDs[i] = id
	}

	factory := func() ([]strategy.Strategy, error) {
		strategies := make([]strategy.Strategy, len(entries))
		for i, entry := range entries {
			if s, err := strategy.Builtin(builtinName(entry)); err == nil {
				strategies[i] = s
				continue
			}
			s, err := strategy.LoadPlugin(parseArtifact(entry).Path)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", entry, err)
			}
			strategies[i] = s
		}
		return strategies, nil
	}

	return factory, artifactIDs, nil
}

// admit probes one strategy over the validation grid.
func admit(s strategy.Strategy) validator.Report {
	return validator.Run(s.Name(), func(side domain.Side, input, rx, ry uint64, storage *domain.Storage) (uint64, error) {
		return s.Quote(side, input, rx, ry, storage)
	})
}

func builtinName(entry string) string {
	name, _, _ := strings.Cut(entry, ":")
	return name
}

func parseArtifact(entry string) strategy.Artifact {
	parts := strings.SplitN(entry, ":", 3)
	art := strategy.Artifact{Path: parts[0]}
	if len(parts) == 3 {
		art.SignerKey = parts[1]
		art.Signature = parts[2]
	}
	return art
}
