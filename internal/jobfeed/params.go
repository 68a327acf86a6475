package jobfeed

import "prop-amm-lab/internal/domain"

// RunParams maps a job onto engine run parameters. Zero-valued job fields
// fall back to the engine defaults, so the job layer only has to name what
// it wants changed.
func (j Job) RunParams() domain.RunParams {
	cfg := domain.DefaultSimConfig()
	if j.Steps > 0 {
		cfg.TotalSteps = j.Steps
	}
	if j.EpochLen > 0 {
		cfg.EpochLen = j.EpochLen
	}

	sims := j.Simulations
	if sims <= 0 {
		sims = 1
	}

	return domain.RunParams{
		Simulations: sims,
		SeedStart:   j.SeedStart,
		Sim:         cfg,
	}
}
