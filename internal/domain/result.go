package domain

// EpochSummary records one pool's performance over one completed epoch. It
// feeds capital reallocation and is reported back to the strategy in the
// epoch-boundary payload.
type EpochSummary struct {
	EpochNumber       uint32
	Edge              float64
	TradeCount        uint64
	RiskAdjustedScore float64
	CapitalWeight     float64 // weight assigned for the next epoch

	// ArbLosses and RetailGains split the epoch edge by sign: the negative
	// part is attributed to adverse arbitrage flow, the positive part to
	// captured retail flow.
	ArbLosses   float64
	RetailGains float64
}

// StrategyAggregate is one strategy's aggregate over all simulations of a
// run: the leaderboard row handed back to the job layer.
type StrategyAggregate struct {
	StrategyID string
	ArtifactID string

	MeanEdge               float64
	StdEdge                float64
	EdgeVsNormalizer       float64
	Sharpe                 float64
	MeanFinalCapitalWeight float64

	// WeightTrajectory is the mean capital weight per epoch across
	// simulations, in epoch order.
	WeightTrajectory []float64
}

// RunReceipt is the durable record of one completed run.
type RunReceipt struct {
	RunID       string
	CreatedAt   int64 // Unix ms
	Simulations int
	Steps       int
	EpochLen    int
	SeedStart   uint64
	Strategies  []StrategyAggregate
}

// CapitalWeightPoint is one (run, strategy, epoch) sample of the mean
// capital-weight trajectory, as stored by the trajectory store.
type CapitalWeightPoint struct {
	RunID      string
	StrategyID string
	Epoch      uint32
	MeanWeight float64
}
