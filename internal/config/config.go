// Package config merges config file, environment variables, and CLI flags
// into one typed configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"prop-amm-lab/internal/domain"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Simulations int
	Steps       int
	EpochLen    int
	SeedStart   uint64
	Strategies  []string

	RiskAversion     float64
	MinCapitalWeight float64
	Temperature      float64
	ArbProfitFloor   float64
	QuoteFaultLimit  int
	AllowUnsigned    bool

	PostgresDSN   string
	ClickhouseDSN string
	JobFeedURL    string
	MetricsAddr   string

	Format   string // table, markdown, csv, json
	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PROPAMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	def := domain.DefaultSimConfig()
	v.SetDefault("simulations", 8)
	v.SetDefault("steps", def.TotalSteps)
	v.SetDefault("epoch-len", def.EpochLen)
	v.SetDefault("seed-start", uint64(1))
	v.SetDefault("risk-aversion", def.RiskAversion)
	v.SetDefault("min-weight", def.MinCapitalWeight)
	v.SetDefault("temperature", def.SoftmaxTemperature)
	v.SetDefault("arb-floor", def.ArbProfitFloor)
	v.SetDefault("fault-limit", def.QuoteFaultLimit)
	v.SetDefault("allow-unsigned", true)
	v.SetDefault("format", "table")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("propamm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Simulations:      v.GetInt("simulations"),
		Steps:            v.GetInt("steps"),
		EpochLen:         v.GetInt("epoch-len"),
		SeedStart:        v.GetUint64("seed-start"),
		Strategies:       v.GetStringSlice("strategy"),
		RiskAversion:     v.GetFloat64("risk-aversion"),
		MinCapitalWeight: v.GetFloat64("min-weight"),
		Temperature:      v.GetFloat64("temperature"),
		ArbProfitFloor:   v.GetFloat64("arb-floor"),
		QuoteFaultLimit:  v.GetInt("fault-limit"),
		AllowUnsigned:    v.GetBool("allow-unsigned"),
		PostgresDSN:      v.GetString("pg-dsn"),
		ClickhouseDSN:    v.GetString("ch-dsn"),
		JobFeedURL:       v.GetString("jobfeed-url"),
		MetricsAddr:      v.GetString("metrics-addr"),
		Format:           v.GetString("format"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}

// RunParams converts the loaded configuration into engine run parameters.
func (c Config) RunParams() domain.RunParams {
	sim := domain.DefaultSimConfig()
	sim.TotalSteps = c.Steps
	sim.EpochLen = c.EpochLen
	sim.RiskAversion = c.RiskAversion
	sim.MinCapitalWeight = c.MinCapitalWeight
	sim.SoftmaxTemperature = c.Temperature
	sim.ArbProfitFloor = c.ArbProfitFloor
	sim.QuoteFaultLimit = c.QuoteFaultLimit

	return domain.RunParams{
		Simulations: c.Simulations,
		SeedStart:   c.SeedStart,
		Sim:         sim,
	}
}
