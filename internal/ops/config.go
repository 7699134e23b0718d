// Package ops loads and validates the JSON runtime configuration.
package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/quote"
	"main/internal/signal"
	"main/internal/tender"
)

// FileConfig mirrors the JSON config layout. Zero-valued fields fall back
// to defaults during Load.
type FileConfig struct {
	Signal      SignalConfig       `json:"signal"`
	Quoting     QuotingConfig      `json:"quoting"`
	Risk        RiskConfig         `json:"risk"`
	Tender      TenderConfig       `json:"tender"`
	Instruments []InstrumentConfig `json:"instruments"`
}

// SignalConfig tunes the mean-reversion signal.
type SignalConfig struct {
	LookbackPeriod  int     `json:"lookback_period"`
	MinDataPoints   int     `json:"min_data_points"`
	ZScoreThreshold float64 `json:"z_score_threshold"`
	MaxScalar       float64 `json:"max_scalar"`
}

// QuotingConfig tunes the two-sided quote engine.
type QuotingConfig struct {
	BasePositionSize     int64   `json:"base_position_size"`
	TargetSpread         float64 `json:"target_spread"`
	MaxSpread            float64 `json:"max_spread"`
	MaxMarketSpreadRatio float64 `json:"max_market_spread_ratio"`
	OrderRefreshTime     float64 `json:"order_refresh_time"`
}

// RiskConfig sets portfolio-wide exposure limits. Zero disables a limit.
type RiskConfig struct {
	GrossLimit int64 `json:"gross_limit"`
	NetLimit   int64 `json:"net_limit"`
}

// TenderConfig tunes tender offer evaluation.
type TenderConfig struct {
	LiquidityToTenderRatio float64 `json:"liquidity_to_tender_ratio"`
	VolatilityMultiplier   float64 `json:"volatility_multiplier"`
	TransactionCost        float64 `json:"transaction_cost"`
	TotalTicks             int     `json:"total_ticks"`
}

// InstrumentConfig describes one tradable instrument.
type InstrumentConfig struct {
	Ticker         string  `json:"ticker"`
	VolatilityTier string  `json:"volatility_tier"`
	PositionLimit  int64   `json:"position_limit"`
	MaxOrderSize   int64   `json:"max_order_size"`
	MinOrderSize   int64   `json:"min_order_size"`
	LotSize        int64   `json:"lot_size"`
	TickSize       float64 `json:"tick_size"`
	MinSpread      float64 `json:"min_spread"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Signal      signal.Config
	Quote       quote.Config
	Limits      ledger.Limits
	Tender      tender.Config
	Instruments map[string]model.Instrument
}

// Load reads a JSON config file, applies defaults and validates.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve applies defaults to a parsed config and validates the result.
func Resolve(cfg FileConfig) (Loaded, error) {
	sig, err := resolveSignal(cfg.Signal)
	if err != nil {
		return Loaded{}, err
	}
	quoting, err := resolveQuoting(cfg.Quoting)
	if err != nil {
		return Loaded{}, err
	}
	tenderCfg, err := resolveTender(cfg.Tender)
	if err != nil {
		return Loaded{}, err
	}
	instruments, err := resolveInstruments(cfg.Instruments)
	if err != nil {
		return Loaded{}, err
	}
	if cfg.Risk.GrossLimit < 0 || cfg.Risk.NetLimit < 0 {
		return Loaded{}, fmt.Errorf("risk limits must be >= 0")
	}
	return Loaded{
		Signal:      sig,
		Quote:       quoting,
		Limits:      ledger.Limits{Gross: cfg.Risk.GrossLimit, Net: cfg.Risk.NetLimit},
		Tender:      tenderCfg,
		Instruments: instruments,
	}, nil
}

func resolveSignal(cfg SignalConfig) (signal.Config, error) {
	if cfg.LookbackPeriod == 0 {
		cfg.LookbackPeriod = 20
	}
	if cfg.MinDataPoints == 0 {
		cfg.MinDataPoints = 10
	}
	if cfg.ZScoreThreshold == 0 {
		cfg.ZScoreThreshold = 2.0
	}
	if cfg.MaxScalar == 0 {
		cfg.MaxScalar = 3.0
	}
	if cfg.LookbackPeriod < 2 {
		return signal.Config{}, fmt.Errorf("lookback_period must be >= 2")
	}
	if cfg.MinDataPoints < 2 || cfg.MinDataPoints > cfg.LookbackPeriod {
		return signal.Config{}, fmt.Errorf("min_data_points must be in [2, lookback_period]")
	}
	if cfg.ZScoreThreshold <= 0 {
		return signal.Config{}, fmt.Errorf("z_score_threshold must be > 0")
	}
	if cfg.MaxScalar < 1 {
		return signal.Config{}, fmt.Errorf("max_scalar must be >= 1")
	}
	return signal.Config{
		LookbackPeriod:  cfg.LookbackPeriod,
		MinDataPoints:   cfg.MinDataPoints,
		ZScoreThreshold: cfg.ZScoreThreshold,
		MaxScalar:       cfg.MaxScalar,
	}, nil
}

func resolveQuoting(cfg QuotingConfig) (quote.Config, error) {
	if cfg.BasePositionSize == 0 {
		cfg.BasePositionSize = 1000
	}
	if cfg.TargetSpread == 0 {
		cfg.TargetSpread = 0.05
	}
	if cfg.MaxSpread == 0 {
		cfg.MaxSpread = 0.30
	}
	if cfg.MaxMarketSpreadRatio == 0 {
		cfg.MaxMarketSpreadRatio = 0.05
	}
	if cfg.OrderRefreshTime == 0 {
		cfg.OrderRefreshTime = 1.0
	}
	if cfg.BasePositionSize < 0 {
		return quote.Config{}, fmt.Errorf("base_position_size must be > 0")
	}
	if cfg.TargetSpread <= 0 || cfg.MaxSpread < cfg.TargetSpread {
		return quote.Config{}, fmt.Errorf("spreads must satisfy 0 < target_spread <= max_spread")
	}
	if cfg.MaxMarketSpreadRatio <= 0 {
		return quote.Config{}, fmt.Errorf("max_market_spread_ratio must be > 0")
	}
	if cfg.OrderRefreshTime < 0 {
		return quote.Config{}, fmt.Errorf("order_refresh_time must be >= 0")
	}
	return quote.Config{
		BaseSize:             cfg.BasePositionSize,
		TargetSpread:         cfg.TargetSpread,
		MaxSpread:            cfg.MaxSpread,
		MaxMarketSpreadRatio: cfg.MaxMarketSpreadRatio,
		RefreshInterval:      time.Duration(cfg.OrderRefreshTime * float64(time.Second)),
	}, nil
}

func resolveTender(cfg TenderConfig) (tender.Config, error) {
	if cfg.LiquidityToTenderRatio == 0 {
		cfg.LiquidityToTenderRatio = 2.0
	}
	if cfg.VolatilityMultiplier == 0 {
		cfg.VolatilityMultiplier = 0.1
	}
	if cfg.TransactionCost == 0 {
		cfg.TransactionCost = 0.02
	}
	if cfg.TotalTicks == 0 {
		cfg.TotalTicks = 600
	}
	if cfg.LiquidityToTenderRatio < 1 {
		return tender.Config{}, fmt.Errorf("liquidity_to_tender_ratio must be >= 1")
	}
	if cfg.VolatilityMultiplier < 0 || cfg.TransactionCost < 0 {
		return tender.Config{}, fmt.Errorf("tender multipliers must be >= 0")
	}
	if cfg.TotalTicks < 1 {
		return tender.Config{}, fmt.Errorf("total_ticks must be >= 1")
	}
	return tender.Config{
		MinLiquidityRatio:    cfg.LiquidityToTenderRatio,
		VolatilityMultiplier: cfg.VolatilityMultiplier,
		TransactionCost:      cfg.TransactionCost,
		TotalTicks:           cfg.TotalTicks,
	}, nil
}

func resolveInstruments(cfgs []InstrumentConfig) (map[string]model.Instrument, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("at least one instrument is required")
	}
	out := make(map[string]model.Instrument, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Ticker == "" {
			return nil, fmt.Errorf("instrument ticker is empty")
		}
		if _, exists := out[cfg.Ticker]; exists {
			return nil, fmt.Errorf("duplicate instrument: %s", cfg.Ticker)
		}
		tier := enum.TierMedium
		if cfg.VolatilityTier != "" {
			parsed, ok := enum.ParseVolatilityTier(cfg.VolatilityTier)
			if !ok {
				return nil, fmt.Errorf("unknown volatility_tier for %s: %s", cfg.Ticker, cfg.VolatilityTier)
			}
			tier = parsed
		}
		inst := model.Instrument{
			Ticker:        cfg.Ticker,
			Tier:          tier,
			PositionLimit: cfg.PositionLimit,
			MaxOrderSize:  cfg.MaxOrderSize,
			MinOrderSize:  cfg.MinOrderSize,
			LotSize:       cfg.LotSize,
			TickSize:      cfg.TickSize,
			MinSpread:     cfg.MinSpread,
		}
		if inst.PositionLimit == 0 {
			inst.PositionLimit = 25000
		}
		if inst.MaxOrderSize == 0 {
			inst.MaxOrderSize = 5000
		}
		if inst.MinOrderSize == 0 {
			inst.MinOrderSize = 100
		}
		if inst.LotSize == 0 {
			inst.LotSize = 100
		}
		if inst.TickSize == 0 {
			inst.TickSize = 0.01
		}
		if inst.MinSpread == 0 {
			inst.MinSpread = 0.02
		}
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("invalid instrument %s: %w", cfg.Ticker, err)
		}
		out[cfg.Ticker] = inst
	}
	return out, nil
}
