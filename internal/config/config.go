// Package config holds the strategy configuration consumed by a backtest run.
package config

import (
	"os"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"gopkg.in/yaml.v3"
)

type StrategyKind string

const (
	// StrategyCrossover trades fast/slow moving average crossovers. When a model score
	// threshold is configured the score policy filters its entries.
	StrategyCrossover StrategyKind = "crossover"
	// StrategyModel trades on the model score alone.
	StrategyModel StrategyKind = "model"
)

var AllStrategies = []any{StrategyCrossover, StrategyModel}

type ExecutionLag string

const (
	// ExecutionLagSameBar fills at the close of the signal bar.
	ExecutionLagSameBar ExecutionLag = "same_bar"
	// ExecutionLagNextBarOpen fills at the open of the bar after the signal.
	ExecutionLagNextBarOpen ExecutionLag = "next_bar_open"
)

var AllExecutionLags = []any{ExecutionLagSameBar, ExecutionLagNextBarOpen}

type SizingPolicy string

const (
	SizingFixedQty      SizingPolicy = "fixed_qty"
	SizingFixedFraction SizingPolicy = "fixed_fraction"
	SizingFixedRisk     SizingPolicy = "fixed_risk"
)

var AllSizingPolicies = []any{SizingFixedQty, SizingFixedFraction, SizingFixedRisk}

type FeeModel string

const (
	FeeFlat         FeeModel = "flat"
	FeeProportional FeeModel = "proportional"
	FeePerShare     FeeModel = "per_share"
	FeeZero         FeeModel = "zero"
)

var AllFeeModels = []any{FeeFlat, FeeProportional, FeePerShare, FeeZero}

type ScoreMode string

const (
	// ScoreModeGate lets an indicator entry through only when the score agrees.
	ScoreModeGate ScoreMode = "gate"
	// ScoreModeBlend mixes indicator strength and score with a weight.
	ScoreModeBlend ScoreMode = "blend"
)

var AllScoreModes = []any{ScoreModeGate, ScoreModeBlend}

type Sizing struct {
	Policy SizingPolicy `yaml:"policy" json:"policy" validate:"required,oneof=fixed_qty fixed_fraction fixed_risk" jsonschema:"title=Policy,description=How the target position size is computed"`
	// Quantity is the fixed_qty size in units.
	Quantity float64 `yaml:"quantity" json:"quantity" validate:"gte=0" jsonschema:"title=Quantity,description=Units per position for fixed_qty,minimum=0"`
	// Fraction is the share of equity committed by fixed_fraction.
	Fraction float64 `yaml:"fraction" json:"fraction" validate:"gte=0,lte=1" jsonschema:"title=Fraction,description=Share of equity per position for fixed_fraction,minimum=0,maximum=1"`
	// RiskFraction is the share of equity lost if the stop is hit, fixed_risk only.
	RiskFraction float64 `yaml:"risk_fraction" json:"risk_fraction" validate:"gte=0,lte=1" jsonschema:"title=Risk Fraction,description=Share of equity risked per position for fixed_risk,minimum=0,maximum=1"`
	// StopDistance is the stop distance as a fraction of price, fixed_risk only.
	StopDistance float64 `yaml:"stop_distance" json:"stop_distance" validate:"gte=0" jsonschema:"title=Stop Distance,description=Stop distance as a fraction of entry price for fixed_risk,minimum=0"`
}

type Fee struct {
	Model FeeModel `yaml:"model" json:"model" validate:"required,oneof=flat proportional per_share zero" jsonschema:"title=Model,description=Fee model"`
	// Amount is the flat fee per fill.
	Amount float64 `yaml:"amount" json:"amount" validate:"gte=0" jsonschema:"title=Amount,description=Fee per fill for the flat model,minimum=0"`
	// Rate is the proportional rate of notional, or the per unit rate for per_share.
	Rate float64 `yaml:"rate" json:"rate" validate:"gte=0" jsonschema:"title=Rate,description=Rate of notional (proportional) or per unit (per_share),minimum=0"`
	// Minimum is the per_share floor per fill.
	Minimum float64 `yaml:"minimum" json:"minimum" validate:"gte=0" jsonschema:"title=Minimum,description=Minimum fee per fill for per_share,minimum=0"`
}

type ScorePolicy struct {
	Mode ScoreMode `yaml:"mode" json:"mode" validate:"required,oneof=gate blend" jsonschema:"title=Mode,description=How model scores combine with indicator signals"`
	// Weight is the score weight in blend mode.
	Weight float64 `yaml:"weight" json:"weight" validate:"gte=0,lte=1" jsonschema:"title=Weight,description=Score weight for blend mode,minimum=0,maximum=1"`
}

type Statistics struct {
	// PeriodsPerYear annualizes the Sharpe ratio. 365 for daily crypto bars.
	PeriodsPerYear float64 `yaml:"periods_per_year" json:"periods_per_year" validate:"gt=0" jsonschema:"title=Periods Per Year,description=Bars per year used to annualize the Sharpe ratio,minimum=0"`
	// RiskFreeRate is the annual risk free return.
	RiskFreeRate float64 `yaml:"risk_free_rate" json:"risk_free_rate" jsonschema:"title=Risk Free Rate,description=Annual risk free return"`
}

type StrategyConfig struct {
	Symbol         string              `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument symbol used when the data carries none"`
	InitialCapital float64             `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting cash,minimum=0"`
	Strategy       StrategyKind        `yaml:"strategy" json:"strategy" validate:"required,oneof=crossover model" jsonschema:"title=Strategy,description=Signal generator"`
	MovingAverage  types.IndicatorType `yaml:"moving_average" json:"moving_average" validate:"required,oneof=ma ema" jsonschema:"title=Moving Average,description=Moving average family for the crossover"`
	FastWindow     int                 `yaml:"fast_window" json:"fast_window" validate:"gte=1" jsonschema:"title=Fast Window,description=Fast moving average period,minimum=1"`
	SlowWindow     int                 `yaml:"slow_window" json:"slow_window" validate:"gte=1" jsonschema:"title=Slow Window,description=Slow moving average period,minimum=1"`
	AllowShort     bool                `yaml:"allow_short" json:"allow_short" jsonschema:"title=Allow Short,description=Take short positions on bearish signals instead of going flat"`
	ExecutionLag   ExecutionLag        `yaml:"execution_lag" json:"execution_lag" validate:"required,oneof=same_bar next_bar_open" jsonschema:"title=Execution Lag,description=When orders fill relative to the signal bar"`
	OrderType      types.OrderType     `yaml:"order_type" json:"order_type" validate:"required,oneof=MARKET LIMIT" jsonschema:"title=Order Type,description=MARKET or LIMIT"`
	// LimitOffsetBps places limit orders this far through the reference price.
	LimitOffsetBps float64 `yaml:"limit_offset_bps" json:"limit_offset_bps" validate:"gte=0,lt=10000" jsonschema:"title=Limit Offset,description=Limit price offset in basis points,minimum=0"`
	Sizing         Sizing  `yaml:"sizing" json:"sizing"`
	// LotSize is the quantity increment. Order quantities are floored to it.
	LotSize     float64 `yaml:"lot_size" json:"lot_size" validate:"gt=0" jsonschema:"title=Lot Size,description=Quantity increment,minimum=0"`
	SlippageBps float64 `yaml:"slippage_bps" json:"slippage_bps" validate:"gte=0,lt=10000" jsonschema:"title=Slippage,description=Adverse price adjustment in basis points,minimum=0"`
	Fee         Fee     `yaml:"fee" json:"fee"`
	// ModelScoreThreshold is None when no model is used.
	ModelScoreThreshold optional.Option[float64] `yaml:"-" json:"model_score_threshold" jsonschema:"title=Model Score Threshold,description=Score threshold in [-1 1] or null"`
	ScorePolicy         ScorePolicy              `yaml:"score_policy" json:"score_policy"`
	// CloseAtEnd flattens any open position at the last bar's close.
	CloseAtEnd bool `yaml:"close_at_end" json:"close_at_end" jsonschema:"title=Close At End,description=Flatten the position at the last close"`
	// LastNBars restricts the run to the last N bars. 0 uses the whole series.
	LastNBars  int        `yaml:"last_n_bars" json:"last_n_bars" validate:"gte=0" jsonschema:"title=Last N Bars,description=Only backtest the last N bars (0 for all),minimum=0"`
	Statistics Statistics `yaml:"statistics" json:"statistics"`
}

// plainConfig has the fields of StrategyConfig without its methods.
type plainConfig StrategyConfig

type yamlConfig struct {
	Config              plainConfig `yaml:",inline"`
	ModelScoreThreshold *float64    `yaml:"model_score_threshold"`
}

// UnmarshalYAML implements yaml.Unmarshaler. Keys missing from the document keep
// their current values, so decoding over DefaultConfig() fills in defaults.
func (c *StrategyConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := yamlConfig{
		Config:              plainConfig(*c),
		ModelScoreThreshold: nil,
	}

	if c.ModelScoreThreshold.IsSome() {
		t := c.ModelScoreThreshold.Unwrap()
		raw.ModelScoreThreshold = &t
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = StrategyConfig(raw.Config)
	c.ModelScoreThreshold = optional.None[float64]()

	if raw.ModelScoreThreshold != nil {
		c.ModelScoreThreshold = optional.Some(*raw.ModelScoreThreshold)
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c StrategyConfig) MarshalYAML() (any, error) {
	raw := yamlConfig{
		Config:              plainConfig(c),
		ModelScoreThreshold: nil,
	}

	if c.ModelScoreThreshold.IsSome() {
		t := c.ModelScoreThreshold.Unwrap()
		raw.ModelScoreThreshold = &t
	}

	return raw, nil
}

// UsesModel reports whether model scores take part in signal generation.
func (c StrategyConfig) UsesModel() bool {
	return c.Strategy == StrategyModel || c.ModelScoreThreshold.IsSome()
}

// DefaultConfig returns a configuration that passes Validate.
func DefaultConfig() StrategyConfig {
	return StrategyConfig{
		Symbol:         "",
		InitialCapital: 10000,
		Strategy:       StrategyCrossover,
		MovingAverage:  types.IndicatorTypeMA,
		FastWindow:     10,
		SlowWindow:     30,
		AllowShort:     false,
		ExecutionLag:   ExecutionLagNextBarOpen,
		OrderType:      types.OrderTypeMarket,
		LimitOffsetBps: 0,
		Sizing: Sizing{
			Policy:       SizingFixedFraction,
			Quantity:     0,
			Fraction:     0.95,
			RiskFraction: 0,
			StopDistance: 0,
		},
		LotSize:     1,
		SlippageBps: 0,
		Fee: Fee{
			Model:   FeeZero,
			Amount:  0,
			Rate:    0,
			Minimum: 0,
		},
		ModelScoreThreshold: optional.None[float64](),
		ScorePolicy: ScorePolicy{
			Mode:   ScoreModeGate,
			Weight: 0.5,
		},
		CloseAtEnd: false,
		LastNBars:  0,
		Statistics: Statistics{
			PeriodsPerYear: 365,
			RiskFreeRate:   0,
		},
	}
}

// EmptyConfig returns the zero configuration. It does not pass Validate.
func EmptyConfig() StrategyConfig {
	return StrategyConfig{
		Symbol:              "",
		InitialCapital:      0,
		Strategy:            "",
		MovingAverage:       "",
		FastWindow:          0,
		SlowWindow:          0,
		AllowShort:          false,
		ExecutionLag:        "",
		OrderType:           "",
		LimitOffsetBps:      0,
		Sizing:              Sizing{Policy: "", Quantity: 0, Fraction: 0, RiskFraction: 0, StopDistance: 0},
		LotSize:             0,
		SlippageBps:         0,
		Fee:                 Fee{Model: "", Amount: 0, Rate: 0, Minimum: 0},
		ModelScoreThreshold: optional.None[float64](),
		ScorePolicy:         ScorePolicy{Mode: "", Weight: 0},
		CloseAtEnd:          false,
		LastNBars:           0,
		Statistics:          Statistics{PeriodsPerYear: 0, RiskFreeRate: 0},
	}
}

// TestConfig returns a small crossover configuration used by tests.
func TestConfig(fast, slow int) StrategyConfig {
	cfg := DefaultConfig()
	cfg.Symbol = "TEST"
	cfg.FastWindow = fast
	cfg.SlowWindow = slow
	cfg.Sizing = Sizing{Policy: SizingFixedQty, Quantity: 1, Fraction: 0, RiskFraction: 0, StopDistance: 0}

	return cfg
}

// Parse decodes YAML over DefaultConfig and validates the result.
func Parse(content []byte) (StrategyConfig, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return EmptyConfig(), errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse strategy config", err)
	}

	if err := cfg.Validate(); err != nil {
		return EmptyConfig(), err
	}

	return cfg, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (StrategyConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return EmptyConfig(), errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(content)
}

// Marshal encodes the config as YAML.
func (c StrategyConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
