package config

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Validate checks tags first, then the rules that span fields.
// Every failure is a ConfigError.
func (c StrategyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy config", err)
	}

	if c.Strategy == StrategyCrossover && c.FastWindow >= c.SlowWindow {
		return errors.Newf(errors.ErrCodeInvalidWindow, "fast_window %d must be less than slow_window %d", c.FastWindow, c.SlowWindow)
	}

	if err := c.validateSizing(); err != nil {
		return err
	}

	if err := c.validateFee(); err != nil {
		return err
	}

	if c.ModelScoreThreshold.IsSome() {
		t := c.ModelScoreThreshold.Unwrap()
		if math.IsNaN(t) || t < -1 || t > 1 {
			return errors.Newf(errors.ErrCodeInvalidThreshold, "model_score_threshold %v must be in [-1, 1]", t)
		}
	}

	if c.Strategy == StrategyModel && c.ModelScoreThreshold.IsNone() {
		return errors.New(errors.ErrCodeInvalidThreshold, "model strategy requires model_score_threshold")
	}

	if c.OrderType == types.OrderTypeMarket && c.LimitOffsetBps != 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "limit_offset_bps applies to LIMIT orders only")
	}

	// a same bar limit is priced off the close it is tested against, so any offset never fills
	if c.OrderType == types.OrderTypeLimit && c.ExecutionLag == ExecutionLagSameBar && c.LimitOffsetBps != 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "limit_offset_bps requires execution_lag next_bar_open")
	}

	return nil
}

func (c StrategyConfig) validateSizing() error {
	s := c.Sizing

	switch s.Policy {
	case SizingFixedQty:
		if s.Quantity <= 0 {
			return errors.New(errors.ErrCodeInvalidSizing, "fixed_qty requires quantity > 0")
		}
	case SizingFixedFraction:
		if s.Fraction <= 0 {
			return errors.New(errors.ErrCodeInvalidSizing, "fixed_fraction requires fraction in (0, 1]")
		}
	case SizingFixedRisk:
		if s.RiskFraction <= 0 {
			return errors.New(errors.ErrCodeInvalidSizing, "fixed_risk requires risk_fraction in (0, 1]")
		}

		if s.StopDistance <= 0 {
			return errors.New(errors.ErrCodeInvalidSizing, "fixed_risk requires stop_distance > 0")
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidSizing, "unknown sizing policy %q", s.Policy)
	}

	return nil
}

func (c StrategyConfig) validateFee() error {
	f := c.Fee

	switch f.Model {
	case FeeFlat:
		if f.Rate != 0 || f.Minimum != 0 {
			return errors.New(errors.ErrCodeInvalidFeeModel, "flat fee takes amount only")
		}
	case FeeProportional:
		if f.Rate >= 1 {
			return errors.Newf(errors.ErrCodeInvalidFeeModel, "proportional rate %v must be below 1", f.Rate)
		}
	case FeePerShare, FeeZero:
	default:
		return errors.Newf(errors.ErrCodeInvalidFeeModel, "unknown fee model %q", f.Model)
	}

	return nil
}
