package indicator

import (
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// periodParam reads a positive integer period. float64 is accepted since
// YAML and JSON decode numbers that way.
func periodParam(params []any, i int) (int, error) {
	if len(params) <= i {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "missing parameter %d: period (int)", i)
	}

	var period int

	switch p := params[i].(type) {
	case int:
		period = p
	case float64:
		if p != float64(int(p)) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "period must be a whole number, got %v", p)
		}

		period = int(p)
	default:
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int or float")
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidWindow, "period must be a positive integer, got %d", period)
	}

	return period, nil
}

func floatParam(params []any, i int, name string) (float64, error) {
	if len(params) <= i {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "missing parameter %d: %s (float64)", i, name)
	}

	switch p := params[i].(type) {
	case float64:
		return p, nil
	case int:
		return float64(p), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}
