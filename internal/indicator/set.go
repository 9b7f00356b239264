package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Spec describes one indicator of a Set.
type Spec struct {
	// Key is how strategies look the value up, e.g. "fast".
	Key    string
	Type   types.IndicatorType
	Params []any
}

// Values maps indicator keys to their value at one bar.
type Values map[string]optional.Option[float64]

// Get returns the value for key, None when the key is unknown.
func (v Values) Get(key string) optional.Option[float64] {
	if value, ok := v[key]; ok {
		return value
	}

	return optional.None[float64]()
}

// Set is a group of indicators updated together, once per bar.
type Set struct {
	keys       []string
	indicators map[string]Indicator
}

// NewSet creates every indicator in specs from the registry.
func NewSet(registry IndicatorRegistry, specs ...Spec) (*Set, error) {
	set := &Set{
		keys:       make([]string, 0, len(specs)),
		indicators: make(map[string]Indicator, len(specs)),
	}

	for _, spec := range specs {
		if _, exists := set.indicators[spec.Key]; exists {
			return nil, errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "duplicate indicator key %q", spec.Key)
		}

		ind, err := registry.Create(spec.Type, spec.Params...)
		if err != nil {
			return nil, err
		}

		set.keys = append(set.keys, spec.Key)
		set.indicators[spec.Key] = ind
	}

	return set, nil
}

// Update feeds the bar to every indicator and returns their new values.
func (s *Set) Update(bar types.Bar) Values {
	values := make(Values, len(s.keys))
	for _, key := range s.keys {
		values[key] = s.indicators[key].Update(bar)
	}

	return values
}

// Values returns the current values without consuming a bar.
func (s *Set) Values() Values {
	values := make(Values, len(s.keys))
	for _, key := range s.keys {
		values[key] = s.indicators[key].Value()
	}

	return values
}

// Get returns the indicator registered under key.
func (s *Set) Get(key string) (Indicator, bool) {
	ind, ok := s.indicators[key]

	return ind, ok
}

// Keys returns the indicator keys in declaration order.
func (s *Set) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Window returns the largest warm-up window in the set.
func (s *Set) Window() int {
	w := 0
	for _, ind := range s.indicators {
		if ind.Window() > w {
			w = ind.Window()
		}
	}

	return w
}

// Reset clears every indicator.
func (s *Set) Reset() {
	for _, ind := range s.indicators {
		ind.Reset()
	}
}
