package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// Indicator is a streaming technical indicator. Every instance owns its state and
// sees bars strictly in time order, one Update per bar.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters. Must be called before the first Update.
	Config(params ...any) error
	// Window is the number of bars needed for the first defined value.
	// The first Window()-1 updates return None.
	Window() int
	// Update folds the bar into the state and returns the new value.
	Update(bar types.Bar) optional.Option[float64]
	// Value returns the last value without consuming a bar.
	Value() optional.Option[float64]
	// Reset clears all state back to the just-configured condition.
	Reset()
}
