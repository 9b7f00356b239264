package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Constructor builds an unconfigured indicator.
type Constructor func() Indicator

// IndicatorRegistry maps indicator names to constructors. Every Create call returns
// a fresh instance, so runs never share indicator state.
type IndicatorRegistry interface {
	RegisterIndicator(name types.IndicatorType, constructor Constructor) error
	Create(name types.IndicatorType, params ...any) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 is a mutex guarded IndicatorRegistry.
type IndicatorRegistryV1 struct {
	constructors map[types.IndicatorType]Constructor
	mu           sync.RWMutex
}

// NewIndicatorRegistry creates an empty indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		constructors: make(map[types.IndicatorType]Constructor),
		mu:           sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding every built-in indicator.
func NewDefaultRegistry() IndicatorRegistry {
	r := NewIndicatorRegistry()

	_ = r.RegisterIndicator(types.IndicatorTypeMA, NewMA)
	_ = r.RegisterIndicator(types.IndicatorTypeEMA, NewEMA)
	_ = r.RegisterIndicator(types.IndicatorTypeRSI, NewRSI)
	_ = r.RegisterIndicator(types.IndicatorTypeBollingerBands, NewBollingerBands)
	_ = r.RegisterIndicator(types.IndicatorTypeROC, NewROC)
	_ = r.RegisterIndicator(types.IndicatorTypeMomentum, NewMomentum)

	return r
}

// RegisterIndicator adds a constructor to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(name types.IndicatorType, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
	}

	r.constructors[name] = constructor

	return nil
}

// Create builds and configures a new indicator instance.
func (r *IndicatorRegistryV1) Create(name types.IndicatorType, params ...any) (Indicator, error) {
	r.mu.RLock()
	constructor, exists := r.constructors[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	ind := constructor()
	if err := ind.Config(params...); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to configure %s", name)
	}

	return ind, nil
}

// ListIndicators returns all registered indicator names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	delete(r.constructors, name)

	return nil
}
