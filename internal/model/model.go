// Package model supplies externally produced forecasting scores to the engine.
// The engine only reads scores; nothing here trains or updates a model.
package model

import (
	"github.com/moznion/go-optional"
)

// ScoreModel returns the model score for a bar index, in [-1, 1], or None when
// the model has no opinion for that bar.
type ScoreModel interface {
	Score(index int) optional.Option[float64]
}

// Static serves precomputed scores by bar index.
type Static struct {
	scores []optional.Option[float64]
}

func NewStatic(scores []optional.Option[float64]) *Static {
	return &Static{scores: scores}
}

// FromValues wraps every value as a defined score.
func FromValues(values ...float64) *Static {
	scores := make([]optional.Option[float64], len(values))
	for i, v := range values {
		scores[i] = optional.Some(v)
	}

	return NewStatic(scores)
}

func (s *Static) Score(index int) optional.Option[float64] {
	if index < 0 || index >= len(s.scores) {
		return optional.None[float64]()
	}

	return s.scores[index]
}

// Len returns the number of indexed scores.
func (s *Static) Len() int {
	return len(s.scores)
}

// Offset shifts indices by n, so Score(i) returns the wrapped Score(i+n).
// The engine uses it when only the last bars of a series are backtested.
type Offset struct {
	model ScoreModel
	n     int
}

func NewOffset(model ScoreModel, n int) *Offset {
	return &Offset{
		model: model,
		n:     n,
	}
}

func (o *Offset) Score(index int) optional.Option[float64] {
	return o.model.Score(index + o.n)
}
