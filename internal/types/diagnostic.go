package types

import (
	"time"

	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Diagnostic records a recovered problem. The run continues after each one.
type Diagnostic struct {
	Index    int              `yaml:"index" json:"index"`
	Time     time.Time        `yaml:"time" json:"time"`
	Code     errors.ErrorCode `yaml:"code" json:"code"`
	Category errors.Category  `yaml:"category" json:"category"`
	Message  string           `yaml:"message" json:"message"`
}

// NewDiagnostic builds a diagnostic from an error. The code is taken from the error chain.
func NewDiagnostic(index int, t time.Time, err error) Diagnostic {
	code := errors.GetCode(err)

	return Diagnostic{
		Index:    index,
		Time:     t,
		Code:     code,
		Category: code.Category(),
		Message:  err.Error(),
	}
}

type EventKind string

const (
	EventKindSignal     EventKind = "signal"
	EventKindOrder      EventKind = "order"
	EventKindFill       EventKind = "fill"
	EventKindNoFill     EventKind = "no_fill"
	EventKindSnapshot   EventKind = "snapshot"
	EventKindDiagnostic EventKind = "diagnostic"
)

// Event is one item of the live run stream. Payload holds a Signal, Order, Fill,
// Diagnostic or LedgerSnapshot matching Kind.
type Event struct {
	Kind    EventKind `json:"kind"`
	Index   int       `json:"index"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}
