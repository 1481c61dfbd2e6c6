package statemachine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/axtrade/omsbroker/orders"
)

// ErrTransition is the family sentinel both errors below unwrap to.
var ErrTransition = errors.New("statemachine: illegal transition")

// InvalidTransition is returned for any (status, event) pair not named in
// spec.md §4.F's table.
type InvalidTransition struct {
	From  orders.StatusKind
	Event string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("statemachine: %s is not legal from %s", e.Event, e.From)
}
func (e *InvalidTransition) Unwrap() error { return ErrTransition }

// InsufficientQuantity is returned when an Amend's new quantity would fall
// below the quantity already filled.
type InsufficientQuantity struct {
	NewQty, Filled decimal.Decimal
}

func (e *InsufficientQuantity) Error() string {
	return fmt.Sprintf("statemachine: amended quantity %s below filled quantity %s", e.NewQty, e.Filled)
}
func (e *InsufficientQuantity) Unwrap() error { return ErrTransition }
