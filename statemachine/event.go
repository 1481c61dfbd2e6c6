// Package statemachine implements the pure order-lifecycle transition
// function (spec.md §4.F): given an order and an event, it returns the
// next order snapshot and the side effects to publish, or an error if the
// transition is not legal from the order's current status.
package statemachine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the tagged-union input to Transition.
type Event interface {
	isEvent()
}

// FillEvent reports a fill of Qty at Price.
type FillEvent struct {
	Qty       decimal.Decimal
	Price     decimal.Decimal
	Timestamp time.Time
}

func (FillEvent) isEvent() {}

// CancelEvent requests cancellation.
type CancelEvent struct {
	Timestamp time.Time
}

func (CancelEvent) isEvent() {}

// RejectEvent rejects a New order with Reason.
type RejectEvent struct {
	Reason    string
	Timestamp time.Time
}

func (RejectEvent) isEvent() {}

// AmendEvent requests a quantity/price change. Price is optional (nil
// leaves the current price leg untouched).
type AmendEvent struct {
	NewQty    decimal.Decimal
	NewPrice  *decimal.Decimal
	Timestamp time.Time
}

func (AmendEvent) isEvent() {}
