// Package orders implements the order domain entity and its validation
// pipeline (spec.md §3, §4.E).
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderTypeKind discriminates the OrderType tagged union.
type OrderTypeKind string

const (
	Market    OrderTypeKind = "market"
	Limit     OrderTypeKind = "limit"
	Stop      OrderTypeKind = "stop"
	StopLimit OrderTypeKind = "stop_limit"
)

// OrderType is spec.md's tagged variant Market | Limit(price) |
// Stop(trigger) | StopLimit(trigger, limit). Only the fields relevant to
// Kind are populated; the constructors below are the supported way to
// build one.
type OrderType struct {
	Kind    OrderTypeKind
	Price   decimal.Decimal // Limit
	Trigger decimal.Decimal // Stop, StopLimit
	Limit   decimal.Decimal // StopLimit
}

func NewMarketOrder() OrderType { return OrderType{Kind: Market} }

func NewLimitOrder(price decimal.Decimal) OrderType {
	return OrderType{Kind: Limit, Price: price}
}

func NewStopOrder(trigger decimal.Decimal) OrderType {
	return OrderType{Kind: Stop, Trigger: trigger}
}

func NewStopLimitOrder(trigger, limit decimal.Decimal) OrderType {
	return OrderType{Kind: StopLimit, Trigger: trigger, Limit: limit}
}

// StatusKind discriminates the OrderStatus tagged union.
type StatusKind string

const (
	StatusNew             StatusKind = "new"
	StatusPartiallyFilled StatusKind = "partially_filled"
	StatusFilled          StatusKind = "filled"
	StatusCancelled       StatusKind = "cancelled"
	StatusRejected        StatusKind = "rejected"
)

// OrderStatus is spec.md's tagged variant New | PartiallyFilled{filled_qty,
// avg_price} | Filled{filled_qty, avg_price} | Cancelled | Rejected(reason).
// avg_price is the last fill price, not a running VWAP (spec.md's explicit
// resolution of that open question).
type OrderStatus struct {
	Kind      StatusKind
	FilledQty decimal.Decimal
	AvgPrice  decimal.Decimal
	Reason    string
}

func NewStatus() OrderStatus { return OrderStatus{Kind: StatusNew} }

func PartiallyFilledStatus(filledQty, avgPrice decimal.Decimal) OrderStatus {
	return OrderStatus{Kind: StatusPartiallyFilled, FilledQty: filledQty, AvgPrice: avgPrice}
}

func FilledStatus(filledQty, avgPrice decimal.Decimal) OrderStatus {
	return OrderStatus{Kind: StatusFilled, FilledQty: filledQty, AvgPrice: avgPrice}
}

func CancelledStatus() OrderStatus { return OrderStatus{Kind: StatusCancelled} }

func RejectedStatus(reason string) OrderStatus {
	return OrderStatus{Kind: StatusRejected, Reason: reason}
}

// Order is spec.md's Order entity. Each order is owned exclusively by the
// OMS in-memory book, keyed by ID; everything outside the book sees
// immutable snapshots (copies), never a pointer into the book.
type Order struct {
	ID           string
	ClientID     string
	InstrumentID string
	Side         Side
	OrderType    OrderType
	Quantity     decimal.Decimal
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReferencePrice returns the price used by the buying-power check: the
// limit leg for Limit and StopLimit orders, the trigger for Stop, and a
// sentinel for Market (spec.md §4.E step 5).
func (o Order) ReferencePrice() decimal.Decimal {
	switch o.OrderType.Kind {
	case Limit:
		return o.OrderType.Price
	case StopLimit:
		return o.OrderType.Limit
	case Stop:
		return o.OrderType.Trigger
	default:
		return marketReferencePrice
	}
}

// marketReferencePrice stands in for "+∞" in the buying-power check for
// Market orders (spec.md §4.E step 5 leaves the exact sentinel to the
// implementation); chosen large enough that no realistic buying_power
// configuration passes a Market buy without an explicit allowance.
var marketReferencePrice = decimal.New(1, 15) // 10^15
