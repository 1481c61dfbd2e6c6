package oms

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/axtrade/omsbroker/orders"
)

// newOrderRequest is the orders.new payload (spec.md §6): {order:
// <Order>, account_id}.
type newOrderRequest struct {
	AccountID string       `json:"account_id"`
	Order     orderRequest `json:"order"`
}

// orderRequest is the wire shape of an order submission: order_type and
// its associated price legs are flattened, matching how a caller would
// actually build this JSON by hand rather than mirroring orders.OrderType
// field-for-field.
type orderRequest struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	InstrumentID string          `json:"instrument_id"`
	Side         string          `json:"side"`
	OrderType    string          `json:"order_type"`
	Price        decimal.Decimal `json:"price,omitempty"`
	Trigger      decimal.Decimal `json:"trigger,omitempty"`
	Limit        decimal.Decimal `json:"limit,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func (r orderRequest) toOrder() (orders.Order, error) {
	var orderType orders.OrderType
	switch orders.OrderTypeKind(r.OrderType) {
	case orders.Market:
		orderType = orders.NewMarketOrder()
	case orders.Limit:
		orderType = orders.NewLimitOrder(r.Price)
	case orders.Stop:
		orderType = orders.NewStopOrder(r.Trigger)
	case orders.StopLimit:
		orderType = orders.NewStopLimitOrder(r.Trigger, r.Limit)
	default:
		return orders.Order{}, fmt.Errorf("oms: unknown order_type %q", r.OrderType)
	}

	var side orders.Side
	switch r.Side {
	case string(orders.SideBuy):
		side = orders.SideBuy
	case string(orders.SideSell):
		side = orders.SideSell
	default:
		return orders.Order{}, fmt.Errorf("oms: unknown side %q", r.Side)
	}

	return orders.Order{
		ID:           r.ID,
		ClientID:     r.ClientID,
		InstrumentID: r.InstrumentID,
		Side:         side,
		OrderType:    orderType,
		Quantity:     r.Quantity,
	}, nil
}

// fillRequest is the orders.fill payload: {order_id, fill_qty, fill_price,
// fill_id}. fill_id is optional; when present it lets the service drop a
// redelivered copy of the same fill instead of double-applying it.
type fillRequest struct {
	OrderID   string          `json:"order_id"`
	FillID    string          `json:"fill_id,omitempty"`
	FillQty   decimal.Decimal `json:"fill_qty"`
	FillPrice decimal.Decimal `json:"fill_price"`
}

// cancelRequest is the orders.cancel payload: {order_id}.
type cancelRequest struct {
	OrderID string `json:"order_id"`
}

// amendRequest is the orders.amend payload (SPEC_FULL.md §4.G supplement):
// {order_id, quantity, price?}.
type amendRequest struct {
	OrderID  string           `json:"order_id"`
	Quantity decimal.Decimal  `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}
