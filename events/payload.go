// Package events defines the typed event payloads published by the OMS and
// the pure subject-derivation function that routes each one to its wire
// subject (spec.md §4.D).
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Meta carries the envelope metadata spec.md's data model names: a unique
// id, a timestamp, and optional causal links back to the event that
// triggered this one. It is embedded into every payload so the fields sit
// flat on the wire alongside the payload's own fields.
type Meta struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CausationID   string    `json:"causation_id,omitempty"`
	Version       int       `json:"version"`
}

func newMeta() Meta {
	return Meta{ID: uuid.New().String(), Timestamp: time.Now().UTC(), Version: 1}
}

// Payload is the tagged-union member contract: every event payload
// reports its own kind so the router can switch on concrete type without
// a separate discriminator field threaded through by callers.
type Payload interface {
	Kind() string
}

// OrderSubmitted is published on orders.accepted.
type OrderSubmitted struct {
	Meta
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	Instrument string          `json:"instrument"`
	Quantity   decimal.Decimal `json:"quantity"`
}

func (OrderSubmitted) Kind() string { return "order_submitted" }

// NewOrderSubmitted builds an OrderSubmitted payload with fresh envelope
// metadata.
func NewOrderSubmitted(orderID, instrument string, quantity decimal.Decimal) OrderSubmitted {
	return OrderSubmitted{Meta: newMeta(), Type: "order_submitted", OrderID: orderID, Instrument: instrument, Quantity: quantity}
}

// OrderRejected is published on orders.rejected.
type OrderRejected struct {
	Meta
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

func (OrderRejected) Kind() string { return "order_rejected" }

func NewOrderRejected(orderID, reason string) OrderRejected {
	return OrderRejected{Meta: newMeta(), Type: "order_rejected", OrderID: orderID, Reason: reason}
}

// OrderFilled is published on orders.filled.
type OrderFilled struct {
	Meta
	Type      string          `json:"type"`
	OrderID   string          `json:"order_id"`
	FillQty   decimal.Decimal `json:"fill_qty"`
	FillPrice decimal.Decimal `json:"fill_price"`
}

func (OrderFilled) Kind() string { return "order_filled" }

func NewOrderFilled(orderID string, fillQty, fillPrice decimal.Decimal) OrderFilled {
	return OrderFilled{Meta: newMeta(), Type: "order_filled", OrderID: orderID, FillQty: fillQty, FillPrice: fillPrice}
}

// OrderCancelled is published on orders.cancelled.
type OrderCancelled struct {
	Meta
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
}

func (OrderCancelled) Kind() string { return "order_cancelled" }

func NewOrderCancelled(orderID string) OrderCancelled {
	return OrderCancelled{Meta: newMeta(), Type: "order_cancelled", OrderID: orderID}
}

// OrderError is published on orders.errors for conditions that are not a
// rejection of a specific submission (an unknown order_id on a fill,
// amend, or cancel).
type OrderError struct {
	Meta
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

func (OrderError) Kind() string { return "order_error" }

func NewOrderError(orderID, reason string) OrderError {
	return OrderError{Meta: newMeta(), Type: "order_error", OrderID: orderID, Reason: reason}
}

// OrderAmended is published on orders.amended after a successful Amend
// transition (SPEC_FULL.md §4.G's supplement to spec.md's inbound subject
// list).
type OrderAmended struct {
	Meta
	Type     string          `json:"type"`
	OrderID  string          `json:"order_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (OrderAmended) Kind() string { return "order_amended" }

func NewOrderAmended(orderID string, quantity decimal.Decimal) OrderAmended {
	return OrderAmended{Meta: newMeta(), Type: "order_amended", OrderID: orderID, Quantity: quantity}
}

// PositionDelta is published on positions.update.
type PositionDelta struct {
	Meta
	Type         string          `json:"type"`
	InstrumentID string          `json:"instrument_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Side         string          `json:"side"`
}

func (PositionDelta) Kind() string { return "position_delta" }

func NewPositionDelta(instrumentID string, quantity decimal.Decimal, side string) PositionDelta {
	return PositionDelta{Meta: newMeta(), Type: "position_delta", InstrumentID: instrumentID, Quantity: quantity, Side: side}
}

// PriceUpdate is published on market.data.quote.<inst>.
type PriceUpdate struct {
	Meta
	Type         string          `json:"type"`
	InstrumentID string          `json:"instrument_id"`
	Price        decimal.Decimal `json:"price"`
}

func (PriceUpdate) Kind() string { return "price_update" }

func NewPriceUpdate(instrumentID string, price decimal.Decimal) PriceUpdate {
	return PriceUpdate{Meta: newMeta(), Type: "price_update", InstrumentID: instrumentID, Price: price}
}

// TradeExecuted is published on market.data.trade.<inst>.
type TradeExecuted struct {
	Meta
	Type         string          `json:"type"`
	InstrumentID string          `json:"instrument_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func (TradeExecuted) Kind() string { return "trade_executed" }

func NewTradeExecuted(instrumentID string, price, quantity decimal.Decimal) TradeExecuted {
	return TradeExecuted{Meta: newMeta(), Type: "trade_executed", InstrumentID: instrumentID, Price: price, Quantity: quantity}
}

// Interval is the OHLCV bar period, one of the three spec.md §4.D names.
type Interval string

const (
	Interval1s Interval = "1s"
	Interval1m Interval = "1m"
	Interval1h Interval = "1h"
)

// OHLCVBar is published on market.bars.<inst>.<interval>.
type OHLCVBar struct {
	Meta
	Type         string          `json:"type"`
	InstrumentID string          `json:"instrument_id"`
	Interval     Interval        `json:"interval"`
	Open         decimal.Decimal `json:"open"`
	High         decimal.Decimal `json:"high"`
	Low          decimal.Decimal `json:"low"`
	Close        decimal.Decimal `json:"close"`
	Volume       decimal.Decimal `json:"volume"`
	VWAP         decimal.Decimal `json:"vwap"`
	TradeCount   int             `json:"trade_count"`
	OpenTS       time.Time       `json:"open_ts"`
	CloseTS      time.Time       `json:"close_ts"`
	Sequence     uint64          `json:"sequence"`
}

func (OHLCVBar) Kind() string { return "ohlcv_bar" }

// RiskCheckResult is published on risk.check_response.<order_id>, and
// mirrored verbatim onto risk.events.
type RiskCheckResult struct {
	Meta
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	Passed  bool   `json:"passed"`
	Result  string `json:"result"`
}

func (RiskCheckResult) Kind() string { return "risk_check_result" }

func NewRiskCheckResult(orderID string, passed bool, result string) RiskCheckResult {
	return RiskCheckResult{Meta: newMeta(), Type: "risk_check_result", OrderID: orderID, Passed: passed, Result: result}
}
