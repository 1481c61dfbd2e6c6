package store

import "time"

// OrderSnapshot is the on-disk shape of an orders.Order. Money and quantity
// fields are carried as decimal strings rather than shopspring/decimal
// values directly, so the snapshot round-trips through both the CBOR
// (Pebble) and JSON (Redis) backends without depending on decimal.Decimal's
// encoding support in either format.
type OrderSnapshot struct {
	ID             string
	ClientID       string
	InstrumentID   string
	Side           string
	OrderTypeKind  string
	Price          string
	Trigger        string
	Limit          string
	Quantity       string
	StatusKind     string
	FilledQty      string
	AvgPrice       string
	RejectedReason string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RulesSnapshot is the on-disk shape of an orders.ValidationRules entry in
// the per-account rules cache.
type RulesSnapshot struct {
	AccountID         string
	MaxQuantity       string
	ValidSymbols      []string
	BuyingPower       string
	AllowMarketOrders bool
	MinPrice          string
	MaxPrice          string
}
