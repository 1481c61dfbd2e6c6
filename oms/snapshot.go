package oms

import (
	"github.com/shopspring/decimal"

	"github.com/axtrade/omsbroker/orders"
	"github.com/axtrade/omsbroker/store"
)

func decimalString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func toSnapshot(o orders.Order) store.OrderSnapshot {
	return store.OrderSnapshot{
		ID:             o.ID,
		ClientID:       o.ClientID,
		InstrumentID:   o.InstrumentID,
		Side:           string(o.Side),
		OrderTypeKind:  string(o.OrderType.Kind),
		Price:          decimalString(o.OrderType.Price),
		Trigger:        decimalString(o.OrderType.Trigger),
		Limit:          decimalString(o.OrderType.Limit),
		Quantity:       o.Quantity.String(),
		StatusKind:     string(o.Status.Kind),
		FilledQty:      decimalString(o.Status.FilledQty),
		AvgPrice:       decimalString(o.Status.AvgPrice),
		RejectedReason: o.Status.Reason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromSnapshot(snap store.OrderSnapshot) orders.Order {
	var orderType orders.OrderType
	switch orders.OrderTypeKind(snap.OrderTypeKind) {
	case orders.Limit:
		orderType = orders.NewLimitOrder(parseDecimal(snap.Price))
	case orders.Stop:
		orderType = orders.NewStopOrder(parseDecimal(snap.Trigger))
	case orders.StopLimit:
		orderType = orders.NewStopLimitOrder(parseDecimal(snap.Trigger), parseDecimal(snap.Limit))
	default:
		orderType = orders.NewMarketOrder()
	}

	var status orders.OrderStatus
	switch orders.StatusKind(snap.StatusKind) {
	case orders.StatusPartiallyFilled:
		status = orders.PartiallyFilledStatus(parseDecimal(snap.FilledQty), parseDecimal(snap.AvgPrice))
	case orders.StatusFilled:
		status = orders.FilledStatus(parseDecimal(snap.FilledQty), parseDecimal(snap.AvgPrice))
	case orders.StatusCancelled:
		status = orders.CancelledStatus()
	case orders.StatusRejected:
		status = orders.RejectedStatus(snap.RejectedReason)
	default:
		status = orders.NewStatus()
	}

	return orders.Order{
		ID:           snap.ID,
		ClientID:     snap.ClientID,
		InstrumentID: snap.InstrumentID,
		Side:         orders.Side(snap.Side),
		OrderType:    orderType,
		Quantity:     parseDecimal(snap.Quantity),
		Status:       status,
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
	}
}

func rulesFromSnapshot(snap store.RulesSnapshot) orders.ValidationRules {
	symbols := make(map[string]struct{}, len(snap.ValidSymbols))
	for _, sym := range snap.ValidSymbols {
		symbols[sym] = struct{}{}
	}
	return orders.ValidationRules{
		MaxQuantity:       parseDecimal(snap.MaxQuantity),
		ValidSymbols:      symbols,
		BuyingPower:       parseDecimal(snap.BuyingPower),
		AllowMarketOrders: snap.AllowMarketOrders,
		MinPrice:          parseDecimal(snap.MinPrice),
		MaxPrice:          parseDecimal(snap.MaxPrice),
	}
}
