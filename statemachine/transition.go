package statemachine

import (
	"github.com/shopspring/decimal"

	"github.com/axtrade/omsbroker/events"
	"github.com/axtrade/omsbroker/orders"
)

// Transition is the pure function spec.md §4.F names: given order's
// current snapshot and event, it returns the next snapshot and the side
// effects to publish. Neither is applied to any shared state here — the
// caller (oms) commits both atomically: update the book, then publish
// every effect.
func Transition(order orders.Order, event Event) (orders.Order, []events.Payload, error) {
	switch e := event.(type) {
	case FillEvent:
		return transitionFill(order, e)
	case CancelEvent:
		return transitionCancel(order, e)
	case RejectEvent:
		return transitionReject(order, e)
	case AmendEvent:
		return transitionAmend(order, e)
	default:
		return order, nil, &InvalidTransition{From: order.Status.Kind, Event: "Unknown"}
	}
}

func filledQty(order orders.Order) decimal.Decimal {
	if order.Status.Kind == orders.StatusPartiallyFilled {
		return order.Status.FilledQty
	}
	return decimal.Zero
}

func transitionFill(order orders.Order, e FillEvent) (orders.Order, []events.Payload, error) {
	switch order.Status.Kind {
	case orders.StatusNew, orders.StatusPartiallyFilled:
		newFilled := filledQty(order).Add(e.Qty)
		next := order
		if newFilled.GreaterThanOrEqual(order.Quantity) {
			next.Status = orders.FilledStatus(order.Quantity, e.Price)
		} else {
			next.Status = orders.PartiallyFilledStatus(newFilled, e.Price)
		}
		next.UpdatedAt = e.Timestamp

		effects := []events.Payload{
			events.NewOrderFilled(order.ID, e.Qty, e.Price),
			events.NewPositionDelta(order.InstrumentID, e.Qty, string(order.Side)),
		}
		return next, effects, nil
	default:
		return order, nil, &InvalidTransition{From: order.Status.Kind, Event: "Fill"}
	}
}

func transitionCancel(order orders.Order, e CancelEvent) (orders.Order, []events.Payload, error) {
	switch order.Status.Kind {
	case orders.StatusNew, orders.StatusPartiallyFilled:
		next := order
		next.Status = orders.CancelledStatus()
		next.UpdatedAt = e.Timestamp
		return next, []events.Payload{events.NewOrderCancelled(order.ID)}, nil
	case orders.StatusCancelled:
		return order, nil, nil
	default:
		return order, nil, &InvalidTransition{From: order.Status.Kind, Event: "Cancel"}
	}
}

func transitionReject(order orders.Order, e RejectEvent) (orders.Order, []events.Payload, error) {
	if order.Status.Kind != orders.StatusNew {
		return order, nil, &InvalidTransition{From: order.Status.Kind, Event: "Reject"}
	}
	next := order
	next.Status = orders.RejectedStatus(e.Reason)
	next.UpdatedAt = e.Timestamp
	return next, []events.Payload{events.NewOrderRejected(order.ID, e.Reason)}, nil
}

func transitionAmend(order orders.Order, e AmendEvent) (orders.Order, []events.Payload, error) {
	switch order.Status.Kind {
	case orders.StatusNew, orders.StatusPartiallyFilled:
		filled := filledQty(order)
		if e.NewQty.LessThan(filled) {
			return order, nil, &InsufficientQuantity{NewQty: e.NewQty, Filled: filled}
		}
		next := order
		next.Quantity = e.NewQty
		if e.NewPrice != nil {
			switch next.OrderType.Kind {
			case orders.Limit:
				next.OrderType.Price = *e.NewPrice
			case orders.Stop:
				next.OrderType.Trigger = *e.NewPrice
			case orders.StopLimit:
				next.OrderType.Limit = *e.NewPrice
			}
		}
		next.UpdatedAt = e.Timestamp
		return next, nil, nil
	default:
		return order, nil, &InvalidTransition{From: order.Status.Kind, Event: "Amend"}
	}
}
