package events

import "fmt"

// Subject is the pure payload → subject function named in spec.md §4.D.
// An unrecognised payload type returns "", which callers treat as a
// programming error (every concrete Payload constructed in this package
// has a case here).
func Subject(p Payload) string {
	switch v := p.(type) {
	case OrderSubmitted:
		return "orders.accepted"
	case OrderRejected:
		return "orders.rejected"
	case OrderFilled:
		return "orders.filled"
	case OrderCancelled:
		return "orders.cancelled"
	case OrderError:
		return "orders.errors"
	case OrderAmended:
		return "orders.amended"
	case PositionDelta:
		return "positions.update"
	case PriceUpdate:
		return fmt.Sprintf("market.data.quote.%s", v.InstrumentID)
	case TradeExecuted:
		return fmt.Sprintf("market.data.trade.%s", v.InstrumentID)
	case OHLCVBar:
		return fmt.Sprintf("market.bars.%s.%s", v.InstrumentID, v.Interval)
	case RiskCheckResult:
		return fmt.Sprintf("risk.check_response.%s", v.OrderID)
	default:
		return ""
	}
}

// MirrorSubjects returns any additional subjects a payload must also be
// published to, beyond the one Subject returns. Only RiskCheckResult has
// one today (spec.md §4.D: "mirror on risk.events").
func MirrorSubjects(p Payload) []string {
	if _, ok := p.(RiskCheckResult); ok {
		return []string{"risk.events"}
	}
	return nil
}
