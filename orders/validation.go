package orders

import "github.com/shopspring/decimal"

// ValidationRules is the per-account configuration the five-step pipeline
// checks an order against (spec.md §4.E).
type ValidationRules struct {
	MaxQuantity       decimal.Decimal
	ValidSymbols      map[string]struct{}
	BuyingPower       decimal.Decimal
	AllowMarketOrders bool
	MinPrice          decimal.Decimal
	MaxPrice          decimal.Decimal
}

// DefaultValidationRules is the conservative fallback an OMS uses when an
// account has no rules on file yet (SPEC_FULL.md §4.G's rules-cache
// seeding). Its symbol set is empty, so every order validated against it
// is rejected with InvalidSymbol.
func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		MaxQuantity:       decimal.NewFromInt(100),
		ValidSymbols:      map[string]struct{}{},
		BuyingPower:       decimal.Zero,
		AllowMarketOrders: false,
		MinPrice:          decimal.Zero,
		MaxPrice:          decimal.New(1, 9),
	}
}

// Validate runs the five-step pipeline in order and returns the first
// failure, or nil if order passes every check against rules.
func Validate(order Order, rules ValidationRules) error {
	if order.Quantity.GreaterThan(rules.MaxQuantity) {
		return &MaxQuantityExceeded{Quantity: order.Quantity, Max: rules.MaxQuantity}
	}

	if _, ok := rules.ValidSymbols[order.InstrumentID]; !ok {
		return &InvalidSymbol{Symbol: order.InstrumentID}
	}

	if order.OrderType.Kind == Market && !rules.AllowMarketOrders {
		return &InvalidOrderType{Kind: Market}
	}

	if err := validatePriceRange(order, rules); err != nil {
		return err
	}

	if order.Side == SideBuy {
		required := order.Quantity.Mul(order.ReferencePrice())
		if required.GreaterThan(rules.BuyingPower) {
			return &InsufficientBuyingPower{Required: required, Available: rules.BuyingPower}
		}
	}

	return nil
}

func validatePriceRange(order Order, rules ValidationRules) error {
	inRange := func(p decimal.Decimal) bool {
		return !p.LessThan(rules.MinPrice) && !p.GreaterThan(rules.MaxPrice)
	}

	switch order.OrderType.Kind {
	case Limit:
		if !inRange(order.OrderType.Price) {
			return &InvalidPrice{Price: order.OrderType.Price}
		}
	case Stop:
		if !inRange(order.OrderType.Trigger) {
			return &InvalidPrice{Price: order.OrderType.Trigger}
		}
	case StopLimit:
		if !inRange(order.OrderType.Trigger) {
			return &InvalidPrice{Price: order.OrderType.Trigger}
		}
		if !inRange(order.OrderType.Limit) {
			return &InvalidPrice{Price: order.OrderType.Limit}
		}
	case Market:
		// No price to range-check.
	}
	return nil
}
