package orders

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError is the family of errors the five-step pipeline in
// Validate returns. Each variant below implements error and wraps the
// shared sentinel ErrValidation so callers can test family membership with
// errors.Is without switching on every concrete type.
var ErrValidation = errors.New("orders: validation failed")

type MaxQuantityExceeded struct {
	Quantity, Max decimal.Decimal
}

func (e *MaxQuantityExceeded) Error() string {
	return fmt.Sprintf("orders: quantity %s exceeds max %s", e.Quantity, e.Max)
}
func (e *MaxQuantityExceeded) Unwrap() error { return ErrValidation }

type InvalidSymbol struct{ Symbol string }

func (e *InvalidSymbol) Error() string    { return "orders: invalid symbol " + e.Symbol }
func (e *InvalidSymbol) Unwrap() error    { return ErrValidation }

type InvalidOrderType struct{ Kind OrderTypeKind }

func (e *InvalidOrderType) Error() string {
	return "orders: order type " + string(e.Kind) + " not permitted"
}
func (e *InvalidOrderType) Unwrap() error { return ErrValidation }

type InvalidPrice struct{ Price decimal.Decimal }

func (e *InvalidPrice) Error() string    { return fmt.Sprintf("orders: price %s out of range", e.Price) }
func (e *InvalidPrice) Unwrap() error    { return ErrValidation }

type InsufficientBuyingPower struct {
	Required, Available decimal.Decimal
}

func (e *InsufficientBuyingPower) Error() string {
	return fmt.Sprintf("orders: required %s exceeds available buying power %s", e.Required, e.Available)
}
func (e *InsufficientBuyingPower) Unwrap() error { return ErrValidation }
