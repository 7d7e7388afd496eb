package domain

import "github.com/shopspring/decimal"

// PlacedOrder records a submitted top-buys order for logging and tests.
type PlacedOrder struct {
	Symbol          string
	Quantity        decimal.Decimal
	LimitPrice      decimal.Decimal
	TakeProfitPrice decimal.Decimal
	AlpacaOrderID   string
}
