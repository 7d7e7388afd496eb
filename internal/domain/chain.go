package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLC bar. Prices are carried as decimals until they reach
// the indicator layer.
type Bar struct {
	Date     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	AdjClose decimal.Decimal
	Volume   int
}

// PutQuote is a single put contract quote. Premium is the last trade price
// when one exists, otherwise the bid/ask midpoint.
type PutQuote struct {
	Strike            float64
	Expiration        time.Time
	Premium           decimal.Decimal
	OpenInterest      int
	ImpliedVolatility float64
}

// IsMonthlyExpiration reports whether d is a standard monthly expiration:
// the third Friday of its month (Saturday-dated contracts count as the
// preceding Friday).
func IsMonthlyExpiration(d time.Time) bool {
	if d.Weekday() == time.Saturday {
		d = d.AddDate(0, 0, -1)
	}
	return d.Weekday() == time.Friday && d.Day() >= 15 && d.Day() <= 21
}
