package repository

import (
	"fmt"
	"sort"
	"time"

	"stockhome/internal/domain"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/options"
	"github.com/shopspring/decimal"
)

type OptionsChainRepository interface {
	// GetExpirations lists every listed expiration date for the symbol.
	GetExpirations(symbol string) ([]time.Time, error)
	// GetPuts returns the put side of the chain for one expiration.
	GetPuts(symbol string, expiration time.Time) ([]domain.PutQuote, error)
}

type optionsChainRepositoryHandler struct{}

func NewOptionsChainRepository() OptionsChainRepository {
	return optionsChainRepositoryHandler{}
}

func (h optionsChainRepositoryHandler) GetExpirations(symbol string) ([]time.Time, error) {
	iter := options.GetStraddle(symbol)
	// the iterator meta is populated lazily
	for iter.Next() {
		break
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch option meta for %s: %w", symbol, err)
	}
	meta := iter.Meta()
	if meta == nil {
		return nil, fmt.Errorf("no option meta for %s", symbol)
	}

	out := make([]time.Time, 0, len(meta.AllExpirationDates))
	for _, ts := range meta.AllExpirationDates {
		out = append(out, time.Unix(int64(ts), 0).UTC())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (h optionsChainRepositoryHandler) GetPuts(symbol string, expiration time.Time) ([]domain.PutQuote, error) {
	iter := options.GetStraddleP(&options.Params{
		UnderlyingSymbol: symbol,
		Expiration:       datetime.New(&expiration),
	})

	puts := []domain.PutQuote{}
	for iter.Next() {
		s := iter.Straddle()
		if s.Put == nil {
			continue
		}
		puts = append(puts, domain.PutQuote{
			Strike:            s.Strike,
			Expiration:        time.Unix(int64(s.Put.Expiration), 0).UTC(),
			Premium:           putPremium(s.Put),
			OpenInterest:      s.Put.OpenInterest,
			ImpliedVolatility: s.Put.ImpliedVolatility,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch puts for %s %s: %w", symbol, expiration.Format("2006-01-02"), err)
	}

	sort.Slice(puts, func(i, j int) bool { return puts[i].Strike < puts[j].Strike })
	return puts, nil
}

// putPremium prefers the last trade, falling back to the bid/ask midpoint on
// contracts that have not printed.
func putPremium(c *finance.Contract) decimal.Decimal {
	if c.LastPrice > 0 {
		return decimal.NewFromFloat(c.LastPrice)
	}
	if c.Bid > 0 || c.Ask > 0 {
		return decimal.NewFromFloat((c.Bid + c.Ask) / 2)
	}
	return decimal.Zero
}
