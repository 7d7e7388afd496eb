package repository

import (
	"fmt"
	"time"

	"stockhome/internal/domain"

	"github.com/piquette/finance-go/equity"
)

type FundamentalsRepository interface {
	Get(symbol string) (*domain.Fundamentals, error)
}

type fundamentalsRepositoryHandler struct{}

func NewFundamentalsRepository() FundamentalsRepository {
	return fundamentalsRepositoryHandler{}
}

func (h fundamentalsRepositoryHandler) Get(symbol string) (*domain.Fundamentals, error) {
	q, err := equity.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("empty quote for %s", symbol)
	}

	out := &domain.Fundamentals{
		Symbol:    symbol,
		Company:   q.ShortName,
		Price:     q.RegularMarketPrice,
		PrevClose: q.RegularMarketPreviousClose,
		MarketCap: q.MarketCap,
	}
	// Yahoo reports 0 rather than omitting missing ratios.
	if q.TrailingPE > 0 {
		pe := q.TrailingPE
		out.PE = &pe
	}
	if q.ForwardPE > 0 {
		fpe := q.ForwardPE
		out.ForwardPE = &fpe
	}
	if q.EarningsTimestamp > 0 {
		ts := time.Unix(int64(q.EarningsTimestamp), 0).UTC()
		out.EarningsDate = &ts
	}

	return out, nil
}
