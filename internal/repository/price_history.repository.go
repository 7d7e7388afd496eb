package repository

import (
	"fmt"
	"sort"
	"time"

	"stockhome/internal/domain"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

type PriceHistoryRepository interface {
	GetDailyBars(symbol string, start, end time.Time) ([]domain.Bar, error)
}

type priceHistoryRepositoryHandler struct{}

func NewPriceHistoryRepository() PriceHistoryRepository {
	return priceHistoryRepositoryHandler{}
}

func (h priceHistoryRepositoryHandler) GetDailyBars(symbol string, start, end time.Time) ([]domain.Bar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	bars := []domain.Bar{}
	iter := chart.Get(params)
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, domain.Bar{
			Date:     time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history returned for %s", symbol)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, nil
}
