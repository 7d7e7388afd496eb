package service

import (
	"context"
	"fmt"
	"sort"

	"stockhome/internal/config"
	"stockhome/internal/domain"
	"stockhome/internal/logger"
	"stockhome/internal/repository"

	"github.com/shopspring/decimal"
)

// TradingService turns the latest published buy list into paper orders:
// a fixed dollar amount per name across the top-scored buys, each with an
// attached take-profit.
type TradingService interface {
	ExecuteTopBuys(ctx context.Context) ([]domain.PlacedOrder, error)
}

type tradingServiceHandler struct {
	alpacaRepository   repository.AlpacaRepository
	artifactRepository repository.ArtifactRepository
	cfg                config.TradingConfig
}

func NewTradingService(
	alpacaRepository repository.AlpacaRepository,
	artifactRepository repository.ArtifactRepository,
	cfg config.TradingConfig,
) TradingService {
	return &tradingServiceHandler{
		alpacaRepository:   alpacaRepository,
		artifactRepository: artifactRepository,
		cfg:                cfg,
	}
}

func (h *tradingServiceHandler) ExecuteTopBuys(ctx context.Context) ([]domain.PlacedOrder, error) {
	log := logger.FromContext(ctx)

	open, err := h.alpacaRepository.IsMarketOpen()
	if err != nil {
		return nil, fmt.Errorf("failed to check market clock: %w", err)
	}
	if !open {
		log.Info("market closed, skipping trade run")
		return nil, nil
	}

	artifact, err := h.artifactRepository.ReadSignals()
	if err != nil {
		return nil, fmt.Errorf("failed to read signals: %w", err)
	}
	if len(artifact.Buys) == 0 {
		log.Info("no buy signals, nothing to trade")
		return nil, nil
	}

	picks := topPicks(artifact.Buys, h.cfg.MaxPositions)

	held := map[string]bool{}
	positions, err := h.alpacaRepository.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	for _, p := range positions {
		if !p.Qty.IsZero() {
			held[p.Symbol] = true
		}
	}

	account, err := h.alpacaRepository.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	buyingPower := account.BuyingPower

	placed := []domain.PlacedOrder{}
	for _, pick := range picks {
		if held[pick.Ticker] {
			log.Infow("skipping held position", "ticker", pick.Ticker)
			continue
		}

		// the artifact price is stale by now; trade off the live tape
		price, err := h.alpacaRepository.GetLatestPrice(pick.Ticker)
		if err != nil {
			log.Warnw("skipping ticker, no live price", "ticker", pick.Ticker, "err", err)
			continue
		}

		qty := decimal.NewFromFloat(h.cfg.PositionSizeUSD).Div(price).Floor()
		if qty.LessThan(decimal.NewFromInt(1)) {
			log.Infow("skipping ticker, price above position size", "ticker", pick.Ticker, "price", price.String())
			continue
		}

		cost := price.Mul(qty)
		if cost.GreaterThan(buyingPower) {
			log.Infow("skipping ticker, insufficient buying power",
				"ticker", pick.Ticker, "cost", cost.String(), "buyingPower", buyingPower.String())
			continue
		}

		takeProfit := price.
			Mul(decimal.NewFromFloat(1 + h.cfg.TakeProfitPercent/100)).
			Round(2)

		order, err := h.alpacaRepository.PlaceBuyWithTakeProfit(repository.BracketBuyRequest{
			Symbol:          pick.Ticker,
			Quantity:        qty,
			LimitPrice:      price,
			TakeProfitPrice: takeProfit,
		})
		if err != nil {
			log.Warnw("order failed", "ticker", pick.Ticker, "err", err)
			continue
		}

		log.Infow("order placed",
			"ticker", pick.Ticker,
			"qty", qty.String(),
			"limit", price.String(),
			"takeProfit", takeProfit.String(),
		)
		buyingPower = buyingPower.Sub(cost)
		placed = append(placed, domain.PlacedOrder{
			Symbol:          pick.Ticker,
			Quantity:        qty,
			LimitPrice:      price,
			TakeProfitPrice: takeProfit,
			AlpacaOrderID:   order.ID,
		})
	}

	return placed, nil
}

func topPicks(buys []domain.BuyEntry, max int) []domain.BuyEntry {
	sorted := make([]domain.BuyEntry, len(buys))
	copy(sorted, buys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}
