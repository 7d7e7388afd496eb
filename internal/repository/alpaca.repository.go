package repository

import (
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

type AlpacaRepository interface {
	GetAccount() (*alpaca.Account, error)
	GetPositions() ([]alpaca.Position, error)
	IsMarketOpen() (bool, error)
	GetLatestPrice(symbol string) (decimal.Decimal, error)
	// PlaceBuyWithTakeProfit submits a day limit buy with an attached
	// good-til-canceled take-profit sell.
	PlaceBuyWithTakeProfit(req BracketBuyRequest) (*alpaca.Order, error)
}

type BracketBuyRequest struct {
	Symbol          string
	Quantity        decimal.Decimal
	LimitPrice      decimal.Decimal
	TakeProfitPrice decimal.Decimal
}

func NewAlpacaRepository(apiKey, apiSecret, endpoint string) AlpacaRepository {
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:     apiKey,
		APISecret:  apiSecret,
		BaseURL:    endpoint,
		RetryLimit: 3,
	})

	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &alpacaRepositoryHandler{
		Client:   client,
		MdClient: mdClient,
	}
}

type alpacaRepositoryHandler struct {
	Client   *alpaca.Client
	MdClient *marketdata.Client
}

func (h alpacaRepositoryHandler) GetAccount() (*alpaca.Account, error) {
	account, err := h.Client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (h alpacaRepositoryHandler) GetPositions() ([]alpaca.Position, error) {
	positions, err := h.Client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	return positions, nil
}

func (h alpacaRepositoryHandler) IsMarketOpen() (bool, error) {
	clock, err := h.Client.GetClock()
	if err != nil {
		return false, fmt.Errorf("failed to get market clock: %w", err)
	}
	return clock.IsOpen, nil
}

func (h alpacaRepositoryHandler) GetLatestPrice(symbol string) (decimal.Decimal, error) {
	trade, err := h.MdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get latest trade for %s: %w", symbol, err)
	}
	price := decimal.NewFromFloat(trade.Price)
	if price.IsZero() {
		return decimal.Zero, fmt.Errorf("failed to get price for %s: got 0 price", symbol)
	}
	return price, nil
}

func (h alpacaRepositoryHandler) PlaceBuyWithTakeProfit(req BracketBuyRequest) (*alpaca.Order, error) {
	order, err := h.Client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Qty:         &req.Quantity,
		Side:        alpaca.Buy,
		Type:        alpaca.Limit,
		LimitPrice:  &req.LimitPrice,
		TimeInForce: alpaca.Day,
		OrderClass:  alpaca.OTO,
		TakeProfit: &alpaca.TakeProfit{
			LimitPrice: &req.TakeProfitPrice,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order for %s: %w", req.Symbol, err)
	}
	return order, nil
}
