package cmd

import (
	"fmt"

	"stockhome/api"
	"stockhome/internal/config"
	"stockhome/internal/repository"
	"stockhome/internal/service"

	"github.com/joho/godotenv"
)

// Handler bundles everything a command needs after wiring.
type Handler struct {
	Config          *config.Config
	ScreenerService service.ScreenerService
	TradingService  service.TradingService
	ApiHandler      *api.ApiHandler
}

func InitializeDependencies(configPath string) (*Handler, error) {
	// optional; prod sets real env vars
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	priceRepository := repository.NewPriceHistoryRepository()
	fundamentalsRepository := repository.NewFundamentalsRepository()
	chainRepository := repository.NewOptionsChainRepository()
	artifactRepository := repository.NewArtifactRepository(
		cfg.Artifacts.SignalsPath,
		cfg.Artifacts.SpreadsPath,
		cfg.Artifacts.PreviousBuysPath,
	)
	alertLogRepository := repository.NewAlertLogRepository(cfg.Artifacts.AlertLogPath)

	var emailService service.EmailService
	if cfg.Email.From != "" && len(cfg.Email.To) > 0 {
		emailRepository, err := repository.NewEmailRepository(cfg.Email.Region, cfg.Email.From)
		if err != nil {
			return nil, fmt.Errorf("failed to set up email: %w", err)
		}
		emailService = service.NewEmailService(emailRepository, cfg.Email)
	}

	screenerService := service.NewScreenerService(
		priceRepository,
		fundamentalsRepository,
		artifactRepository,
		alertLogRepository,
		service.NewClassifierService(cfg.Thresholds),
		service.NewSelectorService(chainRepository, cfg.Selector),
		emailService,
		*cfg,
	)

	alpacaRepository := repository.NewAlpacaRepository(
		secrets.Alpaca.ApiKey,
		secrets.Alpaca.ApiSecret,
		cfg.Trading.Endpoint,
	)
	tradingService := service.NewTradingService(alpacaRepository, artifactRepository, cfg.Trading)

	return &Handler{
		Config:          cfg,
		ScreenerService: screenerService,
		TradingService:  tradingService,
		ApiHandler:      &api.ApiHandler{ArtifactRepository: artifactRepository},
	}, nil
}
