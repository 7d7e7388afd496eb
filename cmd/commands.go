package cmd

import (
	"context"
	"fmt"
	"time"

	"stockhome/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stockhome",
	Short: "Stock and options screening engine",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one screening pass and publish the artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}
		_, err = handler.ScreenerService.Run(newRunContext())
		return err
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run on the market-open, hourly, and nightly cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}

		pacific, err := time.LoadLocation("America/Los_Angeles")
		if err != nil {
			return fmt.Errorf("failed to load pacific tz: %w", err)
		}

		runOnce := func() {
			ctx := newRunContext()
			log := logger.FromContext(ctx)
			if _, err := handler.ScreenerService.Run(ctx); err != nil {
				log.Errorw("scheduled run failed", "err", err)
			}
		}

		c := cron.New(cron.WithLocation(pacific))
		schedule := handler.Config.Schedule
		for _, spec := range []string{schedule.MarketOpen, schedule.Hourly, schedule.Nightly} {
			if spec == "" {
				continue
			}
			if _, err := c.AddFunc(spec, runOnce); err != nil {
				return fmt.Errorf("bad cron spec %q: %w", spec, err)
			}
		}

		c.Run()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the published artifacts over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}
		return handler.ApiHandler.StartApi(handler.Config.Server.Port)
	},
}

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Place paper orders for the top-scored buys",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}

		ctx := newRunContext()
		log := logger.FromContext(ctx)

		placed, err := handler.TradingService.ExecuteTopBuys(ctx)
		if err != nil {
			return err
		}
		log.Infow("trade pass complete", "orders", len(placed))
		return nil
	},
}

func newRunContext() context.Context {
	return context.WithValue(context.Background(), logger.ContextKey, logger.New())
}

func Execute() error {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to yaml config")
	rootCmd.AddCommand(runCmd, scheduleCmd, serveCmd, tradeCmd)
	return rootCmd.Execute()
}
