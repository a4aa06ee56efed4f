package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/configs"
	"github.com/mark47B/rostersync/internal/logger"
	"github.com/mark47B/rostersync/internal/scraper"
	"github.com/mark47B/rostersync/internal/syncclient"
)

var rootCmd = &cobra.Command{
	Use:           "rostersync",
	Short:         "Scrape team rosters and keep them in sync with the dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		scrapeCmd(),
		importCmd(),
		watchCmd(),
		scheduleCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap читает конфиг и поднимает логгер, общий для всех команд
func bootstrap() (*configs.Config, *zap.SugaredLogger, error) {
	cfg, err := configs.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func newScraper(cfg *configs.Config) *scraper.Scraper {
	return scraper.New(scraper.Config{InternalDomains: cfg.InternalDomains})
}

func newSyncClient(cfg *configs.Config, log *zap.SugaredLogger) *syncclient.Client {
	return syncclient.New(syncclient.Config{
		Endpoint: cfg.SyncEndpoint,
		Token:    cfg.SyncToken,
		Timeout:  cfg.SyncTimeout,
	}, syncclient.WithLogger(log))
}
