package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mark47B/rostersync/internal/orchestrator"
	"github.com/mark47B/rostersync/internal/orchestrator/spool"
	"github.com/mark47B/rostersync/internal/orchestrator/store"
	"github.com/mark47B/rostersync/internal/scheduler"
)

func watchCmd() *cobra.Command {
	var withSchedule bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the spool directory and sync members pages as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			client := newSyncClient(cfg, log)
			if err := client.Ping(ctx); err != nil {
				log.Warnw("sync endpoint is not reachable yet", "endpoint", cfg.SyncEndpoint, "error", err)
			}

			sc := newScraper(cfg)
			watcher := spool.New(cfg.SpoolDir, log)
			orch := orchestrator.New(orchestrator.Config{
				SettleDelay: cfg.SettleDelay,
				MaxWait:     cfg.MaxWait,
				Attempts:    cfg.ExtractAttempts,
				RetryDelay:  cfg.ExtractRetryDelay,
			}, sc, watcher, client, store.NewFileStore(cfg.StateFile),
				orchestrator.WithLogger(log),
				orchestrator.WithTabCloser(watcher),
			)

			var runner *scheduler.Runner
			if withSchedule {
				if runner, err = newRunner(cfg, log, client); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return watcher.Run(gctx, orch)
			})
			if runner != nil {
				g.Go(func() error {
					return runner.Start(gctx)
				})
			}

			err = g.Wait()
			orch.Wait()
			return err
		},
	}
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "also run the scheduled profile sync")
	return cmd
}
