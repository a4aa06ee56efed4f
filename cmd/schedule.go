package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/configs"
	"github.com/mark47B/rostersync/internal/scheduler"
)

func newRunner(cfg *configs.Config, log *zap.SugaredLogger, client scheduler.Client) (*scheduler.Runner, error) {
	profiles := make([]scheduler.Profile, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		profiles = append(profiles, scheduler.ParseProfile(p))
	}
	return scheduler.New(scheduler.Config{
		Spec:     cfg.Schedule,
		Profiles: profiles,
		Cookie:   cfg.ProfileCookie,
		Timeout:  cfg.SyncTimeout,
	}, newScraper(cfg), client, scheduler.WithLogger(log))
}

func scheduleCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Sync the configured profiles on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			runner, err := newRunner(cfg, log, newSyncClient(cfg, log))
			if err != nil {
				return err
			}
			if !once {
				return runner.Start(cmd.Context())
			}

			sum, err := runner.RunOnce(cmd.Context(), true)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d profiles synced in %s, next run %s\n",
				sum.Status, sum.Synced, sum.Total, sum.Duration.Round(time.Millisecond), sum.NextRun.Format(time.RFC3339))
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single sync and exit")
	return cmd
}
