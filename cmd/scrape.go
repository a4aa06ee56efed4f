package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark47B/rostersync/internal/scheduler"
	"github.com/mark47B/rostersync/internal/syncclient"
)

func scrapeCmd() *cobra.Command {
	var (
		doSync  bool
		pageURL string
	)

	cmd := &cobra.Command{
		Use:   "scrape <file|url>",
		Short: "Extract a roster from a saved members page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			profile := scheduler.ParseProfile(args[0])
			if pageURL != "" {
				profile.PageURL = pageURL
			}

			html, err := scheduler.NewFetcher(cfg.SyncTimeout, cfg.ProfileCookie).Load(cmd.Context(), profile)
			if err != nil {
				return err
			}
			res, err := newScraper(cfg).Scrape(bytes.NewReader(html), profile.PageURL)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}

			if !doSync {
				return nil
			}
			if err := res.Validate(); err != nil {
				return err
			}
			out, err := newSyncClient(cfg, log).Sync(cmd.Context(), syncclient.PayloadFromResult(res))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %s (%s): %d members\n", out.TeamName, out.TeamID, out.MemberCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&doSync, "sync", false, "post the result to the sync endpoint")
	cmd.Flags().StringVar(&pageURL, "url", "", "page URL used for team name detection")
	return cmd
}
