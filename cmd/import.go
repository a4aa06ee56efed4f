package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/scraper"
	"github.com/mark47B/rostersync/internal/syncclient"
)

// то, что копирует букмарклет
type importedTeam struct {
	TeamName       string `json:"teamName"`
	WorkspaceID    string `json:"workspaceId"`
	OrganizationID string `json:"organizationId"`
	OwnerEmail     string `json:"ownerEmail"`
	Members        []struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		JoinedAt string `json:"joined_at"`
	} `json:"members"`
}

func (t importedTeam) payload() syncclient.Payload {
	p := syncclient.Payload{
		TeamName:       strings.TrimSpace(t.TeamName),
		WorkspaceID:    t.WorkspaceID,
		OrganizationID: t.OrganizationID,
		OwnerEmail:     t.OwnerEmail,
		Members:        make([]scraper.Member, 0, len(t.Members)),
	}
	for _, m := range t.Members {
		member := scraper.Member{
			Email: m.Email,
			Name:  m.Name,
			Role:  entity.ParseRole(m.Role),
		}
		if ts, ok := parseDate(m.JoinedAt); ok {
			member.JoinedAt = &ts
		}
		p.Members = append(p.Members, member)
	}
	return p
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Post a roster copied by the bookmarklet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var team importedTeam
			if err := json.Unmarshal(data, &team); err != nil {
				return fmt.Errorf("decode import file: %w", err)
			}

			p := team.payload()
			if p.TeamName == "" || len(p.Members) == 0 {
				return fmt.Errorf("import file must contain teamName and members")
			}

			out, err := newSyncClient(cfg, log).Sync(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %s (%s): %d members\n", out.TeamName, out.TeamID, out.MemberCount)
			return nil
		},
	}
}
