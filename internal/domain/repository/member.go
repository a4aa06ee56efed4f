package repository

import (
	"context"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

type MemberRepository interface {
	// ReplaceAll drops every member of the team and inserts the given set.
	ReplaceAll(ctx context.Context, teamID string, members []entity.Member) error
	ListByTeam(ctx context.Context, teamID string) ([]entity.Member, error)
}
