package repository

import (
	"context"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

type AlertRepository interface {
	List(ctx context.Context) ([]entity.AlertAck, error)
	Acknowledge(ctx context.Context, ack entity.AlertAck) (entity.AlertAck, error)
}
