package handlers

import (
	"time"

	"github.com/mark47B/rostersync/internal/domain/usecase"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
	"github.com/mark47B/rostersync/internal/metrics"
)

type Handlers struct {
	gen.Unimplemented
	service usecase.Service
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewHandlers: m может быть nil, тогда метрики синков не пишутся
func NewHandlers(service usecase.Service, m *metrics.Metrics) gen.ServerInterface {
	return &Handlers{
		service: service,
		metrics: m,
		now:     time.Now,
	}
}

func (h *Handlers) observeSync(result string, members int) {
	if h.metrics != nil {
		h.metrics.ObserveSync(result, members)
	}
}
