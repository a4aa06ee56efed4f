package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/domain/usecase"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/handlers"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/middleware"
	"github.com/mark47B/rostersync/internal/metrics"
)

type RouterConfig struct {
	Auth    middleware.AuthConfig
	Metrics *metrics.Metrics
	Logger  *zap.SugaredLogger
}

// NewRouter собирает chi-роутер: CORS, метрики, авторизация, валидация по OpenAPI
func NewRouter(svc usecase.Service, cfg RouterConfig) (http.Handler, error) {
	swagger, err := gen.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	validator, err := middleware.RequestValidator(swagger)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	cfg.Auth.Public = append(cfg.Auth.Public, "/health", "/metrics")

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.CORS)
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}
	router.Use(middleware.Auth(cfg.Auth))
	router.Use(validator)

	// chi требует объявлять middleware до маршрутов
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	h := handlers.NewHandlers(svc, cfg.Metrics)
	gen.HandlerWithOptions(h, gen.ChiServerOptions{
		BaseRouter: router,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			handlers.WriteError(w, http.StatusBadRequest, err.Error())
		},
	})

	return router, nil
}
