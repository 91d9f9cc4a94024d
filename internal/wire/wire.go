package wire

import (
	"net/http"

	"ksrtc-reservation/internal/adaptor"
	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/internal/usecase"
	"ksrtc-reservation/pkg/database"
	"ksrtc-reservation/pkg/middleware"
	"ksrtc-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Wiring builds services and handlers and mounts every route.
// idempotency may be nil, in which case retried writes are not deduplicated.
func Wiring(
	repo *repository.Repository,
	tx database.Transactor,
	idempotency middleware.IdempotencyStore,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	tokens := utils.NewTokenIssuer(config.JWT)
	service := usecase.NewService(repo, tx, tokens, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, tokens, idempotency, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	tokens *utils.TokenIssuer,
	idempotency middleware.IdempotencyStore,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	// Apply routes
	wireAuth(r, handler.Auth)
	wireUser(r, handler.User, tokens, logger)
	wireReservation(r, handler.Reservation, tokens, idempotency, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
