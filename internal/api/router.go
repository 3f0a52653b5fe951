package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gatherly/server/internal/api/handlers"
	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/tokens"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps carries the constructed services the router wires together.
type Deps struct {
	Pool         *pgxpool.Pool
	TokenManager *auth.TokenManager
	Users        *users.Service
	Events       *events.Service
	Tokens       *tokens.Service
}

// NewRouter assembles the HTTP surface: public auth endpoints, bearer-guarded
// event endpoints, and the operational endpoints. The middleware chain is
// applied outermost-first: correlation, tracing, logging, metrics, security
// headers, body limits; rate limiting is applied per route so the login
// route can carry its stricter tier.
func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(deps.Events, cfg.Environment)

	requireAuth := middleware.BearerAuth(deps.TokenManager, cfg.Environment)

	// One limiter store shared across routes; the login route carries a
	// stricter tier, set before the limiter reads it from context.
	rateLimit := middleware.RateLimit(cfg.RateLimit)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.Pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/register", methodMux(map[string]http.Handler{
		http.MethodPost: rateLimit(http.HandlerFunc(authHandler.Register)),
	}))
	mux.Handle("/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(rateLimit(http.HandlerFunc(authHandler.Login))),
	}))
	mux.Handle("/me", methodMux(map[string]http.Handler{
		http.MethodGet: rateLimit(requireAuth(http.HandlerFunc(authHandler.Me))),
	}))
	mux.Handle("/logout", methodMux(map[string]http.Handler{
		http.MethodPost: rateLimit(requireAuth(http.HandlerFunc(authHandler.Logout))),
	}))
	mux.Handle("/token/refresh", methodMux(map[string]http.Handler{
		http.MethodPost: rateLimit(http.HandlerFunc(authHandler.Refresh)),
	}))

	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet:  rateLimit(requireAuth(http.HandlerFunc(eventsHandler.List))),
		http.MethodPost: rateLimit(requireAuth(http.HandlerFunc(eventsHandler.Create))),
	}))
	mux.Handle("/events/{id}/register", methodMux(map[string]http.Handler{
		http.MethodPost: rateLimit(requireAuth(http.HandlerFunc(eventsHandler.Register))),
	}))
	mux.Handle("/events/{id}/attendees", methodMux(map[string]http.Handler{
		http.MethodGet: rateLimit(requireAuth(http.HandlerFunc(eventsHandler.Attendees))),
	}))

	var handler http.Handler = mux
	handler = middleware.PublicRequestSize()(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
