package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"lifelog/application/commands/bus"
	querybus "lifelog/application/queries/bus"
	"lifelog/interfaces/http/rest/handlers"
	"lifelog/interfaces/http/rest/middleware"
	apperrors "lifelog/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// readyTimeout bounds all readiness checks together
const readyTimeout = 3 * time.Second

// ReadinessCheck probes one dependency. Non-critical failures degrade the
// status without failing readiness.
type ReadinessCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// Router wires the HTTP surface
type Router struct {
	commandBus     *bus.CommandBus
	queryBus       *querybus.QueryBus
	parser         handlers.Parser
	cache          handlers.CacheClearer
	authenticate   func(http.Handler) http.Handler
	metricsHandler http.Handler
	checks         []ReadinessCheck
	corsOrigins    []string
	debug          bool
	logger         *zap.Logger
}

// RouterOptions holds the optional parts of the router
type RouterOptions struct {
	Authenticate   func(http.Handler) http.Handler
	MetricsHandler http.Handler
	Checks         []ReadinessCheck
	CORSOrigins    []string
	Debug          bool
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	parser handlers.Parser,
	cache handlers.CacheClearer,
	opts RouterOptions,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:     commandBus,
		queryBus:       queryBus,
		parser:         parser,
		cache:          cache,
		authenticate:   opts.Authenticate,
		metricsHandler: opts.MetricsHandler,
		checks:         opts.Checks,
		corsOrigins:    opts.CORSOrigins,
		debug:          opts.Debug,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()
	errs := apperrors.NewErrorHandler(rt.logger, rt.debug)

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errs.Middleware)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	if len(rt.corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", rt.metricsHandler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, strings.Replace(req.URL.Path, "/api/v1", "/api/v2", 1), http.StatusPermanentRedirect)
		})
	})

	router.Route("/api/v2", func(r chi.Router) {
		if rt.authenticate != nil {
			r.Use(rt.authenticate)
		}

		r.Post("/parse", handlers.NewParseHandler(rt.parser, errs, rt.logger).Parse)
		r.Post("/ingest", handlers.NewIngestHandler(rt.commandBus, errs, rt.logger).Ingest)
		r.Get("/events/recent", handlers.NewEventsHandler(rt.queryBus, errs, rt.logger).Recent)

		r.Route("/domains", func(r chi.Router) {
			domainHandler := handlers.NewDomainsHandler(rt.commandBus, rt.queryBus, rt.cache, errs, rt.logger)
			r.Get("/", domainHandler.List)
			r.Post("/ensure", domainHandler.Ensure)
			r.Delete("/cache", domainHandler.ClearCache)
			r.Get("/{name}/schema", domainHandler.Schema)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	writeStatus(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	results := make(map[string]string, len(rt.checks))
	for _, check := range rt.checks {
		if err := check.Check(ctx); err != nil {
			results[check.Name] = err.Error()
			if check.Critical {
				status, code = "not_ready", http.StatusServiceUnavailable
			} else if code == http.StatusOK {
				status = "degraded"
			}
			continue
		}
		results[check.Name] = "ok"
	}

	writeStatus(w, code, map[string]interface{}{"status": status, "checks": results})
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.Contains(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
		}

		next.ServeHTTP(w, r)
	})
}
