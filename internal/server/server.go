package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rickgao/fndash/internal/catalog"
	"github.com/rickgao/fndash/internal/hub"
)

const (
	apiBasePath   = "/api/v1"
	healthPath    = "/health"
	functionsPath = "/functions"
	feedPath      = "/ws"
)

// Broadcaster publishes a line to every feed client.
type Broadcaster interface {
	Broadcast(msg string) int
}

// Server routes the backend API.
type Server struct {
	functions []catalog.Function
	hub       *hub.Hub
	activity  *Activity
	logger    *slog.Logger
	router    chi.Router
}

// New builds the router for functions. Feed clients are served by h, and
// http-triggered functions are mounted as routes announced through activity.
func New(functions []catalog.Function, h *hub.Hub, activity *Activity, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		functions: functions,
		hub:       h,
		activity:  activity,
		logger:    logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route(apiBasePath, func(r chi.Router) {
		r.Get(healthPath, s.handleHealth)
		r.Get(functionsPath, s.handleFunctions)
		r.Handle(feedPath, s.hub)
	})

	for _, fn := range s.functions {
		if fn.Trigger.Type != catalog.TriggerHTTP || s.activity == nil {
			continue
		}
		method := strings.ToUpper(fn.Trigger.Method)
		r.Method(method, fn.Trigger.Endpoint, s.activity.HTTPHandler(fn.Name))
		s.logger.Debug("mounted http trigger", "function", fn.Name, "method", method, "endpoint", fn.Trigger.Endpoint)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	functions := s.functions
	if functions == nil {
		functions = []catalog.Function{}
	}
	writeJSON(w, http.StatusOK, catalog.FunctionList{Functions: functions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
