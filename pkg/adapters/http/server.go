package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server exposes an accelerate engine over HTTP.
type Server struct {
	Engine  ports.Accelerator
	Streams *StreamManager
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*options)

type options struct {
	streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// WithStreams enables GET /events, fed by the given manager.
// Register streams.Hooks() on the engine so runs reach subscribers.
func WithStreams(streams *StreamManager) Option {
	return func(o *options) {
		o.streams = streams
	}
}

// WithMetricsHandler mounts h on GET /metrics, typically promhttp.HandlerFor.
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) {
		o.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// statusResponse is returned by every successful endpoint that reports the cursor.
type statusResponse struct {
	Status int `json:"status"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status *int   `json:"status,omitempty"`
}

type motionResponse struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Applied bool   `json:"applied"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Accelerator, opts ...Option) http.Handler {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	server := &Server{
		Engine:  engine,
		Streams: o.streams,
		Logger:  o.logger,
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/status", server.GetStatus)
	r.Get("/motions", server.GetMotions)
	r.Post("/move", server.Move)
	r.Post("/goto/{position}", server.Goto)
	r.Post("/up", server.run("up", engine.Up))
	r.Post("/down", server.run("down", engine.Down))
	r.Post("/add", server.run("add", engine.Add))
	r.Post("/sub", server.run("sub", engine.Sub))
	r.Post("/redo", server.run("redo", engine.Redo))
	r.Post("/reset", server.run("reset", engine.Reset))
	if o.streams != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	if o.metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Engine.Status(r.Context())
	if err != nil {
		s.fail(w, r, "status", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status}, s.Logger)
}

// GetMotions handles the GET /motions request.
func (s *Server) GetMotions(w http.ResponseWriter, r *http.Request) {
	status, err := s.Engine.Status(r.Context())
	if err != nil {
		s.fail(w, r, "motions", err, nil)
		return
	}

	motions := s.Engine.Motions()
	resp := make([]motionResponse, len(motions))
	for i, m := range motions {
		resp[i] = motionResponse{
			Index:   i,
			Name:    m.Name,
			Version: m.VersionString(),
			Applied: i < status,
		}
	}
	writeJSON(w, http.StatusOK, resp, s.Logger)
}

// Move handles the POST /move?n= request. n defaults to 1 and may be negative.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	delta := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.badRequest(w, fmt.Sprintf("invalid n %q: expected an integer", raw))
			return
		}
		delta = n
	}

	s.respond(w, r, "move", s.Engine.Move(r.Context(), delta))
}

// Goto handles the POST /goto/{position} request.
func (s *Server) Goto(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "position")
	position, err := strconv.Atoi(raw)
	if err != nil {
		s.badRequest(w, fmt.Sprintf("invalid position %q: expected an integer", raw))
		return
	}

	s.respond(w, r, "goto", s.Engine.Goto(r.Context(), position))
}

func (s *Server) run(name string, op func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, name, op(r.Context()))
	}
}

// respond writes the cursor after an operation, or the error with the cursor that was reached.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, name string, opErr error) {
	status, err := s.Engine.Status(r.Context())
	if opErr != nil {
		var reached *int
		if err == nil {
			reached = &status
		}
		s.fail(w, r, name, opErr, reached)
		return
	}
	if err != nil {
		s.fail(w, r, name, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status}, s.Logger)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, err error, reached *int) {
	code := errorCode(err)
	s.Logger.ErrorContext(r.Context(), "request failed", "operation", name, "code", code, "error", err)
	writeJSON(w, code, errorResponse{Error: err.Error(), Status: reached}, s.Logger)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.Logger.Warn("bad request", "error", msg)
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg}, s.Logger)
}

func errorCode(err error) int {
	var stepErr *domain.StepError
	switch {
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &stepErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

// parseWatch splits a comma separated list of event types.
func parseWatch(raw string) map[domain.EventType]bool {
	if raw == "" {
		return nil
	}
	watch := make(map[domain.EventType]bool)
	for _, field := range strings.Split(raw, ",") {
		if field = strings.TrimSpace(field); field != "" {
			watch[domain.EventType(field)] = true
		}
	}
	return watch
}
