// Package api serves recipe predictions and fermentation simulations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/brew-cli/internal/brew"
	"github.com/sells-group/brew-cli/internal/catalog"
	"github.com/sells-group/brew-cli/internal/fermentation"
	"github.com/sells-group/brew-cli/internal/model"
	"github.com/sells-group/brew-cli/internal/recipe"
	"github.com/sells-group/brew-cli/internal/schedule"
)

const (
	maxBodyBytes = 1 << 20
	// MaxDays bounds a single simulation request.
	MaxDays = 120
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	catalog        catalog.Catalog
	calc           *brew.Calculator
	sim            *fermentation.Simulator
	defaultDays    int
	milestoneHours int
	corsOrigins    []string
	limiter        *rate.Limiter
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultDays sets the simulation length used when a request omits days.
func WithDefaultDays(days int) Option {
	return func(s *Server) { s.defaultDays = days }
}

// WithMilestoneHours sets the default spacing of periodic timeline entries.
func WithMilestoneHours(h int) Option {
	return func(s *Server) { s.milestoneHours = h }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithRateLimit limits requests to rps per second with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewServer creates a Server. A nil sim uses fermentation defaults.
func NewServer(cat catalog.Catalog, sim *fermentation.Simulator, opts ...Option) *Server {
	calc := brew.NewCalculator()
	if sim == nil {
		sim = fermentation.New(calc)
	}
	s := &Server{
		catalog:        cat,
		calc:           calc,
		sim:            sim,
		defaultDays:    14,
		milestoneHours: 24,
		corsOrigins:    []string{"*"},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		r.Use(RateLimit(s.limiter))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/ingredients", s.listIngredients)
		r.Get("/ingredients/{kind}/{name}", s.getIngredient)
		r.Post("/predict", s.predict)
		r.Post("/simulate", s.simulate)
	})
	return r
}

func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	d, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var (
		v   any
		err error
	)
	switch catalog.Kind(chi.URLParam(r, "kind")) {
	case catalog.KindGrains:
		v, err = s.catalog.Grain(r.Context(), name)
	case catalog.KindHops:
		v, err = s.catalog.Hop(r.Context(), name)
	case catalog.KindYeasts:
		v, err = s.catalog.Yeast(r.Context(), name)
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown ingredient kind"})
		return
	}
	if err != nil {
		// A lookup by URL is a missing resource, not a bad recipe.
		if errors.Is(err, model.ErrIngredientNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeRecipe(w, r)
	if !ok {
		return
	}
	p, err := f.Predict(r.Context(), s.catalog, s.calc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SimulateResponse is the body returned by POST /v1/simulate.
type SimulateResponse struct {
	RunID    string               `json:"run_id"`
	Days     int                  `json:"days"`
	Summary  fermentation.Summary `json:"summary"`
	Timeline []model.LogEntry     `json:"timeline"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	every := s.milestoneHours
	if v := r.URL.Query().Get("every"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "every must be a non-negative integer"})
			return
		}
		every = n
	}
	full := r.URL.Query().Get("full") == "true"

	f, ok := decodeRecipe(w, r)
	if !ok {
		return
	}
	if f.DaysOr(s.defaultDays) > MaxDays {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "days must not exceed " + strconv.Itoa(MaxDays)})
		return
	}

	run, err := f.Simulate(r.Context(), s.catalog, s.sim, s.defaultDays)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := SimulateResponse{RunID: run.ID, Days: run.Days, Summary: run.Summary()}
	if full {
		resp.Timeline = run.Entries()
	} else {
		resp.Timeline = run.Milestones(every)
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeRecipe(w http.ResponseWriter, r *http.Request) (*recipe.File, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var f recipe.File
	if err := dec.Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return nil, false
	}
	return &f, true
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRecipe),
		errors.Is(err, model.ErrMissingYeast),
		errors.Is(err, model.ErrIngredientNotFound),
		errors.Is(err, schedule.ErrStepOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(eris.Wrap(err, "encode")))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
