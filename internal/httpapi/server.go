// Package httpapi serves the vendor dashboard API.
package httpapi

import (
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/actions"
	"watch2give-vendor/internal/analysis"
	"watch2give-vendor/internal/leaderboard"
	"watch2give-vendor/internal/ledger"
	"watch2give-vendor/internal/notify"
	"watch2give-vendor/internal/proofs"
	"watch2give-vendor/internal/streak"
)

// Request body limits.
const (
	maxJSONBody = 1 << 20
	// uploadSlack covers the data URI prefix and JSON framing.
	uploadSlack = 64 << 10
)

// uploadBodyLimit bounds an upload body carrying a base64 image of up to
// maxImage decoded bytes.
func uploadBodyLimit(maxImage int) int64 {
	return int64(base64.StdEncoding.EncodedLen(maxImage)) + uploadSlack
}

// Server wires the dashboard services to HTTP handlers.
type Server struct {
	analyzer      *analysis.Analyzer
	tracker       *streak.Tracker
	ledger        ledger.Ledger
	actions       *actions.Service
	proofs        *proofs.Service
	notifications *notify.Service
	hub           *notify.Hub
	board         *leaderboard.Board
	vendor        string
	limiter       *RateLimiter
	maxUpload     int64
	validate      *validator.Validate
	now           func() time.Time
	logger        logrus.FieldLogger

	startedAt time.Time
	mu        sync.Mutex
	requests  int64
}

// Options configures a Server.
type Options struct {
	Analyzer      *analysis.Analyzer
	Tracker       *streak.Tracker
	Ledger        ledger.Ledger
	Actions       *actions.Service
	Proofs        *proofs.Service
	Notifications *notify.Service
	Hub           *notify.Hub
	Board         *leaderboard.Board
	Vendor        string

	// RateLimit guards mutating routes. Nil disables limiting.
	RateLimit *RateLimiter
	Now       func() time.Time
	Logger    logrus.FieldLogger
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	maxImage := proofs.DefaultMaxBytes
	if opts.Proofs != nil {
		maxImage = opts.Proofs.MaxBytes()
	}
	return &Server{
		analyzer:      opts.Analyzer,
		tracker:       opts.Tracker,
		ledger:        opts.Ledger,
		actions:       opts.Actions,
		proofs:        opts.Proofs,
		notifications: opts.Notifications,
		hub:           opts.Hub,
		board:         opts.Board,
		vendor:        opts.Vendor,
		limiter:       opts.RateLimit,
		maxUpload:     uploadBodyLimit(maxImage),
		validate:      validator.New(),
		now:           opts.Now,
		logger:        opts.Logger.WithField("component", "httpapi"),
		startedAt:     opts.Now(),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(s.countRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	r.Route("/api", func(r chi.Router) {
		r.Get("/token-data", s.handleTokenData)
		r.Get("/holding-metric", s.handleHoldingMetric)
		r.Get("/notifications", s.handleNotifications)
		r.Get("/notifications/ws", s.hub.Handler())
		r.Get("/actions/stats", s.handleActionStats)
		r.Get("/actions/history", s.handleActionHistory)
		r.Get("/proofs/{id}", s.handleProof)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware)
			}
			// GET with a side effect: the dashboard advances its streak on load.
			r.Get("/streak", s.handleStreak)
			r.Post("/token-analysis", s.handleTokenAnalysis)
			r.Post("/notifications/read", s.handleMarkRead)
			r.Post("/notifications/read-all", s.handleMarkAllRead)
			r.Post("/actions/submit", s.handleSubmitAction)
			r.Post("/upload", s.handleUpload)
			r.Post("/validate-token", s.handleValidateToken)
		})
	})

	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
	Vendor    string    `json:"vendor"`
	Requests  int64     `json:"requests"`
	WSClients int       `json:"ws_clients"`
}

// Status reports the running state of the server.
func (s *Server) Status() StatusResponse {
	s.mu.Lock()
	requests := s.requests
	s.mu.Unlock()

	resp := StatusResponse{
		Status:    "running",
		Uptime:    s.now().Sub(s.startedAt).Round(time.Second).String(),
		StartedAt: s.startedAt,
		Vendor:    s.vendor,
		Requests:  requests,
	}
	if s.hub != nil {
		resp.WSClients = s.hub.Clients()
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}
