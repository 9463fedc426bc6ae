// Package http exposes the assistant over a small JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"gastos/internal/assistant"
	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
)

// Store is what the handlers read and write directly.
type Store interface {
	ledger.ExpenseStore
	ledger.PreferenceStore
}

// pinger is implemented by stores backed by a database connection.
type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	assistant *assistant.Service
	store     Store
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	rateLimit      int
	trustedProxies []string

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	caches  *cache.Manager
	reports *cache.LRUCache[core.Report]

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithClock sets the source of "today" for default date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator for manually added entries.
func WithIDGenerator(f func() string) Option {
	return func(s *Server) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithRateLimit caps message submissions per client per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimit = perMinute }
}

// WithTrustedProxies adds networks whose forwarding headers are believed.
func WithTrustedProxies(cidrs ...string) Option {
	return func(s *Server) { s.trustedProxies = append(s.trustedProxies, cidrs...) }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// Shutdown must be called to stop its background goroutines.
func NewServer(addr string, svc *assistant.Service, store Store, logger *log.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		assistant: svc,
		store:     store,
		logger:    logger.WithComponent(log.ComponentHTTP),
		now:       time.Now,
		newID:     uuid.NewString,
		rateLimit: ratelimit.DefaultConfig().RequestsPerMinute,
		detector:  security.NewDetector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, cidr := range s.trustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	limits := ratelimit.DefaultConfig()
	limits.RequestsPerMinute = s.rateLimit
	s.limiter = ratelimit.NewLimiter(limits)
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	// Reports are cached briefly; writes through this server clear them,
	// writes from other processes show up once entries expire.
	s.reports = cache.NewLRUCache[core.Report](100, time.Minute)
	s.caches = cache.NewManager(s.logger)
	s.caches.Register(s.reports)
	s.caches.StartCleanup(5 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /messages", s.handleMessage)
	mux.HandleFunc("GET /expenses", s.handleExpenses)
	mux.HandleFunc("POST /expenses", s.handleAddExpense)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /preferences", s.handlePutPreferences)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(limits.Methods, s.detector.ExtractClientIP, s.onRateLimit)

	s.Server = http.Server{
		Addr:    addr,
		Handler: headers.Middleware(s.tracer.Middleware(s.flagSuspicious(limit(mux)))),
	}
	return s, nil
}

// flagSuspicious logs probe-like requests; they are still served normally.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "Demasiadas solicitudes. Intenta de nuevo en un minuto.")
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// today is the current calendar day in the clock's location.
func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
