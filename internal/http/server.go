// Package http serves user documents and the values derived from them.
package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Publisher announces document replacements. Failures never fail a save.
type Publisher interface {
	PublishUserDataUpdated(ctx context.Context, userID string, updatedAt time.Time) error
}

type Options struct {
	Addr      string
	Documents storage.DocumentStore
	// Publisher is optional.
	Publisher Publisher
	// APIToken, when set, is required as a bearer token on /users routes.
	APIToken       string
	Logger         *log.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	SummaryTTL     time.Duration
	RateLimit      ratelimit.Config
	Headers        security.HeadersConfig
}

type Server struct {
	http.Server
	docs       storage.DocumentStore
	publisher  Publisher
	token      string
	logger     *log.Logger
	structured *log.StructuredLogger

	summaries *cache.LRUCache[services.MonthSummary]
	caches    *cache.Manager
	flights   singleflight.Group

	// generations counts invalidations per user; a summary computed under an
	// older generation is never cached.
	genMu       sync.Mutex
	generations map[string]uint64

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	timeout      time.Duration
	maxBody      int64
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. Cleanup goroutines run until
// Shutdown.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 << 20
	}
	if opts.SummaryTTL <= 0 {
		opts.SummaryTTL = time.Minute
	}
	if opts.RateLimit.RequestsPerMinute <= 0 {
		opts.RateLimit = ratelimit.WriteConfig()
	}
	if opts.Headers.XContentTypeOptions == "" {
		opts.Headers = security.DefaultHeadersConfig()
	}

	s := &Server{
		docs:       opts.Documents,
		publisher:  opts.Publisher,
		token:      opts.APIToken,
		logger:     opts.Logger,
		structured: log.NewStructuredLogger(opts.Logger),
		summaries:  cache.NewLRUCache[services.MonthSummary](500, opts.SummaryTTL),
		caches:     cache.NewManager(),
		limiter:    ratelimit.NewLimiter(opts.RateLimit),
		detector:   security.NewDetector(),
		timeout:    opts.RequestTimeout,
		maxBody:    opts.MaxBodyBytes,
		now:        time.Now,
	}
	s.generations = make(map[string]uint64)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.structured)
	s.caches.Register(s.summaries)
	s.caches.StartCleanup(5 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /users/{userId}/data", s.requireToken(s.handleGetDocument))
	mux.Handle("PUT /users/{userId}/data", s.requireToken(s.handlePutDocument))
	mux.Handle("GET /users/{userId}/summary", s.requireToken(s.handleSummary))
	mux.Handle("GET /users/{userId}/history", s.requireToken(s.handleHistory))
	mux.Handle("GET /users/{userId}/cards/{cardId}/usage", s.requireToken(s.handleCardUsage))

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.detector.Middleware(s.onSuspicious)(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(opts.Logger)(handler)
	handler = security.NewHeadersMiddleware(opts.Headers).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && !validBearer(r.Header.Get("Authorization"), s.token) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	})
}

func validBearer(header, token string) bool {
	got, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) == 1
}

func (s *Server) onRateLimited(r *http.Request, clientIP string) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
}

func (s *Server) onSuspicious(r *http.Request, clientIP string) {
	log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
		log.FieldClientIP, clientIP,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldUserAgent, r.Header.Get("User-Agent"))
}
