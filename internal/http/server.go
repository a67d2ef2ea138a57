// Package http is the thin view layer: a JSON API over the auth, ledger,
// query, and stats services. Handlers parse, validate, delegate, and
// render; no application logic lives here.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finman/internal/cache"
	"finman/internal/core"
	"finman/internal/log"
	"finman/internal/services"
	"finman/internal/token"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Server wires the HTTP surface to the services.
type Server struct {
	http.Server

	auth   *services.AuthService
	ledger *services.LedgerService
	query  *services.QueryService
	stats  *services.StatsService
	tokens *token.Manager

	logger      *log.Logger
	rateLimiter *rateLimiter

	// Period-stats responses are cached per user and window; statsGen is
	// bumped on every write so stale windows stop being addressable.
	statsCache *cache.LRUCache[core.PeriodStats]
	cacheMgr   *cache.Manager
	genMu      sync.Mutex
	statsGen   map[int64]uint64

	shutdownOnce sync.Once
}

// Options carries the server's tunables.
type Options struct {
	Addr          string
	StatsCacheTTL time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, auth *services.AuthService, ledger *services.LedgerService,
	query *services.QueryService, stats *services.StatsService, tokens *token.Manager,
	logger *log.Logger) *Server {

	if opts.StatsCacheTTL <= 0 {
		opts.StatsCacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           opts.Addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		auth:        auth,
		ledger:      ledger,
		query:       query,
		stats:       stats,
		tokens:      tokens,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		statsCache:  cache.NewLRUCache[core.PeriodStats](200, opts.StatsCacheTTL),
		cacheMgr:    cache.NewManager(),
		statsGen:    make(map[int64]uint64),
	}

	s.cacheMgr.Register(s.statsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /auth/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withMiddleware(s.handleLogin))

	mux.HandleFunc("POST /transactions", s.withMiddleware(s.authenticated(s.handleCreateTransaction)))
	mux.HandleFunc("GET /transactions", s.withMiddleware(s.authenticated(s.handleListTransactions)))
	mux.HandleFunc("GET /transactions/search", s.withMiddleware(s.authenticated(s.handleSearchTransactions)))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.authenticated(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /stats/period", s.withMiddleware(s.authenticated(s.handlePeriodStats)))
	mux.HandleFunc("GET /stats/top-categories", s.withMiddleware(s.authenticated(s.handleTopCategories)))

	return s
}

// Shutdown stops the server together with its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request-id tracing, security headers, rate limiting
// on mutating methods, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), contextKey(log.FieldRequestID), requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldSuccess, rw.statusCode < 400)
	}
}

// authenticated resolves the bearer token to a user id and stores it in
// the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.tokens.Validate(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func requestUserID(r *http.Request) int64 {
	if id, ok := r.Context().Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

// statsCacheKey addresses a user's stats window under their current
// generation. Bumping the generation makes previous keys unreachable, so
// they age out by TTL and LRU pressure.
func (s *Server) statsCacheKey(userID int64, start, end string) string {
	s.genMu.Lock()
	gen := s.statsGen[userID]
	s.genMu.Unlock()
	return strconv.FormatInt(userID, 10) + "|" + strconv.FormatUint(gen, 10) + "|" + start + "|" + end
}

func (s *Server) invalidateStats(userID int64) {
	s.genMu.Lock()
	s.statsGen[userID]++
	s.genMu.Unlock()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
