// Package http exposes the reporting engine over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mitcash/internal/auth"
	"mitcash/internal/cache"
	"mitcash/internal/categories"
	applog "mitcash/internal/log"
	"mitcash/internal/prefs"
	"mitcash/internal/services"
)

type Server struct {
	http.Server

	dashboard    *services.DashboardService
	transactions *services.TransactionService
	propagator   *services.RecurringPropagator
	registry     *categories.Registry
	prefsStore   *prefs.Store
	gate         *auth.Gate

	rateLimiter *rateLimiter
	logs        *applog.StructuredLogger

	// Cached month summaries, invalidated wholesale on every write.
	summaryCache *cache.LRUCache[services.MonthSummary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options carries the collaborators the server needs. Gate may be nil when
// no allow-list is configured; the API is then open.
type Options struct {
	Addr         string
	Dashboard    *services.DashboardService
	Transactions *services.TransactionService
	Propagator   *services.RecurringPropagator
	Registry     *categories.Registry
	Prefs        *prefs.Store
	Gate         *auth.Gate
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		dashboard:    opts.Dashboard,
		transactions: opts.Transactions,
		propagator:   opts.Propagator,
		registry:     opts.Registry,
		prefsStore:   opts.Prefs,
		gate:         opts.Gate,
		rateLimiter:  newRateLimiter(),
		logs:         applog.NewStructuredLogger(applog.Default(applog.ComponentHTTP)),
		summaryCache: cache.NewLRUCache[services.MonthSummary](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/summary", s.wrap(s.handleSummary))
	mux.HandleFunc("GET /api/annual", s.wrap(s.handleAnnual))
	mux.HandleFunc("GET /api/search", s.wrap(s.handleSearch))

	mux.HandleFunc("GET /api/transactions/{kind}", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions/{kind}", s.wrap(s.requireIdentity(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /api/transactions/{kind}/{id}", s.wrap(s.requireIdentity(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{kind}/{id}", s.wrap(s.requireIdentity(s.handleDeleteTransaction)))

	mux.HandleFunc("POST /api/recurring/{kind}/propagate", s.wrap(s.requireIdentity(s.handlePropagate)))

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.wrap(s.requireIdentity(s.handleAddCategory)))
	mux.HandleFunc("DELETE /api/categories/{name}", s.wrap(s.requireIdentity(s.handleRemoveCategory)))

	mux.HandleFunc("GET /api/session", s.wrap(s.handleGetSession))
	mux.HandleFunc("POST /api/session", s.wrap(s.handleSignIn))
	mux.HandleFunc("DELETE /api/session", s.wrap(s.handleSignOut))

	mux.HandleFunc("GET /api/prefs", s.wrap(s.handleGetPrefs))
	mux.HandleFunc("PUT /api/prefs/dark-mode", s.wrap(s.handleSetDarkMode))

	return s
}

// wrap applies security headers, rate limiting, request tracing, and metrics
// to a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = applog.WithLogger(ctx, applog.Default(applog.ComponentHTTP).With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, clientIP)

		// Rate limit mutations only; reads are cache-friendly.
		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		observeRequest(r.Method, r.URL.Path, rw.statusCode, duration)
		s.logs.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// requireIdentity rejects mutations when an allow-list gate is configured
// and nobody is signed in.
func (s *Server) requireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.gate != nil && s.gate.CurrentIdentity() == nil {
			writeError(w, http.StatusUnauthorized, "sign-in required")
			return
		}
		next(w, r)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
