package http

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"despesas/internal/events"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/middleware/security"
	"despesas/internal/middleware/trace"
	"despesas/internal/services"
	"despesas/internal/store"
)

// Server exposes the entity store and the derivation engines as a JSON
// API.
type Server struct {
	http.Server

	store      store.Store
	expenses   *services.ExpenseService
	reconciler *services.Reconciler

	rateLimiter  *ratelimit.Limiter
	metrics      *Metrics
	shutdownOnce sync.Once
}

// Options configures optional server collaborators.
type Options struct {
	Events             *events.Client
	RateLimitPerMinute int
}

// NewServer wires routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, st store.Store, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:      st,
		expenses:   services.NewExpenseService(st, opts.Events),
		reconciler: services.NewReconciler(st, opts.Events),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		metrics: NewMetrics(),
	}

	traced := trace.NewMiddleware(clientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(clientIP, nil)

	route := func(pattern string, h http.HandlerFunc) {
		routeName := pattern
		if i := strings.Index(pattern, " "); i >= 0 {
			routeName = pattern[i+1:]
		}
		mux.Handle(pattern, traced.Middleware(headers.Middleware(s.metrics.instrument(routeName, h))))
	}
	mutating := func(pattern string, h http.HandlerFunc) {
		routeName := pattern
		if i := strings.Index(pattern, " "); i >= 0 {
			routeName = pattern[i+1:]
		}
		mux.Handle(pattern, traced.Middleware(headers.Middleware(limited(s.metrics.instrument(routeName, h)))))
	}

	route("GET /members", s.handleListMembers)
	mutating("POST /members", s.handleCreateMember)
	route("GET /members/{id}", s.handleGetMember)
	mutating("PUT /members/{id}", s.handleUpdateMember)
	mutating("DELETE /members/{id}", s.handleDeleteMember)

	route("GET /projects", s.handleListProjects)
	mutating("POST /projects", s.handleCreateProject)
	route("GET /projects/{id}", s.handleGetProject)
	mutating("PUT /projects/{id}", s.handleUpdateProject)
	mutating("DELETE /projects/{id}", s.handleDeleteProject)

	route("GET /expenses", s.handleListExpenses)
	mutating("POST /expenses", s.handleCreateExpense)
	route("GET /expenses/{id}", s.handleGetExpense)
	mutating("DELETE /expenses/{id}", s.handleDeleteExpense)

	route("GET /recurring", s.handleListRecurring)
	mutating("POST /recurring", s.handleCreateRecurring)
	route("GET /recurring/{id}", s.handleGetRecurring)
	mutating("PUT /recurring/{id}", s.handleUpdateRecurring)
	mutating("DELETE /recurring/{id}", s.handleDeleteRecurring)

	mutating("POST /recurring/{id}/payments/{month}/paid", s.handleMarkPaid)
	mutating("POST /recurring/{id}/payments/{month}/unpaid", s.handleMarkUnpaid)
	route("GET /payments", s.handleListPayments)

	route("GET /wallet/{memberID}/transactions", s.handleListWalletTransactions)
	mutating("POST /wallet/{memberID}/transactions", s.handleCreateWalletTransaction)

	route("GET /summary/balances", s.handleBalances)
	route("GET /summary/debts", s.handleDebts)
	route("GET /summary/health", s.handleHealth)

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("GET /readyz", http.HandlerFunc(s.handleReadyz))
	mux.Handle("GET /metrics", s.metrics.Handler())

	return s
}

// Shutdown stops the HTTP server and the rate limiter's cleanup
// goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP resolves the caller's address, honouring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.Index(ip, ","); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListMembers(r.Context()); err != nil {
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
