// Package http exposes the fund ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sunduq/internal/cache"
	"sunduq/internal/core"
	"sunduq/internal/log"
	"sunduq/internal/middleware/ratelimit"
	"sunduq/internal/middleware/security"
	"sunduq/internal/middleware/trace"
	"sunduq/internal/receipt"
	"sunduq/internal/services"
)

// Options tune the derived-view caches and the mutation rate limiter.
type Options struct {
	CacheTTL             time.Duration
	CacheSize            int
	CacheCleanupInterval time.Duration
	RateLimitPerMinute   int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 128
	}
	if o.CacheCleanupInterval <= 0 {
		o.CacheCleanupInterval = time.Minute
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = ratelimit.DefaultConfig().RequestsPerMinute
	}
	return o
}

type Server struct {
	http.Server
	ledger   *services.LedgerService
	analyzer receipt.Analyzer

	// Derived views are cheap to rebuild but hit on every dashboard poll,
	// so they sit behind a purge-on-write cache.
	transactionsCache *cache.LRUCache[[]core.UnifiedTransaction]
	reportCache       *cache.LRUCache[core.Report]
	summaryCache      *cache.LRUCache[[]core.BalanceSummary]
	cacheManager      *cache.Manager

	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, analyzer receipt.Analyzer, opts Options) *Server {
	opts = opts.withDefaults()

	if analyzer == nil {
		analyzer = receipt.Disabled{}
	}

	s := &Server{
		ledger:            ledger,
		analyzer:          analyzer,
		transactionsCache: cache.NewLRUCache[[]core.UnifiedTransaction](opts.CacheSize, opts.CacheTTL),
		reportCache:       cache.NewLRUCache[core.Report](opts.CacheSize, opts.CacheTTL),
		summaryCache:      cache.NewLRUCache[[]core.BalanceSummary](1, opts.CacheTTL),
		cacheManager:      cache.NewManager(),
		limiter:           ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	s.cacheManager.Register(s.transactionsCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(opts.CacheCleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/funds", s.handleListFunds)
	mux.HandleFunc("POST /api/funds", s.handleCreateFund)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/next-number", s.handleNextDocumentNumber)

	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)

	mux.HandleFunc("GET /api/orders", s.handleListOrders)
	mux.HandleFunc("PUT /api/orders", s.handleReplaceOrders)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleSaveSettings)

	mux.HandleFunc("GET /api/backup", s.handleBackup)
	mux.HandleFunc("POST /api/restore", s.handleRestore)

	mux.HandleFunc("POST /api/receipts/analyze", s.handleAnalyzeReceipt)

	tracer := trace.NewMiddleware(clientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = log.ComponentMiddleware(log.ComponentHTTP)(handler)
	handler = s.limiter.Middleware(clientIP)(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// Shutdown stops the cache janitor, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// purgeDerived drops every cached derived view after a ledger mutation.
func (s *Server) purgeDerived() {
	s.transactionsCache.Purge()
	s.reportCache.Purge()
	s.summaryCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// clientIP resolves the caller's address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
