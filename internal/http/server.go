package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"html/template"

	"lezioni/internal/core"
	applog "lezioni/internal/log"
	"lezioni/internal/services"
	appweb "lezioni/web"
)

// appMetrics tracks coarse application counters for the metrics endpoint.
type appMetrics struct {
	uptime       time.Time
	lessonWrites int64
	reportsBuilt int64
}

// Server serves the dashboard UI and the lesson, settings and report
// endpoints on top of the configured backend.
type Server struct {
	http.Server
	templates   *template.Template
	lessons     *services.LessonService
	settings    *services.SettingsService
	rateLimiter *rateLimiter
	structured  *applog.StructuredLogger

	// Month summaries are cheap to recompute but the dashboard polls
	// them; a short TTL keeps partials snappy without staleness.
	summaryCache *lruCache[core.MonthSummary]

	// reportBusy serializes PDF generation: one report at a time.
	reportBusy int32

	appMetrics appMetrics
	secMetrics securityMetrics

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, lessons *services.LessonService, settings *services.SettingsService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		lessons:          lessons,
		settings:         settings,
		rateLimiter:      newRateLimiter(),
		structured:       applog.NewStructuredLogger(applog.New(applog.DefaultConfig())),
		summaryCache:     newLRUCache[core.MonthSummary](48, 5*time.Minute),
		appMetrics:       appMetrics{uptime: time.Now()},
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// Lessons
	mux.HandleFunc("/lessons", s.withSecurityHeaders(s.handleCreateLesson))
	mux.HandleFunc("/lessons/update", s.withSecurityHeaders(s.handleUpdateLesson))
	mux.HandleFunc("/lessons/toggle-invoiced", s.withSecurityHeaders(s.handleToggleInvoiced))
	mux.HandleFunc("/lessons/delete", s.withSecurityHeaders(s.handleDeleteLesson))

	// Dashboard partials
	mux.HandleFunc("/ui/month-summary", s.withSecurityHeaders(s.handleMonthSummary))
	mux.HandleFunc("/ui/lesson-form", s.withSecurityHeaders(s.handleLessonForm))

	// Settings editor
	mux.HandleFunc("/settings", s.withSecurityHeaders(s.handleSettingsPage))
	mux.HandleFunc("/settings/sports", s.withSecurityHeaders(s.handleSportOp))
	mux.HandleFunc("/settings/lesson-types", s.withSecurityHeaders(s.handleLessonTypeOp))
	mux.HandleFunc("/settings/locations", s.withSecurityHeaders(s.handleLocationOp))
	mux.HandleFunc("/settings/prices", s.withSecurityHeaders(s.handleSetPrice))
	mux.HandleFunc("/settings/costs", s.withSecurityHeaders(s.handleSetCost))
	mux.HandleFunc("/settings/tax-rate", s.withSecurityHeaders(s.handleSetTaxRate))

	// PDF export
	mux.HandleFunc("/report", s.withSecurityHeaders(s.handleReport))

	return s
}

// startCacheCleanup runs periodic cleanup for the summary cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging around a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		detectSuspiciousRequest(r, &s.secMetrics)

		s.structured.LogHTTPStart(ctx, r, clientIP, requestID)

		// Mutating requests are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.secMetrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP, requestID)
	}
}

type requestIDKey struct{}

// requestIDFrom returns the request ID stored by withSecurityHeaders,
// or an empty string outside a request.
func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) summaryCacheKey(year, month int) string {
	return monthKey(year, month)
}

func (s *Server) invalidateSummary(year, month int) {
	s.summaryCache.Delete(s.summaryCacheKey(year, month))
}

func (s *Server) invalidateLessonMonth(l core.Lesson) {
	s.invalidateSummary(l.Date.Year(), int(l.Date.Month()))
}

// getMonthSummary computes the dashboard summary for one month, cached.
func (s *Server) getMonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	key := s.summaryCacheKey(year, month)
	if data, found := s.summaryCache.Get(key); found {
		slog.DebugContext(ctx, "Summary cache hit", "year", year, "month", month)
		return data, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	lessons, err := s.lessons.List(cctx)
	if err != nil {
		return core.MonthSummary{}, err
	}
	settings, err := s.settings.Get(cctx)
	if err != nil {
		return core.MonthSummary{}, err
	}

	ref := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	summary := core.MonthlyView(lessons, settings, ref)

	s.summaryCache.Set(key, summary)
	slog.DebugContext(ctx, "Summary cached", "year", year, "month", month, "lessons", summary.Totals.Count)
	return summary, nil
}
