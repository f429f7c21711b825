package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "spendwise/internal/log"
	"spendwise/internal/session"
	"spendwise/internal/taxonomy"
	appweb "spendwise/web"
)

// Opener starts a session for a username entered in the identity form.
type Opener func(ctx context.Context, username string) (*session.Session, error)

// Options configures NewServer.
type Options struct {
	Opener         Opener
	Taxonomy       taxonomy.Taxonomy
	CurrencySymbol string
	Logger         *applog.Logger
}

// Server is the local browser shell. It owns at most one session; every
// handler touching it runs under mu, so commands execute one at a time.
type Server struct {
	http.Server
	templates  *template.Template
	opener     Opener
	taxonomy   taxonomy.Taxonomy
	currency   string
	logger     *applog.Logger
	structured *applog.StructuredLogger

	mu   sync.Mutex
	sess *session.Session

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	currency := opts.CurrencySymbol
	if currency == "" {
		currency = "₹"
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		opener:     opts.Opener,
		taxonomy:   opts.Taxonomy,
		currency:   currency,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/session", s.withSecurityHeaders(s.handleOpenSession))
	mux.HandleFunc("/session/close", s.withSecurityHeaders(s.handleCloseSession))
	mux.HandleFunc("/tracker", s.withSecurityHeaders(s.handleTracker))
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.handleAddExpense))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.handleDeleteExpense))
	mux.HandleFunc("/save", s.withSecurityHeaders(s.handleSave))
	mux.HandleFunc("/ui/expenses", s.withSecurityHeaders(s.handleExpensesPartial))

	s.Handler = applog.Middleware(logger)(mux)
	return s
}

// Session returns the open session, if any.
func (s *Server) Session() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// CloseSession performs the final save of the open session and forgets it.
// It is a no-op when no session is open.
func (s *Server) CloseSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked(ctx)
}

func (s *Server) closeLocked(ctx context.Context) error {
	if s.sess == nil {
		return nil
	}
	sess := s.sess
	if err := sess.Close(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Final save failed", applog.FieldUsername, sess.Username(), applog.FieldError, err)
		return err
	}
	s.sess = nil
	s.logger.InfoContext(ctx, "Session closed", applog.FieldUsername, sess.Username())
	return nil
}

// Shutdown stops accepting requests, then closes the open session.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = errors.Join(s.Server.Shutdown(ctx), s.CloseSession(ctx))
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, a request ID and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		logger := applog.FromContext(r.Context()).With(applog.FieldRequestID, requestID)
		r = r.WithContext(applog.WithLogger(r.Context(), logger))

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
