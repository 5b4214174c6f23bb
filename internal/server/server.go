package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/advisor"
	"github.com/hmhhmm/apex-insurance/internal/chat"
	"github.com/hmhhmm/apex-insurance/internal/config"
	"github.com/hmhhmm/apex-insurance/internal/server/middleware"
	"github.com/hmhhmm/apex-insurance/internal/server/ratelimit"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Deps are the collaborators the server routes to. DB is optional: without it the
// account endpoints are not registered and JWT and Password are ignored.
type Deps struct {
	Catalog     []types.InsurancePlan
	Advisor     *advisor.Advisor
	Assistant   *chat.Assistant
	DB          DBClient
	JWT         *config.JWTConfig
	Password    *config.PasswordConfig
	RateLimit   *ratelimit.Config
	CORSOrigins []string
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	catalog     []types.InsurancePlan
	advisor     *advisor.Advisor
	assistant   *chat.Assistant
	db          DBClient
	rateLimiter *ratelimit.Limiter
	userService *UserService
	authHandler *AuthHandler
	logger      *zap.Logger
}

// New wires the routes and middleware. The rate limiter's cleanup goroutine runs
// until Start returns or Close is called.
func New(port int, deps Deps) (*Server, error) {
	if len(deps.Catalog) == 0 {
		return nil, eris.New("server: catalog is empty")
	}
	if deps.Advisor == nil || deps.Assistant == nil {
		return nil, eris.New("server: advisor and assistant are required")
	}

	s := &Server{
		catalog:     deps.Catalog,
		advisor:     deps.Advisor,
		assistant:   deps.Assistant,
		db:          deps.DB,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		logger:      zap.L().With(zap.String("component", "server")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /plans", s.handleListPlans)
	mux.HandleFunc("GET /plans/{id}", s.handleGetPlan)
	mux.HandleFunc("POST /risk", s.handleRisk)
	mux.HandleFunc("POST /recommendations", s.handleRecommend)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /chat/stream", s.handleChatStream)

	if deps.DB != nil {
		if err := s.registerAccountRoutes(mux, deps); err != nil {
			s.rateLimiter.Stop()
			return nil, err
		}
	} else {
		s.logger.Info("no database configured, account endpoints disabled")
	}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	})

	s.handler = s.withLogging(corsHandler.Handler(s.withRateLimit(mux)))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // chat streams
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) registerAccountRoutes(mux *http.ServeMux, deps Deps) error {
	if deps.JWT == nil || deps.Password == nil {
		return eris.New("server: JWT and password configuration are required with a database")
	}

	jwtService := NewJWTService(deps.JWT)
	s.userService = NewUserService(deps.DB, deps.Password)
	s.authHandler = NewAuthHandler(s.userService, jwtService)
	requireAuth := middleware.AuthMiddleware(jwtService.AsTokenValidator())

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", requireAuth(http.HandlerFunc(s.authHandler.UpdatePassword)))

	mux.Handle("GET /me", requireAuth(http.HandlerFunc(s.handleGetMe)))
	mux.Handle("GET /me/profile", requireAuth(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("PUT /me/profile", requireAuth(http.HandlerFunc(s.handleSaveProfile)))
	mux.Handle("POST /me/recommendations", requireAuth(http.HandlerFunc(s.handleCreateRecommendation)))
	mux.Handle("GET /me/recommendations", requireAuth(http.HandlerFunc(s.handleListRecommendations)))
	mux.Handle("GET /me/recommendations/{id}", requireAuth(http.HandlerFunc(s.handleGetRecommendation)))
	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown failed")
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases the rate limiter and the database pool.
func (s *Server) Close() {
	s.rateLimiter.Stop()
	if s.db != nil {
		s.db.Close()
	}
}

// withRateLimit rejects requests over the client's budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for the access log. It forwards
// Flush so SSE handlers keep streaming.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging writes one structured access log line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("client", extractClientID(r)),
		)
	})
}

// extractClientID returns the request's IP address. Forwarded headers are ignored
// because they are client-controlled.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Round(time.Second).Seconds()), 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	jsonResponse(w, http.StatusTooManyRequests, response)
}
