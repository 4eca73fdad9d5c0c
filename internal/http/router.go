package httpx

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MetehanCam/real-estate-social-app/internal/service/auth"
	"github.com/MetehanCam/real-estate-social-app/internal/service/engagement"
	"github.com/MetehanCam/real-estate-social-app/internal/service/feed"
	"github.com/MetehanCam/real-estate-social-app/internal/service/post"
	"github.com/MetehanCam/real-estate-social-app/internal/service/user"
	"github.com/MetehanCam/real-estate-social-app/internal/ws"
	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

// Deps bundles the collaborators of the Router.
type Deps struct {
	Auth           auth.Service
	Users          user.Service
	Feed           feed.Service
	Posts          post.Service
	Engagement     engagement.Service
	Hub            *ws.Hub
	Limiter        RateLimiter
	RateLimits     config.RateLimits
	DBHealth       func(context.Context) error
	AllowedOrigins []string
	SSEHeartbeat   time.Duration
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	auth         auth.Service
	users        user.Service
	feed         feed.Service
	posts        post.Service
	engagement   engagement.Service
	hub          *ws.Hub
	upgrader     websocket.Upgrader
	limiter      RateLimiter
	rateLimits   config.RateLimits
	metrics      *metrics
	dbHealth     func(context.Context) error
	sseHeartbeat time.Duration
}

const (
	healthCheckTimeout = 2 * time.Second
	defaultHeartbeat   = 15 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, deps Deps) *Router {
	if deps.Hub == nil {
		deps.Hub = ws.NewHub(logger)
	}
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     logger,
		auth:       deps.Auth,
		users:      deps.Users,
		feed:       deps.Feed,
		posts:      deps.Posts,
		engagement: deps.Engagement,
		hub:        deps.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(deps.AllowedOrigins),
		},
		limiter:      deps.Limiter,
		rateLimits:   deps.RateLimits,
		dbHealth:     deps.DBHealth,
		sseHeartbeat: deps.SSEHeartbeat,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	if r.rateLimits == (config.RateLimits{}) {
		r.rateLimits = config.DefaultRateLimits()
	}
	if r.sseHeartbeat <= 0 {
		r.sseHeartbeat = defaultHeartbeat
	}
	hub := r.hub
	r.metrics = newMetrics(func() float64 { return float64(hub.Len()) })
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.audit("unmatched", func(w http.ResponseWriter, _ *http.Request) { r.notFound(w) }))
	r.mux.HandleFunc("/healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("/metrics", r.metrics.handler())
	r.mux.HandleFunc("/auth/register", r.audit("/auth/register", r.limit(classRegister, ipSubject, r.handleRegister)))
	r.mux.HandleFunc("/auth/login", r.audit("/auth/login", r.limit(classLogin, ipSubject, r.handleLogin)))
	r.mux.HandleFunc("/auth/me", r.audit("/auth/me", r.requireAuth(r.handleMe)))
	r.mux.HandleFunc("/posts", r.audit("/posts", r.handlePosts))
	r.mux.HandleFunc("/posts/", r.audit("/posts/{id}", r.handlePostSubroutes))
	r.mux.HandleFunc("/users", r.audit("/users", r.handleUsers))
	r.mux.HandleFunc("/users/", r.audit("/users/{id}", r.handleUserSubroutes))
	r.mux.HandleFunc("/ws/timeline", r.audit("/ws/timeline", r.limit(classRealtime, ipSubject, r.handleTimelineWS)))
	r.mux.HandleFunc("/events/timeline", r.audit("/events/timeline", r.limit(classRealtime, ipSubject, r.handleTimelineSSE)))
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			r.logger.Error("database health check failed", "error", err)
			status = "degraded"
			components["database"] = map[string]any{"status": "down"}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	components["timeline"] = map[string]any{"status": "up", "subscribers": r.hub.Len()}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the connection's deadlines.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		if sr.status == 0 {
			sr.status = http.StatusSwitchingProtocols
		}
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

// originChecker accepts any origin when the allow-list is empty or contains "*".
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// pathSegments splits the remainder of path after prefix, ignoring a trailing slash.
func pathSegments(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
