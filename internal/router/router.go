package router

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/soap"
	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user"
	"github.com/ovaphlow/pitchfork/service-user-soap/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.status == 0 {
		lrw.status = code
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

func (lrw *loggingResponseWriter) statusOrOK() int {
	if lrw.status == 0 {
		return http.StatusOK
	}
	return lrw.status
}

// RequestIDMiddleware propagates X-Request-ID, generating one when absent.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if id == "" {
				id = utilities.NewRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(utilities.WithRequestID(r.Context(), id)))
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", lrw.statusOrOK(),
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", utilities.RequestID(r.Context()),
			)
		})
	}
}

// MetricsMiddleware records request count and latency labelled by the
// matched route pattern.
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.recordRequest(r.Method, route, lrw.statusOrOK(), time.Since(start))
		})
	}
}

// RecoverMiddleware turns a handler panic into a generic 500 so no internals
// reach the caller.
func RecoverMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.Errorw("handler panicked",
						"panic", p,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", utilities.RequestID(r.Context()),
					)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": user.MsgInternal})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

var (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Content-Type, SOAPAction, Authorization, X-Requested-With, Accept, Origin, Cache-Control, Pragma, User-Agent, Host, X-Request-ID"
)

// CORSMiddleware answers every OPTIONS request with 200. With "*" in allowed
// any origin is admitted as "*" and credentials are not allowed; a listed
// origin is echoed back with credentials allowed.
func CORSMiddleware(allowed []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowed, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")
			switch {
			case origin != "" && slices.Contains(allowed, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if h.Get("Access-Control-Allow-Origin") != "" {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}

			// HSTS only makes sense over TLS.
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Options configures RegisterRoutes. The zero value serves every route with
// CORS closed, no rate limit and a fresh metrics registry.
type Options struct {
	PublicURL      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Metrics        *Metrics
}

// RegisterRoutes mounts the SOAP endpoint, the REST routes and the
// diagnostic routes on an http.ServeMux and wraps them in the middleware chain.
func RegisterRoutes(logger *zap.SugaredLogger, store user.Store, opts Options) http.Handler {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	mux := http.NewServeMux()

	soapHandler := soap.NewHandler(store, logger, soap.Config{PublicURL: opts.PublicURL, Observer: opts.Metrics})
	mux.Handle("/soap", soapHandler)
	mux.HandleFunc("GET /wsdl", soapHandler.ServeWSDL)

	userHandler := user.NewHandler(store, logger)
	userHandler.Register(mux, "")
	userHandler.Register(mux, "/api")

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "service": "SOAP User Service"})
	})
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "Server is running"})
	})
	mux.HandleFunc("GET /test-cors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "CORS test successful", "origin": r.Header.Get("Origin")})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "SOAP User Service API",
			"endpoints": map[string]string{
				"soap":     "/soap",
				"wsdl":     "/wsdl",
				"rest":     "/users",
				"health":   "/health",
				"metrics":  "/metrics",
				"testCors": "/test-cors",
			},
			"documentation": "Use SOAP client to access /soap endpoint or get WSDL from /wsdl",
		})
	})
	mux.Handle("GET /metrics", opts.Metrics.Handler())

	var handler http.Handler = mux
	handler = RateLimitMiddleware(newIPLimiter(opts.RateLimitRPS, opts.RateLimitBurst), opts.Metrics)(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = CORSMiddleware(opts.AllowedOrigins)(handler)
	handler = RecoverMiddleware(logger)(handler)
	handler = MetricsMiddleware(opts.Metrics)(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
