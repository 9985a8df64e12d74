package router

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-results-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
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

// LoggingMiddleware tags each request with an X-Request-ID and logs it at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = utilities.NewRequestID()
			}
			w.Header().Set("X-Request-ID", reqID)
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
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

			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows the configured origins to call the API from a browser.
func CORSMiddleware(origins []string, tokenName string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID", tokenName},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         3600,
	})
	return c.Handler
}

// fileOnlyFS hides directories so the static mount never produces listings.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, cfg Config, users *user.UserService, issuer *session.Issuer) http.Handler {
	mux := http.NewServeMux()
	p := normalizePrefix(cfg.APIPrefix)

	mux.HandleFunc("GET "+p+"/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	userHandler := user.NewHandler(users, issuer, logger)
	sessionHandler := session.NewHandler(issuer, logger)
	requireLogin := session.RequireLogin(issuer, logger)

	mux.HandleFunc("POST "+p+"/login", userHandler.Login)
	mux.HandleFunc("POST "+p+"/register", userHandler.Register)
	mux.Handle("POST "+p+"/logout", requireLogin(http.HandlerFunc(sessionHandler.Logout)))
	mux.Handle("GET "+p+"/session", requireLogin(http.HandlerFunc(sessionHandler.Current)))
	mux.Handle("GET "+p+"/users", requireLogin(http.HandlerFunc(userHandler.List)))

	if cfg.FileRoot != "" {
		files := http.FileServer(fileOnlyFS{fs: http.Dir(cfg.FileRoot)})
		mux.Handle("GET "+p+"/files/", http.StripPrefix(p+"/files", files))
		logger.Infow("serving static files", "root", cfg.FileRoot, "path", p+"/files/")
	}

	// cors outermost so preflight requests are answered before routing
	handler := SecurityHeadersMiddleware()(mux)
	handler = LoggingMiddleware(logger)(handler)
	return CORSMiddleware(cfg.CORSOrigins, issuer.TokenName())(handler)
}
