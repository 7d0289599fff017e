package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
	"github.com/programme-lv/hwlog/auth"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/logger"
)

type HttpServer struct {
	logbooks *logbook.Generator
	classes  classdir.Directory
	router   *chi.Mux
	stats    *statsLogger
}

type Options struct {
	JwtKey         []byte
	AllowedOrigins []string
	// StatsInterval is how often per-route stats are logged; zero disables them.
	StatsInterval time.Duration
	LogLevel      slog.Level
}

func NewHttpServer(logbooks *logbook.Generator, classes classdir.Directory, opts Options) *HttpServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("hwlog", httplog.Options{
		LogLevel:         opts.LogLevel,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
	})
	router.Use(httplog.RequestLogger(logger))
	router.Use(requestIDLogger)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	server := &HttpServer{
		logbooks: logbooks,
		classes:  classes,
		router:   router,
	}
	if opts.StatsInterval > 0 {
		server.stats = newStatsLogger(logger.Logger, opts.StatsInterval)
		router.Use(server.stats.middleware)
	}

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireScope(opts.JwtKey, auth.ScopeLogbookRead))
		r.Get("/classes/{classCode}", server.getClass)
		r.Get("/classes/{classCode}/logbook", server.getLogbook)
	})
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return server
}

// requestIDLogger tags the context logger with the request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if id == "" {
			id = uuid.NewString()
		}
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

// Start serves on address until ctx is done.
func (httpserver *HttpServer) Start(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if httpserver.stats != nil {
		go httpserver.stats.run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
