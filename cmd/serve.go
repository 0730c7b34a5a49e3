package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/discovery"
	"github.com/sells-group/leadfinder/internal/model"
)

// statusClientClosedRequest is the nginx convention for a request the client
// abandoned before a response was written.
const statusClientClosedRequest = 499

// maxRequestBody caps POST /v1/discover bodies.
const maxRequestBody = 1 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the discovery HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine(cfg, 0)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(engine, cfg.Discovery.Limit, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Strings("sources", engine.Sources()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type discoverRequest struct {
	Preferences model.Preferences `json:"preferences"`
	Limit       *int              `json:"limit" validate:"omitnil,gt=0,lte=1000"`
}

type sourceFailure struct {
	Source   string `json:"source"`
	Error    string `json:"error"`
	TimedOut bool   `json:"timed_out"`
}

type errorBody struct {
	Error    string          `json:"error"`
	Failures []sourceFailure `json:"failures,omitempty"`
}

// newRouter wires the HTTP API. Requests without a limit use defaultLimit.
func newRouter(engine *discovery.Engine, defaultLimit int, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sources", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string][]string{"sources": engine.Sources()})
		})
		r.Post("/discover", handleDiscover(engine, defaultLimit))
	})

	return r
}

func handleDiscover(engine *discovery.Engine, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discoverRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
			return
		}

		if err := validate.Struct(req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request: " + err.Error()})
			return
		}

		limit := defaultLimit
		if req.Limit != nil {
			limit = *req.Limit
		}

		res, err := engine.Discover(r.Context(), req.Preferences, limit)
		if err != nil {
			status, body := errorResponse(r.Context(), err)
			zap.L().Warn("discover request failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Int("status", status),
				zap.Error(err),
			)
			writeJSON(w, status, body)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// errorResponse maps a Discover error to an HTTP status and body.
func errorResponse(ctx context.Context, err error) (int, errorBody) {
	var allFailed *discovery.AllSourcesFailedError
	switch {
	case errors.Is(err, discovery.ErrInvalidArgument):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.As(err, &allFailed):
		body := errorBody{Error: "all sources failed"}
		for _, f := range allFailed.Failures {
			body.Failures = append(body.Failures, sourceFailure{
				Source:   f.SourceID,
				Error:    f.Err.Error(),
				TimedOut: f.TimedOut,
			})
		}
		return http.StatusBadGateway, body
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return statusClientClosedRequest, errorBody{Error: "request cancelled"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorBody{Error: "discovery interrupted"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}
