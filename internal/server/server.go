package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/GoSummary/internal/adapter/utils"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/middleware"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	// StopEvents drains the queued lifecycle events.
	StopEvents    func(ctx context.Context) error
	CloseServices func(ctx context.Context)
}

// RegisterRoutes mounts the summary API on r. mcpHandler may be nil.
func RegisterRoutes(r chi.Router, mcpHandler http.Handler) {
	r.Get("/healthz", middleware.GetHandler)
	r.Post("/summarize", middleware.SummarizeHandler)
	r.Post("/summarize/", middleware.SummarizeHandler)
	r.Post("/summarize/stream", middleware.SummarizeStreamHandler)
	r.Post("/summarize/feedback", middleware.FeedbackHandler)
	r.Get("/summarize/{id}", middleware.GetSummaryHandler)
	if mcpHandler != nil {
		r.Handle("/mcp", middleware.Wrap(mcpHandler.ServeHTTP))
	}
}

func CreateServer(listenAddr string, mcpHandler http.Handler) {
	r := utils.GetRouter()
	RegisterRoutes(r.Router, mcpHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//in-flight requests are done, flush their events before closing the clients
		if shutdownParams.StopEvents != nil {
			if err := shutdownParams.StopEvents(ctx); err != nil {
				_logger.Error("Lifecycle events not drained", "error", err)
			}
		}
		if shutdownParams.CloseServices != nil {
			shutdownParams.CloseServices(ctx)
		}
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
