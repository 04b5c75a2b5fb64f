package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

type httpServer struct {
	srv *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) *httpServer {
	return &httpServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (h *httpServer) Name() string { return "http_server" }

func (h *httpServer) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", h.Name(), "addr", h.srv.Addr)
	defer slog.Info("Worker stopped", "name", h.Name())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		_ = h.srv.Shutdown(shutdownCtx)
	}()

	if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
