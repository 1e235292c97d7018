package stub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/yildizm/qupid/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// ListenAndServe serves handler on addr until ctx is canceled, then shuts
// down gracefully. ready, when non-nil, receives the bound address.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *logger.Logger, ready func(net.Addr)) error {
	if log == nil {
		log = logger.Nop()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if ready != nil {
		ready(ln.Addr())
	}
	log.Info("listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
