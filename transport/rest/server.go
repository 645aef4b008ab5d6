package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// NewHandler - routes of the game API.
func NewHandler(logger *slog.Logger, gameUseCase gameUseCase) http.Handler {
	games := newGameHandlers(logger, gameUseCase)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", pingHandler)

	mux.HandleFunc("POST /games", games.create)
	mux.HandleFunc("GET /games/{id}", games.get)
	mux.HandleFunc("DELETE /games/{id}", games.remove)
	mux.HandleFunc("POST /games/{id}/moves", games.place)
	mux.HandleFunc("POST /games/{id}/taps", games.tap)
	mux.HandleFunc("POST /games/{id}/reset", games.reset)

	return mux
}

// Start - serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}
