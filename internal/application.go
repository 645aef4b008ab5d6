package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/charttactoe-backend/internal/config"
	"github.com/rocketscienceinc/charttactoe-backend/internal/repository"
	"github.com/rocketscienceinc/charttactoe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/charttactoe-backend/internal/usecase"
	"github.com/rocketscienceinc/charttactoe-backend/transport/rest"
	"github.com/rocketscienceinc/charttactoe-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameRepo, closeRepo, err := openGameRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	gameUseCase := usecase.NewGameManager(logger, gameRepo)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := rest.Start(ctx, conf.HTTPPort, rest.NewHandler(logger, gameUseCase)); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := websocket.New(logger, gameUseCase).Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	err = group.Wait()
	log.Info("Application stopped")

	return err
}

// openGameRepository - session storage selected by config.
func openGameRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	if conf.Storage == config.StorageMemory {
		log.Info("Using in-memory game storage")
		return repository.NewMemoryGameRepository(conf.SessionTTL), func() {}, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using redis game storage", "addr", conf.Redis.GetRedisAddr(), "ttl", conf.SessionTTL)

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage.Connection, conf.SessionTTL), closeFn, nil
}
