package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionRepo, closeStorage, err := openSessionRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStorage(); closeErr != nil {
			log.Error("could not close storage", "error", closeErr)
		}
	}()

	seed := conf.Bot.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	botService := service.NewBotService(
		rand.New(rand.NewSource(seed)), //nolint: gosec // game randomness
		conf.Bot.RandomMoveChance,
		conf.Bot.RandomMoveThreshold,
	)
	sessionService := service.NewSessionService(logger, sessionRepo, botService)

	delay := websocket.RandomDelay(
		rand.New(rand.NewSource(seed+1)), //nolint: gosec // game randomness
		conf.Bot.ThinkDelayMin,
		conf.Bot.ThinkDelayMax,
	)

	restServer := rest.New(logger, sessionService)
	wsServer := websocket.New(logger, sessionService, delay)

	return runServers(ctx, cancel, log, []server{
		{name: "HTTP", port: conf.HTTPPort, start: restServer.Start},
		{name: "WebSocket", port: conf.SocketPort, start: wsServer.Start},
	})
}

type server struct {
	name  string
	port  string
	start func(ctx context.Context, port string) error
}

// runServers - runs every server until ctx is canceled or one of them fails, in which
// case the others are shut down too. It returns only after every Start has returned,
// so pending work (computer turns) is done before storage is closed.
func runServers(ctx context.Context, cancel context.CancelFunc, log *slog.Logger, servers []server) error {
	var wg sync.WaitGroup

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		wg.Add(1)
		go func() {
			defer wg.Done()

			log.Info("Starting "+srv.name+" server", "port", srv.port)
			if err := srv.start(ctx, srv.port); err != nil {
				log.Error(srv.name+" server error", "error", err)
				errCh <- fmt.Errorf("%s server error: %w", srv.name, err)
			}
		}()
	}

	var err error
	select {
	case err = <-errCh:
		cancel()
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	wg.Wait()

	return err
}

func openSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func() error, error) {
	switch conf.StorageDriver {
	case config.StorageSQLite:
		sqliteStorage, err := storage.NewSQLite(ctx, conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		return repository.NewSQLiteSessionRepository(sqliteStorage.Connection, conf.SessionTTL), sqliteStorage.Close, nil
	case config.StorageMemory:
		return repository.NewMemorySessionRepository(), func() error { return nil }, nil
	default:
		redisAddrString := conf.Redis.GetRedisAddr()
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewSessionRepository(redisStorage, conf.SessionTTL), redisStorage.Close, nil
	}
}
