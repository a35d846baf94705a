package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-online/internal/config"
	"github.com/rocketscienceinc/tictactoe-online/internal/janitor"
	"github.com/rocketscienceinc/tictactoe-online/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-online/internal/presence"
	"github.com/rocketscienceinc/tictactoe-online/internal/realtime"
	"github.com/rocketscienceinc/tictactoe-online/internal/repository"
	"github.com/rocketscienceinc/tictactoe-online/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-online/internal/session"
	"github.com/rocketscienceinc/tictactoe-online/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-online/pkg/ids"
	"github.com/rocketscienceinc/tictactoe-online/transport/rest"
	"github.com/rocketscienceinc/tictactoe-online/transport/websocket"
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

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	presenceConf := presence.Config{
		HeartbeatTimeout: conf.Presence.HeartbeatTimeout,
		PollInterval:     conf.Presence.PollInterval,
		GracePeriod:      conf.Presence.GracePeriod,
	}

	roomRepo := repository.NewRoomRepository(redisStorage)
	playerRepo := repository.NewPlayerRepository(redisStorage)
	roomManager := usecase.NewRoomManager(logger, roomRepo, playerRepo, ids.GenerateRoomCode, ids.NewPlayerID)
	broker := realtime.NewRedisBroker(logger, redisStorage, presenceConf.HeartbeatTimeout)
	appMetrics := metrics.New()

	wsServer := websocket.New(logger, roomManager, broker, session.Options{Presence: presenceConf}, appMetrics)
	roomJanitor := janitor.New(logger, roomRepo, conf.Janitor.RoomTTL)

	if conf.Janitor.Secret == "" {
		log.Warn("cron secret is not configured, /cron will refuse every request")
	}

	router := rest.NewRouter(logger, rest.Routes{
		Cron:       rest.NewCronHandler(logger, roomJanitor, appMetrics),
		CronSecret: conf.Janitor.Secret,
		Metrics:    appMetrics.Handler(),
		WebSocket:  wsServer,
	})

	// run HTTP server, websocket included
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
