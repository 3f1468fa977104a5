// Package server initializes and runs the main application server.
// It selects the storage backend, wires the domain services and the
// realtime conversation registry, and serves the REST and websocket
// endpoint with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/chat"
	"github.com/prattle-chat/prattle/internal/server/config"
	"github.com/prattle-chat/prattle/internal/server/httpapi"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/shared/db"
	"github.com/prattle-chat/prattle/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	manager        db.RepositoryManager
	userService    *users.Service
	channelService *channels.Service
	messageService *messages.Service
	api            *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout)

	var manager db.RepositoryManager
	if c.InMemory {
		manager = db.NewInMemoryRepositoryManager()
	} else {
		var err error
		manager, err = db.NewPostgresRepositoryManager(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	zone, err := time.LoadLocation(c.TimestampZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp zone %q: %w", c.TimestampZone, err)
	}

	us := users.NewService(manager.Users(), logger, c.LockoutDuration)
	cs := channels.NewService(manager.Channels(), manager.Users(), logger)
	ms := messages.NewService(manager.Messages(), logger)

	deps := chat.Deps{
		Registry: chat.NewRegistry(logger),
		Users:    us,
		Channels: cs,
		Messages: ms,
		Logger:   logger,
		Clock:    func() time.Time { return time.Now().In(zone) },
	}

	api := httpapi.NewServer(us, cs, ms, deps, logger)

	return &App{
		config:         c,
		logger:         logger,
		manager:        manager,
		userService:    us,
		channelService: cs,
		messageService: ms,
		api:            api,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.HTTPAddr,
		Handler: app.api.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if conn := app.manager.Conn(); conn != nil {
		if err := conn.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}
