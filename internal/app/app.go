package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement/internal/config"
	"procurement/internal/controller"
	"procurement/internal/logger"
	"procurement/internal/repository"
	"procurement/internal/repository/memory"
	"procurement/internal/router"
	"procurement/internal/service"

	"go.uber.org/zap"
)

type Repository interface {
	service.Repository
	Close() error
}

type App struct {
	repo       Repository
	service    *service.Service
	controller *controller.Controller
	handler    http.Handler
	log        *zap.Logger
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func WithLogger(log *zap.Logger) option {
	return func(app *App) {
		app.log = log
	}
}

func WithRepository(repo Repository) option {
	return func(app *App) {
		app.repo = repo
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.log == nil {
		app.log, err = logger.New(app.cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("app.NewApp: %w", err)
		}
	}

	if app.repo == nil {
		app.repo, err = newRepository(app.cfg, app.log)
		if err != nil {
			return nil, fmt.Errorf("app.NewApp: %w", err)
		}
	}

	app.service = service.NewService(app.repo, app.log.Named("service"))
	app.controller = controller.NewController(app.service, app.log.Named("controller"), app.cfg.RequestTimeout)
	app.handler = router.NewRouter(app.controller, app.log.Named("http"))

	return app, nil
}

func newRepository(cfg *config.Config, log *zap.Logger) (Repository, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Info("Using in-memory storage")
		return memory.NewRepository(), nil
	default:
		return repository.NewRepository(nil, &cfg.PostgresConfig, log.Named("repository"))
	}
}

func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Info("Received signal", zap.String("signal", sig.String()))
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      app.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	listener, err := net.Listen("tcp", app.cfg.ServerAddress)
	if err != nil {
		app.log.Error("Could not listen", zap.String("address", app.cfg.ServerAddress), zap.Error(err))
		cancel()
	} else {
		go func() {
			err := server.Serve(listener)
			if err != nil && err != http.ErrServerClosed {
				app.log.Error("Http server error", zap.Error(err))
			}
		}()
		app.log.Info("Server started, listening for connections...", zap.String("address", listener.Addr().String()))
	}

	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	app.log.Info("Shutting down http server...")
	server.Shutdown(timeout)

	app.log.Info("Closing repository...")
	err = app.repo.Close()
	if err != nil {
		app.log.Error("Repository closing error", zap.Error(err))
	}

	app.log.Info("Exiting app.")
	app.log.Sync()
	close(app.Done)
}
