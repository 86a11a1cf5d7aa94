package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/apiclient"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/pdf"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/sessionstore"
	"github.com/jhoicas/supermarket-console/internal/interfaces/console"
	"github.com/jhoicas/supermarket-console/pkg/config"
	"github.com/jhoicas/supermarket-console/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return 2
	}

	log := logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.Console.LogLevel,
		Output: os.Stderr,
	}).Named("console")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openSessionStore(ctx, cfg.Console)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Console.SessionBackend).Msg("almacén de sesión")
		return 1
	}
	defer closeStore()

	guard := session.NewGuard(store, nil, session.WithLogger(log.Named("session")))
	router := console.NewRouter(guard)
	guard.SetNavigator(router)
	router.OnChange(func(route string) {
		log.Debug().Str("route", route).Msg("navegación")
	})

	client := apiclient.New(cfg.Console.APIBaseURL, guard,
		apiclient.WithTimeout(cfg.Console.RequestTimeout),
		apiclient.WithLogger(log.Named("apiclient")),
	)

	app := &console.App{
		Session:    guard,
		Router:     router,
		Auth:       apiclient.NewAuthClient(client),
		Categories: apiclient.NewCategoryClient(client),
		Products:   apiclient.NewProductClient(client),
		Report:     pdf.NewMarotoCatalogReport(),
		APIURL:     cfg.Console.APIBaseURL,
		ViewOptions: []console.ViewOption{
			console.WithCheckInterval(cfg.Console.SessionCheck),
			console.WithViewLogger(log),
		},
		Log: log,
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, console.ErrUsage) {
			return 2
		}
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}
	return 0
}

// openSessionStore elige el backend por CONSOLE_SESSION_BACKEND.
func openSessionStore(ctx context.Context, cfg config.ConsoleConfig) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := sessionstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return sessionstore.NewRedisStore(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil
	case config.SessionBackendMemory:
		return sessionstore.NewMemoryStore(), func() {}, nil
	default:
		return sessionstore.NewFileStore(cfg.SessionFile), func() {}, nil
	}
}
