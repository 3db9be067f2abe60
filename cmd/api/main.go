package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/frimousse/patisserie-backend/api/controllers"
	"github.com/frimousse/patisserie-backend/api/routes"
	"github.com/frimousse/patisserie-backend/internal/media"
	"github.com/frimousse/patisserie-backend/internal/quotes"
	"github.com/frimousse/patisserie-backend/internal/render"
	"github.com/frimousse/patisserie-backend/pkg/config"
	"github.com/frimousse/patisserie-backend/pkg/db"
	"github.com/frimousse/patisserie-backend/pkg/logger"
	"github.com/frimousse/patisserie-backend/pkg/migrate"
	"github.com/frimousse/patisserie-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "quotes-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "quotes-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	store, uploadsDir, storagePinger, err := buildStore(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage backend", err)
		os.Exit(1)
	}

	validator := media.Validator{
		AllowedTypes: cfg.Upload.AllowedTypes,
		MaxFileBytes: cfg.Upload.MaxFileBytes(),
		MaxFiles:     cfg.Upload.MaxFiles,
	}

	links := quotes.LinkConfig{
		BaseURL:        cfg.App.BaseURL,
		WhatsAppNumber: cfg.Contact.WhatsAppNumber,
		WhatsAppID:     cfg.Contact.WhatsAppID,
	}

	quoteService, err := quotes.NewService(
		quotes.NewRepository(dbClient.DB()),
		store,
		validator,
		links,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	renderer := controllers.QuoteRenderer{
		Renderer: render.NewPDFRenderer(cfg.Render.ChromePath, cfg.Render.Timeout),
		LogoURL:  cfg.App.BaseURL + "/assets/img/frimousse-logo.png",
		Links:    links,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Backend,
	})
	logg.Info(ctx, "starting quotes api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Storage:    storagePinger,
			Quotes:     quoteService,
			Store:      store,
			Validator:  validator,
			Renderer:   renderer,
			UploadsDir: uploadsDir,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "quotes api stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildStore selects the configured storage backend. The second return is
// the local directory to serve statically, empty for remote backends; the
// third is a readiness pinger for remote backends.
func buildStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (media.Store, string, controllers.Pinger, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendGCS:
		client, err := gcs.NewClient(ctx, cfg.Storage.GCS, logg)
		if err != nil {
			return nil, "", nil, err
		}
		store, err := media.NewGCSStore(client, cfg.Storage.GCS.Folder)
		if err != nil {
			return nil, "", nil, err
		}
		return store, "", client, nil
	default:
		store, err := media.NewLocalStore(cfg.Storage.LocalDir, cfg.App.BaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		return store, store.Dir(), nil, nil
	}
}
