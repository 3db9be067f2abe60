package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frimousse/patisserie-backend/api/controllers"
	"github.com/frimousse/patisserie-backend/api/middleware"
	"github.com/frimousse/patisserie-backend/internal/media"
	"github.com/frimousse/patisserie-backend/internal/quotes"
	"github.com/frimousse/patisserie-backend/pkg/config"
	"github.com/frimousse/patisserie-backend/pkg/db"
	"github.com/frimousse/patisserie-backend/pkg/logger"
	"github.com/frimousse/patisserie-backend/web"
)

// Deps bundles everything the HTTP surface is wired from.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Storage   controllers.Pinger
	Quotes    quotes.Service
	Store     media.Store
	Validator media.Validator
	Renderer  controllers.QuoteRenderer

	// UploadsDir serves /uploads/* from disk when the local backend is
	// active. Empty disables the static mount.
	UploadsDir string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(d.Config.App.CORSOrigins),
	)

	maxFileBytes := d.Config.Upload.MaxFileBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB, d.Storage))
	})

	r.Route("/api/quotes", func(r chi.Router) {
		r.Post("/", controllers.CreateQuote(d.Quotes, d.Logger, maxFileBytes))
		r.Get("/{id}", controllers.GetQuoteView(d.Quotes, d.Logger))
		r.Get("/{id}/view", controllers.GetQuoteView(d.Quotes, d.Logger))
		r.Get("/{id}/pdf", controllers.QuotePDF(d.Quotes, d.Renderer, d.Logger))
		r.Get("/{id}/pdf/preview", controllers.QuotePDFPreview(d.Quotes, d.Renderer, d.Logger))
		r.Get("/{id}/images", controllers.QuoteImages(d.Quotes, d.Logger))
		r.Get("/{id}/images/{filename}/download", controllers.QuoteImageDownload(d.Quotes, d.Logger))
	})

	validator := d.Validator

	r.Route("/api/files", func(r chi.Router) {
		r.Post("/upload", controllers.UploadFiles(d.Store, nil, d.Logger, maxFileBytes))
		r.Get("/", controllers.ListFiles(d.Store, d.Logger, false))
		r.Get("/{filename}/info", controllers.FileInfo(d.Store, d.Logger))
		r.Get("/{filename}/download", controllers.DownloadFile(d.Store, d.Logger))
		r.Delete("/{filename}", controllers.DeleteFile(d.Store, d.Logger))
	})

	r.Route("/api/images", func(r chi.Router) {
		r.Post("/upload", controllers.UploadFiles(d.Store, &validator, d.Logger, maxFileBytes))
		r.Get("/", controllers.ListFiles(d.Store, d.Logger, true))
		r.Get("/{filename}/info", controllers.FileInfo(d.Store, d.Logger))
		r.Get("/{filename}/download", controllers.DownloadFile(d.Store, d.Logger))
		r.Delete("/{filename}", controllers.DeleteFile(d.Store, d.Logger))
	})

	r.Get("/cotizacion/view/{id}", web.ViewShell())

	if d.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
			fs.ServeHTTP(w, req)
		})
	}

	return r
}
