package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/frimousse/patisserie-backend/api/responses"
	"github.com/frimousse/patisserie-backend/api/validators"
	"github.com/frimousse/patisserie-backend/internal/quotes"
	"github.com/frimousse/patisserie-backend/internal/render"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
	"github.com/frimousse/patisserie-backend/pkg/logger"
)

// documentRenderer is the composition surface quote controllers need to
// turn a stored quote into a printable document.
type documentRenderer interface {
	Render(r *http.Request, view *quotes.ViewData) ([]byte, error)
}

func quoteIDParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quote id must be a positive integer")
	}
	return uint(id), nil
}

// CreateQuote accepts the multipart order form and runs the submission
// pipeline.
func CreateQuote(svc quotes.Service, logg *logger.Logger, maxFileBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := validators.DecodeQuoteForm(r, maxFileBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithQuoteID(r.Context(), result.Quote.ID)
			logg.Info(ctx, "quote.created")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// GetQuoteView returns the composed view payload with display number and
// shareable links. Both /quotes/{id} and /quotes/{id}/view serve it.
func GetQuoteView(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetView(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// QuotePDF renders the quote document and serves it as an attachment.
func QuotePDF(svc quotes.Service, renderer documentRenderer, logg *logger.Logger) http.HandlerFunc {
	return servePDF(svc, renderer, logg, "attachment")
}

// QuotePDFPreview renders the same document for inline browser viewing.
func QuotePDFPreview(svc quotes.Service, renderer documentRenderer, logg *logger.Logger) http.HandlerFunc {
	return servePDF(svc, renderer, logg, "inline")
}

func servePDF(svc quotes.Service, renderer documentRenderer, logg *logger.Logger, disposition string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetView(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pdf, err := renderer.Render(r, view)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("cotizacion-%s.pdf", view.QuoteNumber)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

// QuoteImages lists the reference images attached to a quote.
func QuoteImages(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ImagesInfo(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// QuoteImageDownload serves one reference image of a quote.
func QuoteImageDownload(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := chi.URLParam(r, "filename")
		file, err := svc.ImageDownload(r.Context(), id, filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := file.Info.OriginalName
		if name == "" {
			name = file.Info.Filename
		}
		w.Header().Set("Content-Type", file.Info.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(file.Data)
	}
}

// QuoteRenderer adapts the HTML builder and headless printer into the
// controller-facing surface.
type QuoteRenderer struct {
	Renderer *render.PDFRenderer
	LogoURL  string
	Links    quotes.LinkConfig
}

func (q QuoteRenderer) Render(r *http.Request, view *quotes.ViewData) ([]byte, error) {
	doc := render.Document{
		QuoteNumber:    view.QuoteNumber,
		LogoURL:        q.LogoURL,
		WhatsAppNumber: view.WhatsAppNumber,
		WhatsAppLink:   view.WhatsAppLink,
		PreviewURL:     q.Links.PDFPreviewURL(view.Quote.ID),

		FullName:    view.Quote.FullName,
		Contact:     view.Quote.Contact,
		SocialMedia: deref(view.Quote.SocialMedia),
		Guests:      view.Quote.Guests,

		CakeType:        view.Quote.CakeType,
		ThreeMilkFlavor: deref(view.Quote.ThreeMilkFlavor),
		BreadFlavor:     deref(view.Quote.BreadFlavor),
		FillingFlavor:   deref(view.Quote.FillingFlavor),
		PremiumCake:     deref(view.Quote.PremiumCake),
		DesignChanges:   deref(view.Quote.DesignChanges),

		Allergies:          view.Quote.Allergies,
		AllergyDescription: deref(view.Quote.AllergyDescription),

		DeliveryDate:        view.Quote.DeliveryDate,
		DeliveryTime:        view.Quote.DeliveryTime,
		DeliveryType:        view.Quote.DeliveryType,
		HomeDeliveryAddress: deref(view.Quote.HomeDeliveryAddress),
		Agreement:           view.Quote.Agreement,

		ImageURLs: absolutize(q.Links.BaseURL, view.Quote.ImageURLs),
	}
	return q.Renderer.Render(r.Context(), render.BuildHTML(doc))
}

// absolutize prefixes relative upload paths with the public base URL so the
// headless browser can fetch them while printing.
func absolutize(base string, urls []string) []string {
	base = strings.TrimRight(base, "/")
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.HasPrefix(u, "/") {
			u = base + u
		}
		out = append(out, u)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
