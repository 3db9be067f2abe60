package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frimousse/patisserie-backend/internal/media"
	"github.com/frimousse/patisserie-backend/pkg/db/models"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
	"gorm.io/gorm"
)

type quoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindByID(ctx context.Context, id uint) (*models.Quote, error)
}

// Service owns the submission pipeline and the read-side composition.
type Service interface {
	Submit(ctx context.Context, input CreateQuoteInput) (*SubmissionResult, error)
	GetByID(ctx context.Context, id uint) (*models.Quote, error)
	GetView(ctx context.Context, id uint) (*ViewData, error)
	ImagesInfo(ctx context.Context, id uint) (*ImagesResult, error)
	ImageDownload(ctx context.Context, id uint, filename string) (*media.File, error)
}

type service struct {
	repo      quoteRepository
	store     media.Store
	validator media.Validator
	links     LinkConfig
}

// NewService wires the quote pipeline together.
func NewService(repo quoteRepository, store media.Store, validator media.Validator, links LinkConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("media store required")
	}
	return &service{repo: repo, store: store, validator: validator, links: links}, nil
}

// Banner is the visual confirmation block the frontend renders after a
// successful submission.
type Banner struct {
	Logo         string `json:"logo"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsappLink"`
	ViewURL      string `json:"viewUrl"`
	Brand        string `json:"brand"`
}

// SubmissionResult is the payload returned after creating a quote.
type SubmissionResult struct {
	QuoteNumber    string   `json:"quoteNumber"`
	WhatsAppNumber string   `json:"whatsappNumber"`
	ViewURL        string   `json:"viewUrl"`
	PDFURL         string   `json:"pdfUrl"`
	Quote          QuoteDTO `json:"quote"`
	Banner         Banner   `json:"banner"`
}

// ViewData is the read-side envelope for a single quote.
type ViewData struct {
	Quote          QuoteDTO `json:"quote"`
	QuoteNumber    string   `json:"quoteNumber"`
	WhatsAppNumber string   `json:"whatsappNumber"`
	WhatsAppLink   string   `json:"whatsappLink"`
	ViewURL        string   `json:"viewUrl"`
}

// ImageEntry describes one stored reference image of a quote.
type ImageEntry struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	DownloadURL  string `json:"downloadUrl"`
	Size         int64  `json:"size"`
	ContentType  string `json:"mimetype"`
}

// ImagesResult lists the reference images attached to a quote.
type ImagesResult struct {
	QuoteID     uint         `json:"quoteId"`
	TotalImages int          `json:"totalImages"`
	Images      []ImageEntry `json:"images"`
}

// Submit runs the full ingestion pipeline: conditional validation, batch
// image screening, storage writes, then the record insert. Validation and
// image screening happen before any write; storage must complete for every
// file before the insert is attempted, so a failure never leaves a partial
// quote behind.
func (s *service) Submit(ctx context.Context, input CreateQuoteInput) (*SubmissionResult, error) {
	normalized, err := normalize(input)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateBatch(normalized.Images); err != nil {
		return nil, err
	}

	imageURLs := make([]string, 0, len(normalized.Images))
	for _, img := range normalized.Images {
		stored, err := s.store.Store(ctx, img)
		if err != nil {
			return nil, err
		}
		imageURLs = append(imageURLs, stored.URL)
	}

	encoded, err := json.Marshal(imageURLs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding image urls")
	}

	row := toModel(normalized, string(encoded))
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating quote")
	}

	number := Number(created.CreatedAt, created.ID)
	viewURL := s.links.ViewURL(created.ID)
	whatsappLink := s.links.WhatsAppLink(viewURL)

	return &SubmissionResult{
		QuoteNumber:    number,
		WhatsAppNumber: s.links.WhatsAppNumber,
		ViewURL:        viewURL,
		PDFURL:         s.links.PDFURL(created.ID),
		Quote:          ToDTO(created),
		Banner: Banner{
			Logo:         "/assets/img/frimousse-logo.png",
			Title:        "¡Cotización enviada!",
			Subtitle:     "Tu cotización está lista",
			Message:      "Puedes ver tu cotización en línea o contactarnos por WhatsApp para recibir tu precio final.",
			WhatsAppLink: whatsappLink,
			ViewURL:      viewURL,
			Brand:        "Frimousse Pâtisserie · Cotización generada automáticamente",
		},
	}, nil
}

// GetByID loads a quote. A zero id is rejected before any lookup.
func (s *service) GetByID(ctx context.Context, id uint) (*models.Quote, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id must be a positive integer")
	}

	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("quote %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading quote")
	}
	return quote, nil
}

// GetView composes the read-side envelope: the quote, its display number and
// its shareable links.
func (s *service) GetView(ctx context.Context, id uint) (*ViewData, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	viewURL := s.links.ViewURL(quote.ID)

	return &ViewData{
		Quote:          ToDTO(quote),
		QuoteNumber:    Number(quote.CreatedAt, quote.ID),
		WhatsAppNumber: s.links.WhatsAppNumber,
		WhatsAppLink:   s.links.WhatsAppLink(viewURL),
		ViewURL:        viewURL,
	}, nil
}

// ImagesInfo resolves each stored image URL of a quote into live metadata.
// Images whose binaries have gone missing are skipped, not fatal.
func (s *service) ImagesInfo(ctx context.Context, id uint) (*ImagesResult, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	filenames := FilenamesFromURLs(ExtractImageURLs(quote.ImageURLs))
	entries := make([]ImageEntry, 0, len(filenames))
	for _, name := range filenames {
		file, err := s.store.Retrieve(ctx, name)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return nil, err
		}
		entries = append(entries, ImageEntry{
			Filename:     file.Info.Filename,
			OriginalName: file.Info.OriginalName,
			URL:          file.Info.URL,
			DownloadURL:  fmt.Sprintf("/api/quotes/%d/images/%s/download", quote.ID, file.Info.Filename),
			Size:         file.Info.Size,
			ContentType:  file.Info.ContentType,
		})
	}

	return &ImagesResult{
		QuoteID:     quote.ID,
		TotalImages: len(entries),
		Images:      entries,
	}, nil
}

// ImageDownload serves one stored image, but only when it belongs to the
// requested quote.
func (s *service) ImageDownload(ctx context.Context, id uint, filename string) (*media.File, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	filenames := FilenamesFromURLs(ExtractImageURLs(quote.ImageURLs))
	owned := false
	for _, name := range filenames {
		if name == filename {
			owned = true
			break
		}
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image does not belong to this quote")
	}

	return s.store.Retrieve(ctx, filename)
}

// normalize enforces the conditional invariants and clears fields the
// selected options make irrelevant.
func normalize(input CreateQuoteInput) (CreateQuoteInput, error) {
	details := map[string]string{}

	if strings.TrimSpace(input.FullName) == "" {
		details["fullName"] = "is required"
	}
	if strings.TrimSpace(input.Contact) == "" {
		details["contact"] = "is required"
	}
	if input.Guests <= 0 {
		details["guests"] = "must be a positive integer"
	}
	if !input.Agreement {
		details["agreement"] = "terms must be accepted"
	}
	if strings.TrimSpace(input.DeliveryTime) == "" {
		details["deliveryTime"] = "is required"
	}

	switch input.CakeType {
	case CakeTypeThreeMilk:
		if strings.TrimSpace(input.ThreeMilkFlavor) == "" {
			details["threeMilkFlavor"] = "is required for three-milk cakes"
		}
		input.BreadFlavor, input.FillingFlavor, input.PremiumCake = "", "", ""
	case CakeTypeCustom:
		if strings.TrimSpace(input.BreadFlavor) == "" {
			details["breadFlavor"] = "is required for custom cakes"
		}
		if strings.TrimSpace(input.FillingFlavor) == "" {
			details["fillingFlavor"] = "is required for custom cakes"
		}
		input.ThreeMilkFlavor, input.PremiumCake = "", ""
	case CakeTypePremium:
		if strings.TrimSpace(input.PremiumCake) == "" {
			details["premiumCake"] = "is required for premium cakes"
		}
		input.ThreeMilkFlavor, input.BreadFlavor, input.FillingFlavor = "", "", ""
	default:
		details["cakeType"] = "must be one of three_milk, custom, premium"
	}

	if input.Allergies {
		if strings.TrimSpace(input.AllergyDescription) == "" {
			details["allergyDescription"] = "is required when allergies are reported"
		}
	} else {
		input.AllergyDescription = ""
	}

	switch input.DeliveryType {
	case DeliveryTypeHome:
		if strings.TrimSpace(input.HomeDeliveryAddress) == "" {
			details["homeDeliveryAddress"] = "is required for home delivery"
		}
	case DeliveryTypePickup:
		input.HomeDeliveryAddress = ""
	default:
		details["deliveryType"] = "must be pickup or home"
	}

	if input.DeliveryDate.IsZero() {
		details["deliveryDate"] = "is required"
	} else {
		// Parsed delivery dates sit at UTC midnight, so the server's
		// calendar date is rebuilt in UTC before comparing.
		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if input.DeliveryDate.Before(today) {
			details["deliveryDate"] = "must not be in the past"
		}
	}

	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return input, nil
}

func toModel(input CreateQuoteInput, encodedURLs string) *models.Quote {
	return &models.Quote{
		FullName:            strings.TrimSpace(input.FullName),
		Contact:             strings.TrimSpace(input.Contact),
		SocialMedia:         optional(input.SocialMedia),
		Guests:              input.Guests,
		CakeType:            input.CakeType,
		ThreeMilkFlavor:     optional(input.ThreeMilkFlavor),
		BreadFlavor:         optional(input.BreadFlavor),
		FillingFlavor:       optional(input.FillingFlavor),
		PremiumCake:         optional(input.PremiumCake),
		DesignChanges:       optional(input.DesignChanges),
		Allergies:           input.Allergies,
		AllergyDescription:  optional(input.AllergyDescription),
		DeliveryDate:        input.DeliveryDate,
		DeliveryTime:        strings.TrimSpace(input.DeliveryTime),
		DeliveryType:        input.DeliveryType,
		HomeDeliveryAddress: optional(input.HomeDeliveryAddress),
		Agreement:           input.Agreement,
		ImageURLs:           encodedURLs,
	}
}

func optional(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
