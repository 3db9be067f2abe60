package quotes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/frimousse/patisserie-backend/internal/media"
	"github.com/frimousse/patisserie-backend/pkg/db/models"
)

// Closed selector sets for the cake order form.
const (
	CakeTypeThreeMilk = "three_milk"
	CakeTypeCustom    = "custom"
	CakeTypePremium   = "premium"

	DeliveryTypePickup = "pickup"
	DeliveryTypeHome   = "home"
)

// DateLayout is how delivery dates travel over the wire.
const DateLayout = "2006-01-02"

// CreateQuoteInput is a coerced, well-typed submission payload.
type CreateQuoteInput struct {
	FullName    string
	Contact     string
	SocialMedia string
	Guests      int

	CakeType        string
	ThreeMilkFlavor string
	BreadFlavor     string
	FillingFlavor   string
	PremiumCake     string
	DesignChanges   string

	Allergies          bool
	AllergyDescription string

	DeliveryDate        time.Time
	DeliveryTime        string
	DeliveryType        string
	HomeDeliveryAddress string

	Agreement bool

	Images []media.Upload
}

// ParseFlexibleBool coerces the string-typed booleans the form posts;
// "true" and "yes" are accepted, everything else is false.
func ParseFlexibleBool(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "true" || v == "yes"
}

// QuoteDTO is the response shape for a persisted quote. The stored JSON
// image list is surfaced as a real array.
type QuoteDTO struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	FullName    string  `json:"fullName"`
	Contact     string  `json:"contact"`
	SocialMedia *string `json:"socialMedia"`
	Guests      int     `json:"guests"`

	CakeType        string  `json:"cakeType"`
	ThreeMilkFlavor *string `json:"threeMilkFlavor"`
	BreadFlavor     *string `json:"breadFlavor"`
	FillingFlavor   *string `json:"fillingFlavor"`
	PremiumCake     *string `json:"premiumCake"`
	DesignChanges   *string `json:"designChanges"`

	Allergies          bool    `json:"allergies"`
	AllergyDescription *string `json:"allergyDescription"`

	DeliveryDate        string  `json:"deliveryDate"`
	DeliveryTime        string  `json:"deliveryTime"`
	DeliveryType        string  `json:"deliveryType"`
	HomeDeliveryAddress *string `json:"homeDeliveryAddress"`

	Agreement bool     `json:"agreement"`
	ImageURLs []string `json:"imageUrls"`
}

// ToDTO converts a persisted row into its response shape.
func ToDTO(q *models.Quote) QuoteDTO {
	return QuoteDTO{
		ID:                  q.ID,
		CreatedAt:           q.CreatedAt,
		FullName:            q.FullName,
		Contact:             q.Contact,
		SocialMedia:         q.SocialMedia,
		Guests:              q.Guests,
		CakeType:            q.CakeType,
		ThreeMilkFlavor:     q.ThreeMilkFlavor,
		BreadFlavor:         q.BreadFlavor,
		FillingFlavor:       q.FillingFlavor,
		PremiumCake:         q.PremiumCake,
		DesignChanges:       q.DesignChanges,
		Allergies:           q.Allergies,
		AllergyDescription:  q.AllergyDescription,
		DeliveryDate:        q.DeliveryDate.Format(DateLayout),
		DeliveryTime:        q.DeliveryTime,
		DeliveryType:        q.DeliveryType,
		HomeDeliveryAddress: q.HomeDeliveryAddress,
		Agreement:           q.Agreement,
		ImageURLs:           ExtractImageURLs(q.ImageURLs),
	}
}

// ExtractImageURLs decodes the stored JSON list. A parse failure yields an
// empty list rather than an error so documents still render without images.
func ExtractImageURLs(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal([]byte(encoded), &urls); err != nil || urls == nil {
		return []string{}
	}
	return urls
}

// FilenamesFromURLs maps stored image URLs back to their generated names.
func FilenamesFromURLs(urls []string) []string {
	names := make([]string, 0, len(urls))
	for _, u := range urls {
		parts := strings.Split(u, "/")
		if name := parts[len(parts)-1]; name != "" {
			names = append(names, name)
		}
	}
	return names
}
