package validators

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frimousse/patisserie-backend/internal/media"
	"github.com/frimousse/patisserie-backend/internal/quotes"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
)

// quoteForm mirrors the multipart field names the order form posts.
// Booleans arrive as strings and are coerced leniently.
type quoteForm struct {
	FullName            string `form:"fullName" validate:"required"`
	Contact             string `form:"contact" validate:"required"`
	SocialMedia         string `form:"socialMedia"`
	Guests              string `form:"guests" validate:"required"`
	CakeType            string `form:"cakeType" validate:"required,oneof=three_milk custom premium"`
	ThreeMilkFlavor     string `form:"threeMilkFlavor"`
	BreadFlavor         string `form:"breadFlavor"`
	FillingFlavor       string `form:"fillingFlavor"`
	PremiumCake         string `form:"premiumCake"`
	DesignChanges       string `form:"designChanges"`
	Allergies           string `form:"allergies"`
	AllergyDescription  string `form:"allergyDescription"`
	DeliveryDate        string `form:"deliveryDate" validate:"required"`
	DeliveryTime        string `form:"deliveryTime" validate:"required"`
	DeliveryType        string `form:"deliveryType" validate:"required,oneof=pickup home"`
	HomeDeliveryAddress string `form:"homeDeliveryAddress"`
	Agreement           string `form:"agreement" validate:"required"`
}

// DecodeQuoteForm parses a multipart quote submission into a typed input.
// maxFileBytes bounds both the in-memory portion of the form parse and the
// declared size of each file part; oversized parts are rejected before any
// bytes are read into memory.
func DecodeQuoteForm(r *http.Request, maxFileBytes int64) (quotes.CreateQuoteInput, error) {
	var input quotes.CreateQuoteInput

	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	form := quoteForm{
		FullName:            r.FormValue("fullName"),
		Contact:             r.FormValue("contact"),
		SocialMedia:         r.FormValue("socialMedia"),
		Guests:              r.FormValue("guests"),
		CakeType:            r.FormValue("cakeType"),
		ThreeMilkFlavor:     r.FormValue("threeMilkFlavor"),
		BreadFlavor:         r.FormValue("breadFlavor"),
		FillingFlavor:       r.FormValue("fillingFlavor"),
		PremiumCake:         r.FormValue("premiumCake"),
		DesignChanges:       r.FormValue("designChanges"),
		Allergies:           r.FormValue("allergies"),
		AllergyDescription:  r.FormValue("allergyDescription"),
		DeliveryDate:        r.FormValue("deliveryDate"),
		DeliveryTime:        r.FormValue("deliveryTime"),
		DeliveryType:        r.FormValue("deliveryType"),
		HomeDeliveryAddress: r.FormValue("homeDeliveryAddress"),
		Agreement:           r.FormValue("agreement"),
	}

	if err := validate.Struct(form); err != nil {
		return input, formatValidationErrors(err)
	}

	guests, err := strconv.Atoi(strings.TrimSpace(form.Guests))
	if err != nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"guests": "must be an integer"})
	}

	deliveryDate, err := time.Parse(quotes.DateLayout, strings.TrimSpace(form.DeliveryDate))
	if err != nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"deliveryDate": "must be formatted YYYY-MM-DD"})
	}

	images, err := readImageParts(r, maxFileBytes)
	if err != nil {
		return input, err
	}

	input = quotes.CreateQuoteInput{
		FullName:            form.FullName,
		Contact:             form.Contact,
		SocialMedia:         form.SocialMedia,
		Guests:              guests,
		CakeType:            form.CakeType,
		ThreeMilkFlavor:     form.ThreeMilkFlavor,
		BreadFlavor:         form.BreadFlavor,
		FillingFlavor:       form.FillingFlavor,
		PremiumCake:         form.PremiumCake,
		DesignChanges:       form.DesignChanges,
		Allergies:           quotes.ParseFlexibleBool(form.Allergies),
		AllergyDescription:  form.AllergyDescription,
		DeliveryDate:        deliveryDate,
		DeliveryTime:        form.DeliveryTime,
		DeliveryType:        form.DeliveryType,
		HomeDeliveryAddress: form.HomeDeliveryAddress,
		Agreement:           quotes.ParseFlexibleBool(form.Agreement),
		Images:              images,
	}
	return input, nil
}

// readImageParts drains every part posted under the "images" field.
// Parts whose declared size exceeds maxBytes are rejected unread.
func readImageParts(r *http.Request, maxBytes int64) ([]media.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["images"]
	uploads := make([]media.Upload, 0, len(headers))
	for _, header := range headers {
		if maxBytes > 0 && header.Size > maxBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("files exceed the %d byte limit: %s", maxBytes, header.Filename))
		}
		part, err := header.Open()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "opening uploaded file")
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
		}
		uploads = append(uploads, media.Upload{
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Data:         data,
		})
	}
	return uploads, nil
}
