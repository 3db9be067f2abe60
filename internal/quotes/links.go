package quotes

import (
	"fmt"
	"net/url"
	"strings"
)

// LinkConfig composes the shareable links a submission response and the
// rendered document both carry.
type LinkConfig struct {
	BaseURL        string
	WhatsAppNumber string
	WhatsAppID     string
}

func (c LinkConfig) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// ViewURL is the absolute address of the human-viewable quote page.
func (c LinkConfig) ViewURL(id uint) string {
	return fmt.Sprintf("%s/cotizacion/view/%d", c.base(), id)
}

// PDFURL is the relative download path for the rendered document.
func (c LinkConfig) PDFURL(id uint) string {
	return fmt.Sprintf("/api/quotes/%d/pdf", id)
}

// PDFPreviewURL is the absolute inline-viewable document address.
func (c LinkConfig) PDFPreviewURL(id uint) string {
	return fmt.Sprintf("%s/api/quotes/%d/pdf/preview", c.base(), id)
}

// WhatsAppLink builds a wa.me deep link whose pre-filled message points at
// the given quote URL.
func (c LinkConfig) WhatsAppLink(quoteURL string) string {
	message := fmt.Sprintf("Hola Frimousse, me interesa cotizar un pastel. Aquí está mi cotización: %s", quoteURL)
	return fmt.Sprintf("https://wa.me/%s?text=%s", c.WhatsAppID, url.QueryEscape(message))
}
