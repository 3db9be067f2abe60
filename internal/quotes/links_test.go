package quotes

import (
	"net/url"
	"strings"
	"testing"
)

func TestLinkConfigURLs(t *testing.T) {
	links := LinkConfig{
		BaseURL:        "https://quotes.example.com/",
		WhatsAppNumber: "+52 771-722-7089",
		WhatsAppID:     "527717227089",
	}

	if got := links.ViewURL(12); got != "https://quotes.example.com/cotizacion/view/12" {
		t.Errorf("ViewURL = %q", got)
	}
	if got := links.PDFURL(12); got != "/api/quotes/12/pdf" {
		t.Errorf("PDFURL = %q", got)
	}
	if got := links.PDFPreviewURL(12); got != "https://quotes.example.com/api/quotes/12/pdf/preview" {
		t.Errorf("PDFPreviewURL = %q", got)
	}
}

func TestWhatsAppLink(t *testing.T) {
	links := LinkConfig{WhatsAppID: "527717227089"}
	link := links.WhatsAppLink("https://quotes.example.com/cotizacion/view/12")

	if !strings.HasPrefix(link, "https://wa.me/527717227089?text=") {
		t.Fatalf("link = %q", link)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parsing link: %v", err)
	}
	text := parsed.Query().Get("text")
	if !strings.Contains(text, "Hola Frimousse") {
		t.Errorf("pre-filled text = %q", text)
	}
	if !strings.HasSuffix(text, "https://quotes.example.com/cotizacion/view/12") {
		t.Errorf("text missing quote url: %q", text)
	}
}
