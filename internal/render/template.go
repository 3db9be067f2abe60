package render

import (
	_ "embed"
	"fmt"
	"html"
	"regexp"
	"strings"
)

//go:embed templates/pdf-template.html
var templateHTML string

//go:embed templates/pdf-template.css
var templateCSS string

// Document carries everything the quote template needs, already formatted
// for display. Optional fields arrive as empty strings and render as "-".
type Document struct {
	QuoteNumber    string
	LogoURL        string
	WhatsAppNumber string
	WhatsAppLink   string
	PreviewURL     string

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

	DeliveryDate        string
	DeliveryTime        string
	DeliveryType        string
	HomeDeliveryAddress string
	Agreement           bool

	ImageURLs []string
}

var eachBlocks = map[string]*regexp.Regexp{
	"clienteRows": regexp.MustCompile(`{{#each clienteRows}}[\s\S]*?{{/each}}`),
	"pastelRows":  regexp.MustCompile(`{{#each pastelRows}}[\s\S]*?{{/each}}`),
	"entregaRows": regexp.MustCompile(`{{#each entregaRows}}[\s\S]*?{{/each}}`),
	"imageUrls":   regexp.MustCompile(`{{#each imageUrls}}[\s\S]*?{{/each}}`),
}

// BuildHTML expands the embedded template into a standalone HTML document
// with the stylesheet inlined, ready for headless printing.
func BuildHTML(doc Document) string {
	out := templateHTML
	out = strings.ReplaceAll(out, "{{logoPath}}", doc.LogoURL)
	out = strings.ReplaceAll(out, "{{quoteNumber}}", doc.QuoteNumber)
	out = strings.ReplaceAll(out, "{{whatsappNumber}}", doc.WhatsAppNumber)
	out = strings.ReplaceAll(out, "{{whatsappLink}}", doc.WhatsAppLink)
	out = strings.ReplaceAll(out, "{{previewUrl}}", doc.PreviewURL)

	out = eachBlocks["clienteRows"].ReplaceAllLiteralString(out, renderRows([][2]string{
		{"Nombre", doc.FullName},
		{"Contacto", doc.Contact},
		{"Redes sociales", doc.SocialMedia},
		{"Invitados", fmt.Sprintf("%d", doc.Guests)},
	}))
	out = eachBlocks["pastelRows"].ReplaceAllLiteralString(out, renderRows([][2]string{
		{"Tipo de pastel", doc.CakeType},
		{"Sabor 3 leches", doc.ThreeMilkFlavor},
		{"Sabor de pan", doc.BreadFlavor},
		{"Sabor de relleno", doc.FillingFlavor},
		{"Pastel premium", doc.PremiumCake},
		{"Cambios al diseño", doc.DesignChanges},
	}))
	out = eachBlocks["entregaRows"].ReplaceAllLiteralString(out, renderRows([][2]string{
		{"Alergias", yesNo(doc.Allergies)},
		{"Descripción de alergias", doc.AllergyDescription},
		{"Fecha de entrega", doc.DeliveryDate},
		{"Horario de entrega", doc.DeliveryTime},
		{"Tipo de entrega", doc.DeliveryType},
		{"Dirección de entrega", doc.HomeDeliveryAddress},
		{"Aceptó términos", yesNo(doc.Agreement)},
	}))

	images := make([]string, 0, len(doc.ImageURLs))
	for _, u := range doc.ImageURLs {
		images = append(images, fmt.Sprintf(`<img src="%s" class="ref-image" width="200" height="150">`, html.EscapeString(u)))
	}
	out = eachBlocks["imageUrls"].ReplaceAllLiteralString(out, strings.Join(images, ""))

	return strings.Replace(out, "</head>", "<style>"+templateCSS+"</style></head>", 1)
}

func renderRows(rows [][2]string) string {
	var b strings.Builder
	for _, row := range rows {
		value := row[1]
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		fmt.Fprintf(&b, `<tr><td style="color:rgb(72,66,68);">%s</td><td style="color:rgb(72,66,68);">%s</td></tr>`, row[0], html.EscapeString(value))
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
