package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/frimousse/patisserie-backend/internal/quotes"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
)

func formRequest(t *testing.T, fields map[string]string, imageNames []string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, name := range imageNames {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("png bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func baseFields() map[string]string {
	return map[string]string{
		"fullName":     "Ana López",
		"contact":      "7711234567",
		"guests":       "15",
		"cakeType":     "custom",
		"breadFlavor":  "vainilla",
		"deliveryDate": time.Now().AddDate(0, 0, 3).Format(quotes.DateLayout),
		"deliveryTime": "12:30",
		"deliveryType": "home",
		"agreement":    "yes",
	}
}

func TestDecodeQuoteFormCoercion(t *testing.T) {
	fields := baseFields()
	fields["allergies"] = "TRUE"
	fields["allergyDescription"] = "nueces"

	input, err := DecodeQuoteForm(formRequest(t, fields, []string{"ref.png"}), 10<<20)
	if err != nil {
		t.Fatalf("DecodeQuoteForm: %v", err)
	}

	if !input.Agreement {
		t.Error("agreement 'yes' should coerce to true")
	}
	if !input.Allergies {
		t.Error("allergies 'TRUE' should coerce to true")
	}
	if input.Guests != 15 {
		t.Errorf("guests = %d", input.Guests)
	}
	if input.DeliveryDate.IsZero() {
		t.Error("delivery date not parsed")
	}
	if len(input.Images) != 1 || input.Images[0].OriginalName != "ref.png" {
		t.Errorf("images = %+v", input.Images)
	}
	if input.Images[0].ContentType != "image/png" {
		t.Errorf("image content type = %q", input.Images[0].ContentType)
	}
}

func TestDecodeQuoteFormMissingRequired(t *testing.T) {
	fields := baseFields()
	delete(fields, "contact")

	_, err := DecodeQuoteForm(formRequest(t, fields, nil), 10<<20)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details = %#v", typed.Details())
	}
	if _, present := details["contact"]; !present {
		t.Errorf("details = %v", details)
	}
}

func TestDecodeQuoteFormBadSelectors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"unknown cake type", "cakeType", "cupcake"},
		{"unknown delivery type", "deliveryType", "drone"},
		{"non-numeric guests", "guests", "many"},
		{"malformed date", "deliveryDate", "20-09-2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := baseFields()
			fields[tt.field] = tt.value

			_, err := DecodeQuoteForm(formRequest(t, fields, nil), 10<<20)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestDecodeQuoteFormRejectsOversizedImage(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range baseFields() {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="images"; filename="huge.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), 2048)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = DecodeQuoteForm(req, 1024)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !strings.Contains(typed.Message(), "huge.png") {
		t.Errorf("message %q does not name the offending file", typed.Message())
	}
}

func TestDecodeQuoteFormNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")

	_, err := DecodeQuoteForm(req, 10<<20)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}
