package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeStorage, status: http.StatusInternalServerError, publicMsg: "file storage failed", retryable: true},
		{code: CodeRender, status: http.StatusInternalServerError, publicMsg: "document rendering failed", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeStorage, cause, "writing upload")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeStorage {
		t.Fatalf("expected storage code, got %s", err.Code())
	}
	if err.Error() != "STORAGE_ERROR: writing upload" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeNotFound, "quote 42 not found")
	wrapped := Wrap(CodeInternal, inner, "loading quote")

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("expected outermost code, got %s", typed.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"guests": "must be positive"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["guests"] != "must be positive" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23502",
		Message:        "null value in column",
		Detail:         "Failing row contains (null).",
		TableName:      "quotes",
		ColumnName:     "full_name",
		ConstraintName: "quotes_full_name_check",
	}
	err := Wrap(CodeDependency, fmt.Errorf("creating quote: %w", pgErr), "persisting quote")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if dump.PGCode != "23502" {
		t.Fatalf("unexpected pg code %q", dump.PGCode)
	}
	if dump.PGTable != "quotes" || dump.PGColumn != "full_name" {
		t.Fatalf("unexpected pg table/column %q/%q", dump.PGTable, dump.PGColumn)
	}
	if dump.PGConstraint != "quotes_full_name_check" {
		t.Fatalf("unexpected pg constraint %q", dump.PGConstraint)
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("expected full unwrap chain, got %v", dump.Chain)
	}
}

func TestDumpNilError(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || dump.Code != "" {
		t.Fatalf("expected zero dump for nil error, got %+v", dump)
	}
}
