package media

import (
	"fmt"
	"strings"

	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
)

// Validator screens an upload batch before any storage write happens.
// A single bad file fails the whole batch so submissions are all-or-nothing.
type Validator struct {
	AllowedTypes []string
	MaxFileBytes int64
	MaxFiles     int
}

// ValidateBatch returns a validation error naming every offending file, or
// nil when the whole batch may be stored.
func (v Validator) ValidateBatch(files []Upload) error {
	if v.MaxFiles > 0 && len(files) > v.MaxFiles {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("too many files: %d exceeds the limit of %d", len(files), v.MaxFiles))
	}

	var badType, tooBig []string
	for _, f := range files {
		if !v.typeAllowed(f.ContentType) {
			badType = append(badType, f.OriginalName)
		}
		if v.MaxFileBytes > 0 && int64(len(f.Data)) > v.MaxFileBytes {
			tooBig = append(tooBig, f.OriginalName)
		}
	}

	if len(badType) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid image files detected: %s (allowed types: %s)",
				strings.Join(badType, ", "), strings.Join(v.AllowedTypes, ", ")))
	}
	if len(tooBig) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("files exceed the %d byte limit: %s", v.MaxFileBytes, strings.Join(tooBig, ", ")))
	}
	return nil
}

func (v Validator) typeAllowed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range v.AllowedTypes {
		if ct == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
