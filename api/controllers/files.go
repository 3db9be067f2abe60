package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/frimousse/patisserie-backend/api/responses"
	"github.com/frimousse/patisserie-backend/internal/media"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
	"github.com/frimousse/patisserie-backend/pkg/logger"
)

// UploadFiles stores every part posted under "files". When validator is
// non-nil the whole batch is screened before anything is written.
func UploadFiles(store media.Store, validator *media.Validator, logg *logger.Logger, maxFileBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploads, err := readFileParts(r, maxFileBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(uploads) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no files provided"))
			return
		}

		if validator != nil {
			if err := validator.ValidateBatch(uploads); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		stored := make([]media.StoredFile, 0, len(uploads))
		for _, up := range uploads {
			file, err := store.Store(r.Context(), up)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			stored = append(stored, *file)
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": fmt.Sprintf("%d file(s) uploaded successfully", len(stored)),
			"files":   stored,
		})
	}
}

// ListFiles enumerates stored files. imagesOnly restricts the listing to
// image content types.
func ListFiles(store media.Store, logg *logger.Logger, imagesOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := store.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if imagesOnly {
			filtered := make([]media.FileInfo, 0, len(files))
			for _, f := range files {
				if strings.HasPrefix(f.ContentType, "image/") {
					filtered = append(filtered, f)
				}
			}
			files = filtered
		}

		responses.WriteSuccess(w, files)
	}
}

// FileInfo returns stored metadata for one file.
func FileInfo(store media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		file, err := store.Retrieve(r.Context(), filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, file.Info)
	}
}

// DownloadFile serves one stored file as an attachment.
func DownloadFile(store media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		file, err := store.Retrieve(r.Context(), filename)
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

// DeleteFile removes one stored file.
func DeleteFile(store media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		deleted, err := store.Remove(r.Context(), filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !deleted {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
			return
		}

		if logg != nil {
			ctx := logg.WithFilename(r.Context(), filename)
			logg.Info(ctx, "file.deleted")
		}

		responses.WriteSuccess(w, map[string]string{"message": "File deleted successfully"})
	}
}

// readFileParts drains the "files" parts, rejecting any whose declared
// size exceeds maxFileBytes before its bytes are read.
func readFileParts(r *http.Request, maxFileBytes int64) ([]media.Upload, error) {
	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]media.Upload, 0, len(headers))
	for _, header := range headers {
		if maxFileBytes > 0 && header.Size > maxFileBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("files exceed the %d byte limit: %s", maxFileBytes, header.Filename))
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
