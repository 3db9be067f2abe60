package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/frimousse/patisserie-backend/internal/media"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
)

type stubMediaStore struct {
	stored  []media.Upload
	files   map[string]*media.File
	listing []media.FileInfo
	removed map[string]bool
}

func (s *stubMediaStore) Store(_ context.Context, up media.Upload) (*media.StoredFile, error) {
	s.stored = append(s.stored, up)
	return &media.StoredFile{
		Filename:     up.OriginalName,
		OriginalName: up.OriginalName,
		URL:          "/uploads/" + up.OriginalName,
		Size:         int64(len(up.Data)),
		ContentType:  up.ContentType,
	}, nil
}

func (s *stubMediaStore) Retrieve(_ context.Context, filename string) (*media.File, error) {
	file, ok := s.files[filename]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	return file, nil
}

func (s *stubMediaStore) Remove(_ context.Context, filename string) (bool, error) {
	return s.removed[filename], nil
}

func (s *stubMediaStore) List(_ context.Context) ([]media.FileInfo, error) {
	return s.listing, nil
}

func filesUploadRequest(t *testing.T, names []string, contentType string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range names {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("payload")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadFilesSuccess(t *testing.T) {
	store := &stubMediaStore{}
	handler := UploadFiles(store, nil, nil, 10<<20)

	req := filesUploadRequest(t, []string{"a.pdf", "b.txt"}, "application/octet-stream")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.stored) != 2 {
		t.Fatalf("stored %d files, want 2", len(store.stored))
	}

	var envelope struct {
		Data struct {
			Message string             `json:"message"`
			Files   []media.StoredFile `json:"files"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Message != "2 file(s) uploaded successfully" {
		t.Errorf("message = %q", envelope.Data.Message)
	}
}

func TestUploadFilesEmpty(t *testing.T) {
	handler := UploadFiles(&stubMediaStore{}, nil, nil, 10<<20)

	req := filesUploadRequest(t, nil, "")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUploadFilesValidatorRejectsBatch(t *testing.T) {
	store := &stubMediaStore{}
	validator := &media.Validator{
		AllowedTypes: []string{"image/jpeg"},
		MaxFileBytes: 1 << 20,
		MaxFiles:     5,
	}
	handler := UploadFiles(store, validator, nil, 10<<20)

	req := filesUploadRequest(t, []string{"doc.pdf"}, "application/pdf")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(store.stored) != 0 {
		t.Error("files stored despite rejected batch")
	}
}

func TestUploadFilesRejectsOversizedPart(t *testing.T) {
	store := &stubMediaStore{}
	handler := UploadFiles(store, nil, nil, 512)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="files"; filename="huge.bin"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), 1024)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.stored) != 0 {
		t.Error("oversized file reached the store")
	}
}

func TestListFilesImagesOnly(t *testing.T) {
	store := &stubMediaStore{listing: []media.FileInfo{
		{Filename: "a.jpg", ContentType: "image/jpeg"},
		{Filename: "b.pdf", ContentType: "application/pdf"},
	}}
	handler := ListFiles(store, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var envelope struct {
		Data []media.FileInfo `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Filename != "a.jpg" {
		t.Errorf("filtered listing = %+v", envelope.Data)
	}
}

func TestDeleteFileNotFound(t *testing.T) {
	handler := DeleteFile(&stubMediaStore{removed: map[string]bool{}}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/files/gone.jpg", nil), "filename", "gone.jpg")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestDeleteFileSuccess(t *testing.T) {
	handler := DeleteFile(&stubMediaStore{removed: map[string]bool{"old.jpg": true}}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/files/old.jpg", nil), "filename", "old.jpg")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestFileInfoReturnsMetadata(t *testing.T) {
	store := &stubMediaStore{files: map[string]*media.File{
		"abc.jpg": {
			Info: media.FileInfo{Filename: "abc.jpg", OriginalName: "cake.jpg", Size: 3, ContentType: "image/jpeg"},
			Data: []byte("img"),
		},
	}}
	handler := FileInfo(store, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/files/abc.jpg/info", nil), "filename", "abc.jpg")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data media.FileInfo `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OriginalName != "cake.jpg" {
		t.Errorf("info = %+v", envelope.Data)
	}
}
