package media

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
)

// Upload is an in-memory binary handed to a Store.
type Upload struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// StoredFile is the stable reference a backend returns after a write.
type StoredFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"mimetype"`
}

// FileInfo describes a stored binary without its payload.
type FileInfo struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"mimetype"`
}

// File bundles metadata with the payload for downloads.
type File struct {
	Info FileInfo
	Data []byte
}

// Store abstracts binary storage. The local-disk and object-store
// implementations are interchangeable; the active one is chosen by
// configuration at startup and callers never inspect which is in play.
type Store interface {
	Store(ctx context.Context, up Upload) (*StoredFile, error)
	Retrieve(ctx context.Context, filename string) (*File, error)
	Remove(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context) ([]FileInfo, error)
}

var mimetypesByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
}

// contentTypeFor guesses a content type from the filename extension,
// falling back to octet-stream for anything unknown.
func contentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := mimetypesByExtension[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
