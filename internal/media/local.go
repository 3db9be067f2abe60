package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
	"github.com/google/uuid"
)

// URLPrefix is the static-serving prefix local file URLs are rooted at.
const URLPrefix = "/uploads"

// LocalStore writes binaries to a private directory and serves them through
// the static uploads mount.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore ensures the uploads directory exists up front so a bad path
// is a startup failure, not a per-request one.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory local files live under.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Store(_ context.Context, up Upload) (*StoredFile, error) {
	if len(up.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	// Random names make concurrent writes collision-free.
	filename := uuid.NewString() + strings.ToLower(filepath.Ext(up.OriginalName))
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, up.Data, 0o644); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "writing file")
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	return &StoredFile{
		Filename:     filename,
		OriginalName: up.OriginalName,
		URL:          s.urlFor(filename),
		Size:         int64(len(up.Data)),
		ContentType:  contentType,
	}, nil
}

func (s *LocalStore) Retrieve(_ context.Context, filename string) (*File, error) {
	path, err := s.safePath(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reading file")
	}

	return &File{
		Info: FileInfo{
			Filename:     filename,
			OriginalName: filename,
			URL:          s.urlFor(filename),
			Size:         int64(len(data)),
			ContentType:  contentTypeFor(filename),
		},
		Data: data,
	}, nil
}

// Remove is idempotent: deleting an absent file reports false, never an error.
func (s *LocalStore) Remove(_ context.Context, filename string) (bool, error) {
	path, err := s.safePath(filename)
	if err != nil {
		return false, err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "deleting file")
	}
	return true, nil
}

func (s *LocalStore) List(_ context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing files")
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		name := entry.Name()
		infos = append(infos, FileInfo{
			Filename:     name,
			OriginalName: name,
			URL:          s.urlFor(name),
			Size:         stat.Size(),
			ContentType:  contentTypeFor(name),
		})
	}
	return infos, nil
}

func (s *LocalStore) urlFor(filename string) string {
	return s.baseURL + URLPrefix + "/" + filename
}

// safePath rejects anything that would escape the uploads directory.
func (s *LocalStore) safePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid filename")
	}
	return filepath.Join(s.dir, filename), nil
}
