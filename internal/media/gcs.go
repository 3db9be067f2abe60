package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
	"github.com/frimousse/patisserie-backend/pkg/storage/gcs"
	"github.com/google/uuid"
)

// objectClient is the slice of the GCS client this store needs.
type objectClient interface {
	UploadObject(ctx context.Context, name, contentType string, data []byte) (string, error)
	DownloadObject(ctx context.Context, name string) ([]byte, error)
	ObjectMetadata(ctx context.Context, name string) (*gcs.Object, error)
	DeleteObject(ctx context.Context, name string) (bool, error)
	ListObjects(ctx context.Context, prefix string) ([]gcs.Object, error)
	PublicURL(name string) string
}

// GCSStore keeps uploads in a fixed logical folder of an object-storage
// bucket and hands out the provider's public URLs.
type GCSStore struct {
	client objectClient
	folder string
}

func NewGCSStore(client objectClient, folder string) (*GCSStore, error) {
	if client == nil {
		return nil, fmt.Errorf("gcs client is required")
	}
	if folder == "" {
		folder = "quotes"
	}
	return &GCSStore{client: client, folder: strings.Trim(folder, "/")}, nil
}

func (s *GCSStore) Store(ctx context.Context, up Upload) (*StoredFile, error) {
	if len(up.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(up.OriginalName))

	contentType := up.ContentType
	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	url, err := s.client.UploadObject(ctx, s.objectName(filename), contentType, up.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "uploading object")
	}

	return &StoredFile{
		Filename:     filename,
		OriginalName: up.OriginalName,
		URL:          url,
		Size:         int64(len(up.Data)),
		ContentType:  contentType,
	}, nil
}

func (s *GCSStore) Retrieve(ctx context.Context, filename string) (*File, error) {
	object := s.objectName(filename)

	meta, err := s.client.ObjectMetadata(ctx, object)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reading object metadata")
	}

	data, err := s.client.DownloadObject(ctx, object)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "downloading object")
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	return &File{
		Info: FileInfo{
			Filename:     filename,
			OriginalName: filename,
			URL:          s.client.PublicURL(object),
			Size:         int64(len(data)),
			ContentType:  contentType,
		},
		Data: data,
	}, nil
}

func (s *GCSStore) Remove(ctx context.Context, filename string) (bool, error) {
	removed, err := s.client.DeleteObject(ctx, s.objectName(filename))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "deleting object")
	}
	return removed, nil
}

func (s *GCSStore) List(ctx context.Context) ([]FileInfo, error) {
	objects, err := s.client.ListObjects(ctx, s.folder+"/")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing objects")
	}

	infos := make([]FileInfo, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Name, s.folder+"/")
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		contentType := obj.ContentType
		if contentType == "" {
			contentType = contentTypeFor(name)
		}
		infos = append(infos, FileInfo{
			Filename:     name,
			OriginalName: name,
			URL:          s.client.PublicURL(obj.Name),
			Size:         obj.SizeBytes(),
			ContentType:  contentType,
		})
	}
	return infos, nil
}

func (s *GCSStore) objectName(filename string) string {
	return s.folder + "/" + filename
}
