package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/hynorvixx/backend/internal/filex"
	"github.com/hynorvixx/backend/internal/netx"
)

// PhotoAPI is the part of client.HTTPClient the photo workflow needs.
type PhotoAPI interface {
	RequestUploadURL(ctx context.Context, token, filename, contentType string, size int64) (*models.UploadURL, error)
	FinalizeUpload(ctx context.Context, token string, req models.FinalizeRequest) (*models.Photo, error)
	ListPhotos(ctx context.Context, token string, page, limit int) (*models.PhotoPage, error)
	GetPhoto(ctx context.Context, token, id string) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, token, id string, upd models.PhotoUpdate) (*models.Photo, error)
	DeletePhoto(ctx context.Context, token, id string) error
	ViewURL(ctx context.Context, token, key string) (*models.ViewURL, error)
	HTTP() *http.Client
}

// uploadFn is a test seam for the direct object storage PUT.
var uploadFn = netx.UploadToPresignedURL

type PhotoService struct {
	api     PhotoAPI
	session *SessionService
}

func NewPhotoService(api PhotoAPI, session *SessionService) *PhotoService {
	return &PhotoService{api: api, session: session}
}

// Upload sends the file at path straight to object storage and then
// registers it with the API. The file never passes through the API server.
func (s *PhotoService) Upload(ctx context.Context, path string) (*models.Photo, error) {
	f, size, err := filex.OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	contentType, err := filex.DetectContentType(name, f)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}

	var u *models.UploadURL
	err = s.session.Do(ctx, func(token string) error {
		var err error
		u, err = s.api.RequestUploadURL(ctx, token, name, contentType, size)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("request upload url: %w", err)
	}

	headers := withContentType(u.Headers, contentType)
	if err := uploadFn(ctx, s.api.HTTP(), u.UploadURL, headers, f, size); err != nil {
		return nil, err
	}

	req := models.FinalizeRequest{
		FileKey:      u.FileKey,
		OriginalName: name,
		ContentType:  contentType,
		FileSize:     size,
	}
	var p *models.Photo
	err = s.session.Do(ctx, func(token string) error {
		var err error
		p, err = s.api.FinalizeUpload(ctx, token, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	return p, nil
}

func (s *PhotoService) List(ctx context.Context, page, limit int) (*models.PhotoPage, error) {
	var out *models.PhotoPage
	err := s.session.Do(ctx, func(token string) error {
		var err error
		out, err = s.api.ListPhotos(ctx, token, page, limit)
		return err
	})
	return out, err
}

func (s *PhotoService) Get(ctx context.Context, id string) (*models.Photo, error) {
	var out *models.Photo
	err := s.session.Do(ctx, func(token string) error {
		var err error
		out, err = s.api.GetPhoto(ctx, token, id)
		return err
	})
	return out, err
}

func (s *PhotoService) Update(ctx context.Context, id string, upd models.PhotoUpdate) (*models.Photo, error) {
	var out *models.Photo
	err := s.session.Do(ctx, func(token string) error {
		var err error
		out, err = s.api.UpdatePhoto(ctx, token, id, upd)
		return err
	})
	return out, err
}

func (s *PhotoService) Delete(ctx context.Context, id string) error {
	return s.session.Do(ctx, func(token string) error {
		return s.api.DeletePhoto(ctx, token, id)
	})
}

// ViewURL resolves the photo and returns a temporary download link for it.
func (s *PhotoService) ViewURL(ctx context.Context, id string) (*models.ViewURL, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var out *models.ViewURL
	err = s.session.Do(ctx, func(token string) error {
		var err error
		out, err = s.api.ViewURL(ctx, token, p.FileKey)
		return err
	})
	return out, err
}

// withContentType copies headers and adds Content-Type unless the server
// already named one.
func withContentType(headers map[string]string, contentType string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	named := false
	for k, v := range headers {
		out[k] = v
		named = named || http.CanonicalHeaderKey(k) == "Content-Type"
	}
	if !named {
		out["Content-Type"] = contentType
	}
	return out
}
