package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/hynorvixx/backend/internal/client/client"
	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func unauthorized() error {
	return &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Token expired"}
}

// fakeAPI accepts only the access token in validAccess and counts calls.
type fakeAPI struct {
	validAccess string
	loginErr    error
	refreshErr  error
	refreshes   int
	logouts     []string

	uploadURL *models.UploadURL
	uploadErr error
	finalized *models.FinalizeRequest
	photos    map[string]*models.Photo
	deleted   []string
	viewKeys  []string
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		validAccess: "acc-1",
		photos:      map[string]*models.Photo{},
	}
}

func (f *fakeAPI) auth(token string) error {
	if token != f.validAccess {
		return unauthorized()
	}
	return nil
}

func (f *fakeAPI) result(email string) *models.AuthResult {
	return &models.AuthResult{
		User:   models.User{ID: "u1", Email: email, IsActive: true},
		Tokens: models.Tokens{AccessToken: f.validAccess, RefreshToken: "ref-1"},
	}
}

func (f *fakeAPI) Signup(_ context.Context, email, _ string) (*models.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result(email), nil
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*models.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result(email), nil
}

func (f *fakeAPI) Refresh(_ context.Context, refreshToken string) (*models.Tokens, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.validAccess = "acc-2"
	return &models.Tokens{AccessToken: "acc-2", RefreshToken: "ref-2"}, nil
}

func (f *fakeAPI) Logout(_ context.Context, refreshToken string) error {
	f.logouts = append(f.logouts, refreshToken)
	return nil
}

func (f *fakeAPI) RequestUploadURL(_ context.Context, token, filename, contentType string, size int64) (*models.UploadURL, error) {
	f.calls = append(f.calls, "upload-url")
	if err := f.auth(token); err != nil {
		return nil, err
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadURL, nil
}

func (f *fakeAPI) FinalizeUpload(_ context.Context, token string, req models.FinalizeRequest) (*models.Photo, error) {
	f.calls = append(f.calls, "finalize")
	if err := f.auth(token); err != nil {
		return nil, err
	}
	f.finalized = &req
	p := &models.Photo{ID: "p1", FileKey: req.FileKey, OriginalName: req.OriginalName, ContentType: req.ContentType, FileSize: req.FileSize}
	f.photos[p.ID] = p
	return p, nil
}

func (f *fakeAPI) ListPhotos(_ context.Context, token string, page, limit int) (*models.PhotoPage, error) {
	f.calls = append(f.calls, "list")
	if err := f.auth(token); err != nil {
		return nil, err
	}
	out := &models.PhotoPage{Pagination: models.Pagination{CurrentPage: page, Limit: limit, TotalPhotos: len(f.photos)}}
	for _, p := range f.photos {
		out.Photos = append(out.Photos, *p)
	}
	return out, nil
}

func (f *fakeAPI) GetPhoto(_ context.Context, token, id string) (*models.Photo, error) {
	f.calls = append(f.calls, "get")
	if err := f.auth(token); err != nil {
		return nil, err
	}
	p, ok := f.photos[id]
	if !ok {
		return nil, &client.APIError{StatusCode: http.StatusNotFound, Message: "Photo not found"}
	}
	return p, nil
}

func (f *fakeAPI) UpdatePhoto(_ context.Context, token, id string, upd models.PhotoUpdate) (*models.Photo, error) {
	f.calls = append(f.calls, "update")
	if err := f.auth(token); err != nil {
		return nil, err
	}
	p, ok := f.photos[id]
	if !ok {
		return nil, &client.APIError{StatusCode: http.StatusNotFound}
	}
	if upd.Title != nil {
		p.Title = upd.Title
	}
	if upd.Tags != nil {
		p.Tags = *upd.Tags
	}
	return p, nil
}

func (f *fakeAPI) DeletePhoto(_ context.Context, token, id string) error {
	f.calls = append(f.calls, "delete")
	if err := f.auth(token); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	delete(f.photos, id)
	return nil
}

func (f *fakeAPI) ViewURL(_ context.Context, token, key string) (*models.ViewURL, error) {
	f.calls = append(f.calls, "view-url")
	if err := f.auth(token); err != nil {
		return nil, err
	}
	f.viewKeys = append(f.viewKeys, key)
	return &models.ViewURL{URL: "https://s3.test/" + key, ExpiresIn: 3600}, nil
}

func (f *fakeAPI) HTTP() *http.Client { return http.DefaultClient }
