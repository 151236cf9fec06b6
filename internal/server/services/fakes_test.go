package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/dbx"
	"github.com/hynorvixx/backend/internal/server/models"
	"github.com/hynorvixx/backend/internal/server/repositories/photos"
	"github.com/hynorvixx/backend/internal/server/repositories/users"
	"github.com/hynorvixx/backend/internal/server/storage"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*models.User

	existsErr error
	createErr error
	getErr    error
	lastErr   error
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]*models.User{}} }

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, r := range m.rows {
		if r.Email == u.Email {
			return nil, common.ErrIdentityExists
		}
	}
	now := time.Now().UTC()
	cp := *u
	cp.IsActive, cp.CreatedAt, cp.UpdatedAt = true, now, now
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, r := range m.rows {
		if r.Email == email {
			out := *r
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *r
	return &out, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, err := m.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memUsers) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastErr != nil {
		return m.lastErr
	}
	r, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.LastLogin = &at
	return nil
}

func (m *memUsers) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.IsActive = false
	return nil
}

// --- photos ---

type memPhotos struct {
	mu   sync.Mutex
	rows map[string]*models.Photo
	seq  time.Time

	createErr error
	countErr  error
	deleteErr error

	offsets []int
}

func newMemPhotos() *memPhotos {
	return &memPhotos{rows: map[string]*models.Photo{}, seq: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memPhotos) Create(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, r := range m.rows {
		if r.StorageKey == p.StorageKey {
			return nil, common.ErrConflict
		}
	}
	m.seq = m.seq.Add(time.Second)
	cp := *p
	cp.CreatedAt, cp.UpdatedAt = m.seq, m.seq
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memPhotos) GetByID(ctx context.Context, ownerID, id string) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	out := *r
	return &out, nil
}

func (m *memPhotos) List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets = append(m.offsets, offset)
	if offset < 0 {
		return nil, fmt.Errorf("negative offset %d", offset)
	}
	var all []*models.Photo
	for _, r := range m.rows {
		if r.OwnerID == ownerID {
			out := *r
			all = append(all, &out)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []*models.Photo{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *memPhotos) Count(ctx context.Context, ownerID string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memPhotos) Update(ctx context.Context, ownerID, id string, patch models.PhotoPatch) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		r.Title = patch.Title
	}
	if patch.Description != nil {
		r.Description = patch.Description
	}
	if patch.Tags != nil {
		r.Tags = *patch.Tags
	}
	out := *r
	return &out, nil
}

func (m *memPhotos) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	r, ok := m.rows[id]
	if !ok || r.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

// --- repository manager ---

type fakeRepoManager struct {
	users  *memUsers
	photos *memPhotos
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newMemUsers(), photos: newMemPhotos()}
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return f.users }
func (f *fakeRepoManager) Photos(dbx.DBTX) photos.Repository            { return f.photos }

// --- storage ---

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string]bool
	deleted  []string
	presigns int

	presignErr error
	deleteErr  error
	existsErr  error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string]bool{}} }

func (f *fakeStorage) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*storage.PresignedRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	f.presigns++
	return &storage.PresignedRequest{
		URL:     "https://s3.test/photos/" + key + "?X-Amz-Expires=" + ttl.String(),
		Method:  "PUT",
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}

func (f *fakeStorage) PresignDownload(ctx context.Context, key string, ttl time.Duration) (*storage.PresignedRequest, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return &storage.PresignedRequest{URL: "https://s3.test/photos/" + key + "?ttl=" + ttl.String(), Method: "GET"}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.objects[key], nil
}

func (f *fakeStorage) put(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = true
}
