package services

import (
	"context"
	"testing"

	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/cryptox"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestUploadLifecycle walks signup, upload, listing and deletion with a
// storage backend that refuses to delete.
func TestUploadLifecycle(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	m := newFakeRepoManager()
	store := newFakeStorage()
	store.deleteErr = errBoom

	authSvc := NewAuthService(db, m, newTestTokens(), cryptox.NewPasswordHasher(bcrypt.MinCost), logging.Discard())
	photoSvc := NewPhotoService(db, m, store, DefaultUploadPolicy(), logging.Discard())

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, _, err := authSvc.Signup(ctx, "lena@example.com", "password123")
	require.NoError(t, err)

	_, pair, err := authSvc.Login(ctx, "lena@example.com", "password123")
	require.NoError(t, err)

	user, err := authSvc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	intent, err := photoSvc.RequestUpload(ctx, user.ID, "x.png", "image/png", 1000)
	require.NoError(t, err)
	store.put(intent.Key)

	photo, err := photoSvc.Finalize(ctx, user.ID, intent.Key, "x.png", "image/png", 1000)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	page, err := photoSvc.List(ctx, user.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Photos, 1)
	assert.Equal(t, photo.ID, page.Photos[0].ID)
	assert.Equal(t, 1, page.Pagination.TotalPhotos)

	require.NoError(t, photoSvc.Delete(ctx, user.ID, photo.ID))
	assert.Equal(t, []string{intent.Key}, store.deleted)

	mock.ExpectBegin()
	mock.ExpectCommit()
	page, err = photoSvc.List(ctx, user.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Photos)
	assert.Equal(t, 0, page.Pagination.TotalPhotos)

	_, err = photoSvc.Get(ctx, user.ID, photo.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
