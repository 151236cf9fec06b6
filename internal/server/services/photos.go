package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/dbx"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/hynorvixx/backend/internal/server/models"
	"github.com/hynorvixx/backend/internal/server/repositories/repomanager"
	"github.com/hynorvixx/backend/internal/server/storage"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ObjectStorage is the part of the storage gateway the photo service needs.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*storage.PresignedRequest, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (*storage.PresignedRequest, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// UploadPolicy bounds what may be uploaded and for how long URLs stay valid.
type UploadPolicy struct {
	AllowedTypes     []string
	MaxSize          int64
	UploadURLTTL     time.Duration
	ViewURLTTL       time.Duration
	VerifyOnFinalize bool
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxSize:      5 * 1024 * 1024,
		UploadURLTTL: 300 * time.Second,
		ViewURLTTL:   3600 * time.Second,
	}
}

// UploadIntent is a presigned PUT. It is never persisted.
type UploadIntent struct {
	URL       string
	Key       string
	ExpiresIn time.Duration
	Headers   map[string]string
}

// SignedURL is a presigned GET for viewing an object.
type SignedURL struct {
	URL       string
	ExpiresIn time.Duration
}

type Pagination struct {
	CurrentPage int
	Limit       int
	TotalPages  int
	TotalPhotos int
	HasNext     bool
	HasPrev     bool
}

type PhotoPage struct {
	Photos     []*models.Photo
	Pagination Pagination
}

// PhotoService runs the upload lifecycle: presign, client-side PUT, finalize,
// and deletion with best-effort storage cleanup.
type PhotoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStorage
	policy      UploadPolicy
	logger      logging.Logger
	now         func() time.Time
}

// NewPhotoService builds the service. store may be nil when object storage
// is not configured; upload URLs then fail with common.ErrStorageUnavailable.
func NewPhotoService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStorage,
	policy UploadPolicy, logger logging.Logger) *PhotoService {
	return &PhotoService{
		db:          db,
		repomanager: m,
		storage:     store,
		policy:      policy,
		logger:      logger.With("module", "photos"),
		now:         time.Now,
	}
}

// StorageAvailable reports whether an object store is wired in.
func (s *PhotoService) StorageAvailable() bool { return s.storage != nil }

// RequestUpload validates the intended upload and returns a presigned PUT.
// Nothing is written to the database.
func (s *PhotoService) RequestUpload(ctx context.Context, ownerID, filename, contentType string, fileSize int64) (*UploadIntent, error) {
	name := baseName(filename)
	if name == "" || contentType == "" {
		return nil, common.Validation("Filename and content type are required")
	}
	if err := s.checkObject(contentType, fileSize); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, common.ErrStorageUnavailable
	}

	key := fmt.Sprintf("%s%s/%d_%s", common.UploadKeyPrefix, ownerID, s.now().UnixMilli(), name)

	req, err := s.storage.PresignUpload(ctx, key, contentType, s.policy.UploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "upload url issued", "user_id", ownerID, "key", key, "content_type", contentType)
	return &UploadIntent{URL: req.URL, Key: key, ExpiresIn: s.policy.UploadURLTTL, Headers: req.Headers}, nil
}

// Finalize records a completed upload. Unless VerifyOnFinalize is set, the
// client's word that the object landed in the bucket is trusted.
func (s *PhotoService) Finalize(ctx context.Context, ownerID, key, originalName, contentType string, fileSize int64) (*models.Photo, error) {
	originalName = strings.TrimSpace(originalName)
	if key == "" || originalName == "" || contentType == "" {
		return nil, common.Validation("File key, original name and content type are required")
	}
	if !ownsKey(ownerID, key) {
		return nil, common.Validation("Invalid file key")
	}
	if err := s.checkObject(contentType, fileSize); err != nil {
		return nil, err
	}

	if s.policy.VerifyOnFinalize && s.storage != nil {
		ok, err := s.storage.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		if !ok {
			return nil, common.Validation("Uploaded file not found in storage")
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	photo, err := s.repomanager.Photos(s.db).Create(ctx, &models.Photo{
		ID:           id.String(),
		OwnerID:      ownerID,
		StorageKey:   key,
		OriginalName: originalName,
		ContentType:  contentType,
		FileSize:     fileSize,
		Tags:         []string{},
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.WithMessage(common.ErrConflict, "Photo already exists")
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "photo finalized", "user_id", ownerID, "photo_id", photo.ID)
	return photo, nil
}

// List returns one page of the owner's photos, newest first. page and limit
// are clamped; the count and the page come from one snapshot.
func (s *PhotoService) List(ctx context.Context, ownerID string, page, limit int) (*PhotoPage, error) {
	page, limit = ClampPage(page, limit)

	var (
		photos []*models.Photo
		total  int
	)
	err := dbx.WithTx(ctx, s.db, dbx.ReadSnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Photos(tx)

		var err error
		if total, err = repo.Count(ctx, ownerID); err != nil {
			return err
		}
		photos, err = repo.List(ctx, ownerID, limit, (page-1)*limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	totalPages := (total + limit - 1) / limit
	return &PhotoPage{
		Photos: photos,
		Pagination: Pagination{
			CurrentPage: page,
			Limit:       limit,
			TotalPages:  totalPages,
			TotalPhotos: total,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

// Get returns the photo only if ownerID owns it. Anything else is
// common.ErrorNotFound.
func (s *PhotoService) Get(ctx context.Context, ownerID, id string) (*models.Photo, error) {
	photo, err := s.repomanager.Photos(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	return photo, nil
}

// Update applies a partial patch under the same ownership rule as Get.
func (s *PhotoService) Update(ctx context.Context, ownerID, id string, patch models.PhotoPatch) (*models.Photo, error) {
	if patch.Tags != nil {
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	photo, err := s.repomanager.Photos(s.db).Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	return photo, nil
}

// Delete removes the stored object, best effort, and then the row. A storage
// failure is logged and does not stop the row from going away.
func (s *PhotoService) Delete(ctx context.Context, ownerID, id string) error {
	repo := s.repomanager.Photos(s.db)

	photo, err := repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return notFoundOrInternal(err)
	}

	if s.storage != nil {
		if err := s.storage.Delete(ctx, photo.StorageKey); err != nil {
			s.logger.Warn(ctx, "storage delete failed, removing row anyway",
				"photo_id", photo.ID, "key", photo.StorageKey, "error", err)
		}
	}

	if err := repo.Delete(ctx, ownerID, id); err != nil {
		return notFoundOrInternal(err)
	}

	s.logger.Info(ctx, "photo deleted", "user_id", ownerID, "photo_id", id)
	return nil
}

// ViewURL presigns a GET for key. ttl <= 0 uses the configured default.
// The caller's ownership of key is not checked.
func (s *PhotoService) ViewURL(ctx context.Context, key string, ttl time.Duration) (*SignedURL, error) {
	if key == "" {
		return nil, common.Validation("File key is required")
	}
	if s.storage == nil {
		return nil, common.ErrStorageUnavailable
	}
	if ttl <= 0 {
		ttl = s.policy.ViewURLTTL
	}

	req, err := s.storage.PresignDownload(ctx, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return &SignedURL{URL: req.URL, ExpiresIn: ttl}, nil
}

// ClampPage applies defaults to non-positive values, caps limit, and caps
// page so that (page-1)*limit cannot overflow.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func (s *PhotoService) checkObject(contentType string, fileSize int64) error {
	if !slices.Contains(s.policy.AllowedTypes, contentType) {
		return common.WithMessage(common.ErrUnsupportedMediaType, "Invalid file type. Only images are allowed")
	}
	if fileSize < 0 {
		return common.Validation("File size must not be negative")
	}
	if fileSize > s.policy.MaxSize {
		return common.WithMessage(common.ErrPayloadTooLarge,
			fmt.Sprintf("File size too large. Maximum size is %s", formatSize(s.policy.MaxSize)))
	}
	return nil
}

// baseName strips any directory part a client may have sent with the name.
func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	switch name {
	case ".", "/", "..":
		return ""
	}
	return name
}

func ownsKey(ownerID, key string) bool {
	prefix := common.UploadKeyPrefix + ownerID + "/"
	rest, ok := strings.CutPrefix(key, prefix)
	return ok && rest != "" && !strings.Contains(rest, "/")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func formatSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

func notFoundOrInternal(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.WithMessage(common.ErrorNotFound, "Photo not found")
	}
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
