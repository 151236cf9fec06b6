// Package photos is the Postgres-backed photo metadata store.
package photos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/dbx"
	"github.com/hynorvixx/backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const photoColumns = `id, user_id, file_key, original_name, content_type, file_size,
		title, description, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	tags, err := encodeTags(photo.Tags)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO photos (id, user_id, file_key, original_name, content_type, file_size, title, description, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		photo.ID, photo.OwnerID, photo.StorageKey, photo.OriginalName, photo.ContentType, photo.FileSize,
		nullString(photo.Title), nullString(photo.Description), tags).
		Scan(&photo.CreatedAt, &photo.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}

	if photo.Tags == nil {
		photo.Tags = []string{}
	}
	return photo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1 AND user_id = $2`
	return scanPhoto(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// List returns one page of the owner's photos, newest first. Rows created in
// the same instant are ordered by id, which is time-ordered (UUIDv7).
func (r *PostgresRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Photo, error) {
	query :=
		`SELECT ` + photoColumns + `
		 FROM photos
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Photo, 0, limit)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE user_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Update applies patch. NULL parameters keep the stored column value.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, patch models.PhotoPatch) (*models.Photo, error) {
	var tags any
	if patch.Tags != nil {
		b, err := encodeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		tags = b
	}

	query :=
		`UPDATE photos
		 SET title = COALESCE($3, title),
		     description = COALESCE($4, description),
		     tags = COALESCE($5::jsonb, tags),
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + photoColumns

	return scanPhoto(r.db.QueryRowContext(ctx, query, id, ownerID,
		nullString(patch.Title), nullString(patch.Description), tags))
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	p := &models.Photo{}
	var (
		title, description sql.NullString
		tags               []byte
	)

	err := row.Scan(&p.ID, &p.OwnerID, &p.StorageKey, &p.OriginalName, &p.ContentType, &p.FileSize,
		&title, &description, &tags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if title.Valid {
		p.Title = &title.String
	}
	if description.Valid {
		p.Description = &description.String
	}
	p.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return p, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return b, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func classify(err error) error {
	switch {
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", common.ErrConflict, err)
	case dbx.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", common.ErrInvalidReference, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
