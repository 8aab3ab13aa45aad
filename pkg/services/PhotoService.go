package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/google/uuid"
	"github.com/rfberaldo/sqlz"
)

type PhotoServicer interface {
	GetPhotos(albumID string, limit int) ([]*models.Photo, error)
	GetPhoto(id string) (*models.Photo, error)
	CreatePhoto(photo models.NewPhoto) (*models.Photo, error)
	DeletePhoto(id string) error
	CountPhotos(albumID string) (int, error)
}

type PhotoServiceConfig struct {
	DB *sqlz.DB
}

type PhotoService struct {
	db *sqlz.DB
}

func NewPhotoService(config PhotoServiceConfig) PhotoService {
	return PhotoService{
		db: config.DB,
	}
}

/*
GetPhotos returns an album's photos in upload order. A limit of zero or
less returns all of them.
*/
func (s PhotoService) GetPhotos(albumID string, limit int) ([]*models.Photo, error) {
	var (
		err error
	)

	result := []*models.Photo{}

	sql := `
SELECT
   p.id
   , p.created_at
   , p.updated_at
   , p.album_id
   , COALESCE(p.url, '') AS url
   , COALESCE(p.storage_path, '') AS storage_path
FROM photos AS p
WHERE 1=1
   AND p.album_id=?
ORDER BY p.created_at ASC, p.rowid ASC
`

	params := []any{albumID}

	if limit > 0 {
		sql += "LIMIT ?\n"
		params = append(params, limit)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, params...); err != nil {
		return result, fmt.Errorf("error querying for photos of album %s: %w", albumID, err)
	}

	return result, nil
}

func (s PhotoService) GetPhoto(id string) (*models.Photo, error) {
	var (
		err error
	)

	result := &models.Photo{}

	sql := `
SELECT
   p.id
   , p.created_at
   , p.updated_at
   , p.album_id
   , COALESCE(p.url, '') AS url
   , COALESCE(p.storage_path, '') AS storage_path
FROM photos AS p
WHERE 1=1
   AND p.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrPhotoNotFound
		}

		return nil, fmt.Errorf("error querying for photo %s: %w", id, err)
	}

	return result, nil
}

func (s PhotoService) CreatePhoto(photo models.NewPhoto) (*models.Photo, error) {
	var (
		err error
	)

	now := time.Now().UTC()

	result := &models.Photo{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AlbumID:     photo.AlbumID,
		URL:         photo.URL,
		StoragePath: photo.StoragePath,
	}

	sql := `
INSERT INTO photos (
   id
   , created_at
   , updated_at
   , album_id
   , url
   , storage_path
) VALUES (?, ?, ?, ?, ?, ?)
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = s.db.Exec(ctx, sql, result.ID, result.CreatedAt, result.UpdatedAt, result.AlbumID, result.URL, result.StoragePath)

	if err != nil {
		return nil, fmt.Errorf("error inserting photo '%s' for album %s: %w", photo.StoragePath, photo.AlbumID, err)
	}

	return result, nil
}

func (s PhotoService) DeletePhoto(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(ctx, `DELETE FROM photos WHERE id=?`, id); err != nil {
		return fmt.Errorf("error deleting photo %s: %w", id, err)
	}

	return nil
}

func (s PhotoService) CountPhotos(albumID string) (int, error) {
	var (
		err    error
		result struct {
			PhotoCount int `db:"photo_count"`
		}
	)

	sql := `
SELECT COUNT(*) AS photo_count
FROM photos
WHERE album_id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &result, sql, albumID); err != nil {
		return 0, fmt.Errorf("error counting photos of album %s: %w", albumID, err)
	}

	return result.PhotoCount, nil
}
