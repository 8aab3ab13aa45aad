package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rfberaldo/sqlz"
)

const (
	albumListCacheKey = "albums"
)

type AlbumServicer interface {
	GetAlbums() ([]*models.Album, error)
	GetAlbumByID(id string) (*models.Album, error)
	GetAlbumBySlug(slug string) (*models.Album, error)
	CreateAlbum(title, slug string) (*models.Album, error)
	UpdateAlbum(id string, update models.AlbumUpdate) error
	DeleteAlbum(id string) error
}

type AlbumServiceConfig struct {
	CacheTTL time.Duration
	DB       *sqlz.DB
}

type AlbumService struct {
	cache *gocache.Cache
	db    *sqlz.DB
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	ttl := config.CacheTTL

	if ttl <= 0 {
		ttl = time.Minute
	}

	return AlbumService{
		cache: gocache.New(ttl, ttl*2),
		db:    config.DB,
	}
}

const albumColumns = `
   a.id
   , a.created_at
   , a.updated_at
   , a.slug
   , a.title
   , COALESCE(a.cover_url, '') AS cover_url
   , COALESCE(a.cover_storage_path, '') AS cover_storage_path
   , a.photo_count
`

/*
GetAlbums returns every album, newest first. The list is cached until the
next change to any album.
*/
func (s AlbumService) GetAlbums() ([]*models.Album, error) {
	var (
		err    error
		albums []models.Album
	)

	if cached, ok := s.cache.Get(albumListCacheKey); ok {
		return copyAlbums(cached.([]models.Album)), nil
	}

	sql := `
SELECT` + albumColumns + `
FROM albums AS a
ORDER BY a.created_at DESC
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &albums, sql); err != nil {
		return []*models.Album{}, fmt.Errorf("error querying for albums: %w", err)
	}

	s.cache.SetDefault(albumListCacheKey, albums)
	return copyAlbums(albums), nil
}

func copyAlbums(albums []models.Album) []*models.Album {
	result := make([]*models.Album, 0, len(albums))

	for _, album := range albums {
		a := album
		result = append(result, &a)
	}

	return result
}

func (s AlbumService) GetAlbumByID(id string) (*models.Album, error) {
	return s.getAlbumBy("a.id", id)
}

func (s AlbumService) GetAlbumBySlug(slug string) (*models.Album, error) {
	return s.getAlbumBy("a.slug", slug)
}

func (s AlbumService) getAlbumBy(column, value string) (*models.Album, error) {
	var (
		err error
	)

	result := &models.Album{}

	sql := `
SELECT` + albumColumns + `
FROM albums AS a
WHERE 1=1
   AND ` + column + `=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, value); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrAlbumNotFound
		}

		return nil, fmt.Errorf("error querying for album by %s '%s': %w", column, value, err)
	}

	return result, nil
}

func (s AlbumService) CreateAlbum(title, slug string) (*models.Album, error) {
	var (
		err error
	)

	if _, err = s.GetAlbumBySlug(slug); err == nil {
		return nil, models.ErrSlugTaken
	} else if !errors.Is(err, models.ErrAlbumNotFound) {
		return nil, err
	}

	now := time.Now().UTC()

	result := &models.Album{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Slug:  slug,
		Title: title,
	}

	sql := `
INSERT INTO albums (
   id
   , created_at
   , updated_at
   , slug
   , title
) VALUES (?, ?, ?, ?, ?)
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, result.ID, result.CreatedAt, result.UpdatedAt, result.Slug, result.Title); err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrSlugTaken
		}

		return nil, fmt.Errorf("error inserting album '%s': %w", slug, err)
	}

	s.cache.Delete(albumListCacheKey)
	return result, nil
}

func (s AlbumService) UpdateAlbum(id string, update models.AlbumUpdate) error {
	var (
		err error
	)

	if update.IsEmpty() {
		return nil
	}

	sets := []string{"updated_at=?"}
	params := []any{time.Now().UTC()}

	if update.Title != nil {
		sets = append(sets, "title=?")
		params = append(params, *update.Title)
	}

	if update.CoverURL != nil {
		sets = append(sets, "cover_url=?")
		params = append(params, *update.CoverURL)
	}

	if update.CoverStoragePath != nil {
		sets = append(sets, "cover_storage_path=?")
		params = append(params, *update.CoverStoragePath)
	}

	if update.PhotoCount != nil {
		sets = append(sets, "photo_count=?")
		params = append(params, *update.PhotoCount)
	}

	params = append(params, id)

	sql := `
UPDATE albums SET ` + strings.Join(sets, ", ") + `
WHERE id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating album %s: %w", id, err)
	}

	s.cache.Delete(albumListCacheKey)
	return nil
}

/*
DeleteAlbum removes an album and its photo rows in one transaction.
Storage objects are not touched here; see LibraryService.DeleteAlbum.
*/
func (s AlbumService) DeleteAlbum(id string) error {
	var (
		err error
		tx  *sqlz.Tx
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if tx, err = s.db.Begin(ctx); err != nil {
		return fmt.Errorf("error starting transaction to delete album %s: %w", id, err)
	}

	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(ctx, `DELETE FROM photos WHERE album_id=?`, id); err != nil {
		return fmt.Errorf("error deleting photos of album %s: %w", id, err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM albums WHERE id=?`, id); err != nil {
		return fmt.Errorf("error deleting album %s: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing delete of album %s: %w", id, err)
	}

	s.cache.Delete(albumListCacheKey)
	return nil
}

/*
isUniqueViolation reports whether err came from a UNIQUE constraint.
*/
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
