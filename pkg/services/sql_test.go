package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/adampresley/photoportfolio/pkg/migrations"
	"github.com/adampresley/photoportfolio/pkg/models"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registerSqliteBinds sync.Once

func newTestDB(t *testing.T) *sqlz.DB {
	t.Helper()

	registerSqliteBinds.Do(func() {
		binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	})

	db, err := sqlz.Connect("sqlite", "file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, migrations.Migrate(db))
	return db
}

func TestAlbumServiceCreateAndGetBySlug(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})

	created, err := service.CreateAlbum("Praia do Forte", "praia-do-forte")
	require.NoError(t, err)

	found, err := service.GetAlbumBySlug("praia-do-forte")
	require.NoError(t, err)

	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Praia do Forte", found.Title)
	assert.Nil(t, found.PhotoCount)

	_, err = service.GetAlbumBySlug("casamento")
	assert.ErrorIs(t, err, models.ErrAlbumNotFound)
}

func TestAlbumServiceCreateDuplicateSlug(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})

	_, err := service.CreateAlbum("Praia", "praia")
	require.NoError(t, err)

	_, err = service.CreateAlbum("Praia again", "praia")
	assert.ErrorIs(t, err, models.ErrSlugTaken)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: albums.slug (2067)")))
	assert.False(t, isUniqueViolation(errors.New("no such table: albums")))
	assert.False(t, isUniqueViolation(nil))
}

func TestAlbumServiceUpdateInvalidatesListCache(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t), CacheTTL: time.Hour})

	created, err := service.CreateAlbum("Old title", "old-title")
	require.NoError(t, err)

	albums, err := service.GetAlbums()
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Old title", albums[0].Title)

	title := "New title"
	count := 4
	require.NoError(t, service.UpdateAlbum(created.ID, models.AlbumUpdate{Title: &title, PhotoCount: &count}))

	albums, err = service.GetAlbums()
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "New title", albums[0].Title)
	require.NotNil(t, albums[0].PhotoCount)
	assert.Equal(t, 4, *albums[0].PhotoCount)
	assert.Equal(t, "old-title", albums[0].Slug)
}

func TestAlbumServiceDeleteRemovesPhotos(t *testing.T) {
	db := newTestDB(t)
	albumService := NewAlbumService(AlbumServiceConfig{DB: db})
	photoService := NewPhotoService(PhotoServiceConfig{DB: db})

	doomed, err := albumService.CreateAlbum("Doomed", "doomed")
	require.NoError(t, err)

	kept, err := albumService.CreateAlbum("Kept", "kept")
	require.NoError(t, err)

	for _, album := range []*models.Album{doomed, kept} {
		_, err = photoService.CreatePhoto(models.NewPhoto{AlbumID: album.ID, StoragePath: album.ID + "/one.jpg"})
		require.NoError(t, err)
	}

	require.NoError(t, albumService.DeleteAlbum(doomed.ID))

	_, err = albumService.GetAlbumByID(doomed.ID)
	assert.ErrorIs(t, err, models.ErrAlbumNotFound)

	count, err := photoService.CountPhotos(doomed.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = photoService.CountPhotos(kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPhotoServiceGetPhotosInUploadOrder(t *testing.T) {
	db := newTestDB(t)
	albumService := NewAlbumService(AlbumServiceConfig{DB: db})
	photoService := NewPhotoService(PhotoServiceConfig{DB: db})

	album, err := albumService.CreateAlbum("Ordered", "ordered")
	require.NoError(t, err)

	paths := []string{"a/1.jpg", "a/2.jpg", "a/3.jpg"}

	for _, p := range paths {
		_, err = photoService.CreatePhoto(models.NewPhoto{AlbumID: album.ID, StoragePath: p})
		require.NoError(t, err)
	}

	all, err := photoService.GetPhotos(album.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	for i, p := range paths {
		assert.Equal(t, p, all[i].StoragePath)
	}

	limited, err := photoService.GetPhotos(album.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a/1.jpg", limited[0].StoragePath)
	assert.Equal(t, "a/2.jpg", limited[1].StoragePath)

	one, err := photoService.GetPhoto(limited[1].ID)
	require.NoError(t, err)
	assert.Equal(t, album.ID, one.AlbumID)

	require.NoError(t, photoService.DeletePhoto(one.ID))

	_, err = photoService.GetPhoto(one.ID)
	assert.ErrorIs(t, err, models.ErrPhotoNotFound)
}

func TestUserServiceRoles(t *testing.T) {
	service := NewUserService(UserServiceConfig{DB: newTestDB(t)})

	user, err := service.SignUp(" Ana@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	_, err = service.SignUp("ana@example.com", "another")
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	isAdmin, err := service.HasRole(user.ID, "admin")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, service.GrantRole("ana@example.com", "admin"))
	require.NoError(t, service.GrantRole("ana@example.com", "admin"))

	isAdmin, err = service.HasRole(user.ID, "admin")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	require.NoError(t, service.RevokeRole("ana@example.com", "admin"))

	isAdmin, err = service.HasRole(user.ID, "admin")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	assert.ErrorIs(t, service.GrantRole("nobody@example.com", "admin"), models.ErrUserNotFound)
}

func TestUserServiceSignIn(t *testing.T) {
	service := NewUserService(UserServiceConfig{DB: newTestDB(t)})

	_, err := service.SignUp("ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	user, err := service.SignIn("ANA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	_, err = service.SignIn("ana@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = service.SignIn("nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
