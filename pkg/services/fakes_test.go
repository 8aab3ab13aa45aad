package services

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/adampresley/photoportfolio/pkg/models"
)

type fakeAlbumService struct {
	albums    map[string]*models.Album
	nextID    int
	createErr error
	updateErr error
	deleted   []string
	updates   []models.AlbumUpdate
}

func newFakeAlbumService(albums ...*models.Album) *fakeAlbumService {
	result := &fakeAlbumService{albums: map[string]*models.Album{}}

	for _, a := range albums {
		result.albums[a.ID] = a
	}

	return result
}

func (f *fakeAlbumService) GetAlbums() ([]*models.Album, error) {
	result := []*models.Album{}

	for _, a := range f.albums {
		copied := *a
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeAlbumService) GetAlbumByID(id string) (*models.Album, error) {
	a, ok := f.albums[id]

	if !ok {
		return nil, models.ErrAlbumNotFound
	}

	copied := *a
	return &copied, nil
}

func (f *fakeAlbumService) GetAlbumBySlug(slug string) (*models.Album, error) {
	for _, a := range f.albums {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}

	return nil, models.ErrAlbumNotFound
}

func (f *fakeAlbumService) CreateAlbum(title, slug string) (*models.Album, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++

	a := &models.Album{
		BaseModel: models.BaseModel{ID: fmt.Sprintf("album-%d", f.nextID), CreatedAt: time.Now()},
		Slug:      slug,
		Title:     title,
	}

	f.albums[a.ID] = a

	copied := *a
	return &copied, nil
}

func (f *fakeAlbumService) UpdateAlbum(id string, update models.AlbumUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	a, ok := f.albums[id]

	if !ok {
		return models.ErrAlbumNotFound
	}

	f.updates = append(f.updates, update)

	if update.Title != nil {
		a.Title = *update.Title
	}

	if update.CoverURL != nil {
		a.CoverURL = *update.CoverURL
	}

	if update.CoverStoragePath != nil {
		a.CoverStoragePath = *update.CoverStoragePath
	}

	if update.PhotoCount != nil {
		count := *update.PhotoCount
		a.PhotoCount = &count
	}

	return nil
}

func (f *fakeAlbumService) DeleteAlbum(id string) error {
	delete(f.albums, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePhotoService struct {
	photos      []*models.Photo
	createCalls int
	failCreate  map[int]error
	countErr    error
}

func (f *fakePhotoService) GetPhotos(albumID string, limit int) ([]*models.Photo, error) {
	result := []*models.Photo{}

	for _, p := range f.photos {
		if p.AlbumID == albumID {
			result = append(result, p)
		}

		if limit > 0 && len(result) == limit {
			break
		}
	}

	return result, nil
}

func (f *fakePhotoService) GetPhoto(id string) (*models.Photo, error) {
	for _, p := range f.photos {
		if p.ID == id {
			return p, nil
		}
	}

	return nil, models.ErrPhotoNotFound
}

func (f *fakePhotoService) CreatePhoto(photo models.NewPhoto) (*models.Photo, error) {
	f.createCalls++

	if err, ok := f.failCreate[f.createCalls]; ok {
		return nil, err
	}

	p := &models.Photo{
		BaseModel:   models.BaseModel{ID: fmt.Sprintf("photo-%d", f.createCalls)},
		AlbumID:     photo.AlbumID,
		URL:         photo.URL,
		StoragePath: photo.StoragePath,
	}

	f.photos = append(f.photos, p)
	return p, nil
}

func (f *fakePhotoService) DeletePhoto(id string) error {
	for i, p := range f.photos {
		if p.ID == id {
			f.photos = append(f.photos[:i], f.photos[i+1:]...)
			return nil
		}
	}

	return nil
}

func (f *fakePhotoService) CountPhotos(albumID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}

	photos, _ := f.GetPhotos(albumID, 0)
	return len(photos), nil
}

type fakeStorageService struct {
	configured bool
	objects    map[string][]byte
	uploadErr  func(storagePath string) error
	removeErr  error
	removed    []string
}

func newFakeStorageService() *fakeStorageService {
	return &fakeStorageService{
		configured: true,
		objects:    map[string][]byte{},
	}
}

func (f *fakeStorageService) Configured() bool {
	return f.configured
}

func (f *fakeStorageService) PublicURL(storagePath string) string {
	if !f.configured {
		return ""
	}

	return PublicObjectURL("https://cdn.example.com/photos", storagePath)
}

func (f *fakeStorageService) Upload(storagePath string, body io.Reader, contentType string) error {
	if f.uploadErr != nil {
		if err := f.uploadErr(storagePath); err != nil {
			return err
		}
	}

	data, err := io.ReadAll(body)

	if err != nil {
		return err
	}

	f.objects[storagePath] = data
	return nil
}

func (f *fakeStorageService) Remove(storagePaths ...string) error {
	f.removed = append(f.removed, storagePaths...)

	if f.removeErr != nil {
		return f.removeErr
	}

	for _, p := range storagePaths {
		delete(f.objects, p)
	}

	return nil
}

func (f *fakeStorageService) Download(storagePath string) (io.ReadCloser, error) {
	data, ok := f.objects[storagePath]

	if !ok {
		return nil, fmt.Errorf("no such object '%s'", storagePath)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorageService) Exists(storagePath string) (bool, error) {
	_, ok := f.objects[storagePath]
	return ok, nil
}

func (f *fakeStorageService) List(prefix string) ([]string, error) {
	result := []string{}

	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, key)
		}
	}

	sort.Strings(result)
	return result, nil
}

func (f *fakeStorageService) EnsureBucket() error {
	return nil
}

var (
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	textBytes = []byte("this is not an image at all")
)

func fileOf(name string, data []byte) UploadFile {
	return UploadFile{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
