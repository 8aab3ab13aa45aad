package maintenance

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	services.StorageServicer
	mu         sync.Mutex
	configured bool
	objects    map[string][]byte
	ensured    int
}

func (s *memoryStorage) Configured() bool {
	return s.configured
}

func (s *memoryStorage) EnsureBucket() error {
	s.ensured++
	return nil
}

func (s *memoryStorage) Upload(storagePath string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)

	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storagePath] = data
	return nil
}

func (s *memoryStorage) Download(storagePath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[storagePath]

	if !ok {
		return nil, fmt.Errorf("no such object '%s'", storagePath)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStorage) List(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []string{}

	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, key)
		}
	}

	sort.Strings(result)
	return result, nil
}

type staticAlbums struct {
	services.AlbumServicer
	albums []*models.Album
}

func (a staticAlbums) GetAlbums() ([]*models.Album, error) {
	return a.albums, nil
}

type staticPhotos struct {
	services.PhotoServicer
	photos []*models.Photo
}

func (p staticPhotos) GetPhotos(albumID string, limit int) ([]*models.Photo, error) {
	return p.photos, nil
}

type countingLibrary struct {
	services.LibraryServicer
	recounts int
}

func (l *countingLibrary) RecountPhotos() (int, error) {
	l.recounts++
	return 0, nil
}

func pngOf(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newTestService(storage *memoryStorage, library *countingLibrary) MaintenanceService {
	return NewMaintenanceService(MaintenanceServiceConfig{
		AlbumService: staticAlbums{albums: []*models.Album{
			{BaseModel: models.BaseModel{ID: "a1"}},
		}},
		LibraryService: library,
		MaxWorkers:     2,
		PhotoService: staticPhotos{photos: []*models.Photo{
			{BaseModel: models.BaseModel{ID: "p1"}, AlbumID: "a1", StoragePath: "a1/wide.png"},
			{BaseModel: models.BaseModel{ID: "p2"}, AlbumID: "a1", StoragePath: "a1/done.png"},
			{BaseModel: models.BaseModel{ID: "p3"}, AlbumID: "a1", URL: "https://example.com/remote.jpg"},
		}},
		ShutdownCtx:    context.Background(),
		StorageService: storage,
	})
}

func TestRunCreatesMissingThumbnails(t *testing.T) {
	storage := &memoryStorage{
		configured: true,
		objects: map[string][]byte{
			"a1/wide.png":            pngOf(t, 800, 400),
			"a1/done.png":            pngOf(t, 10, 10),
			"a1/thumbnails/done.jpg": []byte("existing"),
		},
	}

	library := &countingLibrary{}
	newTestService(storage, library).Run()

	assert.Equal(t, 1, library.recounts)
	assert.Equal(t, 1, storage.ensured)
	assert.Equal(t, []byte("existing"), storage.objects["a1/thumbnails/done.jpg"])

	require.Contains(t, storage.objects, "a1/thumbnails/wide.jpg")

	thumbnail, err := jpeg.Decode(bytes.NewReader(storage.objects["a1/thumbnails/wide.jpg"]))
	require.NoError(t, err)
	assert.Equal(t, 400, thumbnail.Bounds().Dx())
	assert.Equal(t, 200, thumbnail.Bounds().Dy())
}

func TestRunWithoutStorageOnlyRecounts(t *testing.T) {
	storage := &memoryStorage{objects: map[string][]byte{}}
	library := &countingLibrary{}

	newTestService(storage, library).Run()

	assert.Equal(t, 1, library.recounts)
	assert.Equal(t, 0, storage.ensured)
	assert.Empty(t, storage.objects)
}

func TestCreateThumbnailFailsOnBadImage(t *testing.T) {
	storage := &memoryStorage{
		configured: true,
		objects:    map[string][]byte{"a1/broken.jpg": []byte("not an image")},
	}

	err := newTestService(storage, &countingLibrary{}).CreateThumbnail("a1/broken.jpg")

	assert.ErrorContains(t, err, "error decoding image")
	assert.NotContains(t, storage.objects, "a1/thumbnails/broken.jpg")
}

func TestResize(t *testing.T) {
	tests := []struct {
		name                  string
		width, height         int
		wantWidth, wantHeight int
	}{
		{"landscape", 1200, 800, 400, 266},
		{"portrait", 600, 1200, 200, 400},
		{"square", 1000, 1000, 400, 400},
		{"already small", 300, 200, 300, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := Resize(img, 400)

			assert.Equal(t, tt.wantWidth, got.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, got.Bounds().Dy())
		})
	}
}
