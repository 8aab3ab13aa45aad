package maintenance

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
	"github.com/alitto/pond/v2"
	"github.com/nfnt/resize"
	"github.com/robfig/cron/v3"
	_ "golang.org/x/image/webp"
)

const (
	DefaultThumbnailWidth uint = 400
	thumbnailQuality           = 85
)

type Maintainer interface {
	Run()
}

type MaintenanceServiceConfig struct {
	AlbumService   services.AlbumServicer
	LibraryService services.LibraryServicer
	MaxWorkers     int
	PhotoService   services.PhotoServicer
	ShutdownCtx    context.Context
	StorageService services.StorageServicer
	ThumbnailWidth uint
}

/*
MaintenanceService keeps derived data in line with the source of truth:
cached photo counts and photo thumbnails.
*/
type MaintenanceService struct {
	albumService   services.AlbumServicer
	libraryService services.LibraryServicer
	maxWorkers     int
	photoService   services.PhotoServicer
	shutdownCtx    context.Context
	storageService services.StorageServicer
	thumbnailWidth uint
}

func NewMaintenanceService(config MaintenanceServiceConfig) MaintenanceService {
	result := MaintenanceService{
		albumService:   config.AlbumService,
		libraryService: config.LibraryService,
		maxWorkers:     config.MaxWorkers,
		photoService:   config.PhotoService,
		shutdownCtx:    config.ShutdownCtx,
		storageService: config.StorageService,
		thumbnailWidth: config.ThumbnailWidth,
	}

	if result.maxWorkers <= 0 {
		result.maxWorkers = 4
	}

	if result.thumbnailWidth == 0 {
		result.thumbnailWidth = DefaultThumbnailWidth
	}

	if result.shutdownCtx == nil {
		result.shutdownCtx = context.Background()
	}

	return result
}

/*
Schedule runs the job once right away and then on schedule. Runs never
overlap. Stop the returned cron on shutdown.
*/
func Schedule(schedule string, m Maintainer) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := c.AddJob(schedule, cron.FuncJob(m.Run)); err != nil {
		return nil, fmt.Errorf("error scheduling maintenance with '%s': %w", schedule, err)
	}

	c.Start()

	for _, entry := range c.Entries() {
		go entry.WrappedJob.Run()
	}

	return c, nil
}

func (m MaintenanceService) Run() {
	var (
		err     error
		changed int
		albums  []*models.Album
	)

	slog.Info("starting maintenance...")

	if m.storageService.Configured() {
		if err = m.storageService.EnsureBucket(); err != nil {
			slog.Error("error ensuring bucket exists", "error", err)
		}
	}

	if changed, err = m.libraryService.RecountPhotos(); err != nil {
		slog.Error("error recounting photos", "error", err, "changed", changed)
	} else {
		slog.Info("photo counts checked", "changed", changed)
	}

	if !m.storageService.Configured() {
		slog.Warn("storage is not configured. skipping thumbnails")
		return
	}

	if albums, err = m.albumService.GetAlbums(); err != nil {
		slog.Error("error retrieving albums", "error", err)
		return
	}

	pool := pond.NewPool(m.maxWorkers, pond.WithContext(m.shutdownCtx))
	created := m.queueThumbnails(pool, albums)

	_ = pool.Stop().Wait()
	slog.Info("maintenance finished.", "albums", len(albums), "thumbnailsQueued", created)
}

func (m MaintenanceService) queueThumbnails(pool pond.Pool, albums []*models.Album) int {
	queued := 0

	for _, album := range albums {
		existing, err := m.storageService.List(services.ThumbnailFolder(album.ID))

		if err != nil {
			slog.Error("error listing thumbnails", "error", err, "albumID", album.ID)
			continue
		}

		photos, err := m.photoService.GetPhotos(album.ID, 0)

		if err != nil {
			slog.Error("error retrieving photos", "error", err, "albumID", album.ID)
			continue
		}

		for _, photo := range photos {
			if photo.StoragePath == "" {
				continue
			}

			thumbnailPath := services.ThumbnailPath(photo.StoragePath)

			if slices.IsInSlice(thumbnailPath, existing) {
				continue
			}

			queued++

			pool.Submit(func() {
				if err := m.CreateThumbnail(photo.StoragePath); err != nil {
					slog.Error("error creating thumbnail", "error", err, "albumID", album.ID, "path", photo.StoragePath)
				}
			})
		}
	}

	return queued
}

/*
CreateThumbnail downloads a stored photo, shrinks its longest edge to the
thumbnail width and stores it as a JPEG next to the album's photos.
*/
func (m MaintenanceService) CreateThumbnail(storagePath string) error {
	var (
		err    error
		reader io.ReadCloser
		img    image.Image
		buf    bytes.Buffer
	)

	if reader, err = m.storageService.Download(storagePath); err != nil {
		return err
	}

	defer reader.Close()

	if img, _, err = image.Decode(reader); err != nil {
		return fmt.Errorf("error decoding image '%s': %w", storagePath, err)
	}

	thumbnail := Resize(img, m.thumbnailWidth)

	if err = jpeg.Encode(&buf, thumbnail, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("error encoding thumbnail of '%s': %w", storagePath, err)
	}

	thumbnailPath := services.ThumbnailPath(storagePath)

	if err = m.storageService.Upload(thumbnailPath, &buf, "image/jpeg"); err != nil {
		return fmt.Errorf("error uploading thumbnail '%s': %w", thumbnailPath, err)
	}

	slog.Info("created thumbnail", "path", thumbnailPath)
	return nil
}

/*
Resize scales img so its longest edge is maxSize, keeping the aspect
ratio. Images already within maxSize are returned unchanged.
*/
func Resize(img image.Image, maxSize uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	if width <= maxSize && height <= maxSize {
		return img
	}

	var newWidth, newHeight uint

	if width > height {
		newWidth = maxSize
		newHeight = uint(float64(height) * (float64(maxSize) / float64(width)))
	} else {
		newHeight = maxSize
		newWidth = uint(float64(width) * (float64(maxSize) / float64(height)))
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}
