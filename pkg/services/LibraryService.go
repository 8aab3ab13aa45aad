package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/slug"
	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxUploadBytes int64 = 25 << 20
)

var (
	ErrTitleRequired = fmt.Errorf("album title is required")
	ErrCoverRequired = fmt.Errorf("a cover image is required")
	ErrEmptyFile     = fmt.Errorf("file is empty")
	ErrFileTooLarge  = fmt.Errorf("file is too large")
	ErrNotAnImage    = fmt.Errorf("file is not an image")
)

/*
UploadFile is one file of a multipart upload. Open is called once, when
the file is processed.
*/
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type NewAlbumRequest struct {
	Title  string
	Cover  UploadFile
	Photos []UploadFile
}

type UploadFailure struct {
	Name string
	Err  error
}

func (f UploadFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Err.Error())
}

func (f UploadFailure) Unwrap() error {
	return f.Err
}

type UploadResult struct {
	Uploaded int
	Failures []UploadFailure
}

func (r UploadResult) HasFailures() bool {
	return len(r.Failures) > 0
}

type CreateAlbumResult struct {
	Album  *models.Album
	Upload UploadResult
}

type LibraryServicer interface {
	CreateAlbum(request NewAlbumRequest) (CreateAlbumResult, error)
	UploadPhotos(albumID string, files []UploadFile) (UploadResult, error)
	DeleteAlbum(albumID string) error
	DeletePhoto(photoID string) error
	RecountPhotos() (int, error)
}

type LibraryServiceConfig struct {
	AlbumService   AlbumServicer
	MaxUploadBytes int64
	PhotoService   PhotoServicer
	StorageService StorageServicer
}

/*
LibraryService coordinates the album and photo tables with object
storage for every admin change to the portfolio.
*/
type LibraryService struct {
	albumService   AlbumServicer
	maxUploadBytes int64
	photoService   PhotoServicer
	storageService StorageServicer
}

func NewLibraryService(config LibraryServiceConfig) LibraryService {
	maxUploadBytes := config.MaxUploadBytes

	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	return LibraryService{
		albumService:   config.AlbumService,
		maxUploadBytes: maxUploadBytes,
		photoService:   config.PhotoService,
		storageService: config.StorageService,
	}
}

/*
CreateAlbum inserts an album, stores its cover and then any extra
photos. If the cover cannot be stored the album row is removed again.
Failures of extra photos are reported in the result and do not fail the
call.
*/
func (s LibraryService) CreateAlbum(request NewAlbumRequest) (CreateAlbumResult, error) {
	var (
		err       error
		album     *models.Album
		slugValue string
		cover     upload
	)

	result := CreateAlbumResult{}
	title := strings.TrimSpace(request.Title)

	if title == "" {
		return result, ErrTitleRequired
	}

	if request.Cover.Open == nil {
		return result, ErrCoverRequired
	}

	if !s.storageService.Configured() {
		return result, models.ErrStorageNotConfigured
	}

	if slugValue, err = slug.Make(title); err != nil {
		return result, err
	}

	if cover, err = s.readUpload(request.Cover); err != nil {
		return result, fmt.Errorf("error reading cover image: %w", err)
	}

	if album, err = s.albumService.CreateAlbum(title, slugValue); err != nil {
		return result, err
	}

	logger := slog.With("albumID", album.ID, "slug", album.Slug)

	coverPath := path.Join(album.ID, slug.CoverFileName(request.Cover.Name, cover.extension))
	coverURL := s.storageService.PublicURL(coverPath)

	if err = s.storageService.Upload(coverPath, bytes.NewReader(cover.data), cover.contentType); err != nil {
		s.rollbackAlbum(logger, album.ID)
		return result, fmt.Errorf("error uploading cover image: %w", err)
	}

	err = s.albumService.UpdateAlbum(album.ID, models.AlbumUpdate{
		CoverURL:         &coverURL,
		CoverStoragePath: &coverPath,
	})

	if err != nil {
		if removeErr := s.storageService.Remove(coverPath); removeErr != nil {
			logger.Error("error removing cover image after failed update", "error", removeErr, "path", coverPath)
		}

		s.rollbackAlbum(logger, album.ID)
		return result, fmt.Errorf("error saving cover image: %w", err)
	}

	album.CoverURL = coverURL
	album.CoverStoragePath = coverPath

	result.Album = album
	result.Upload = s.uploadFiles(album.ID, request.Photos)

	photoCount := result.Upload.Uploaded

	if err = s.albumService.UpdateAlbum(album.ID, models.AlbumUpdate{PhotoCount: &photoCount}); err != nil {
		logger.Error("error saving photo count of new album", "error", err)
	} else {
		album.PhotoCount = &photoCount
	}

	logger.Info("album created", "uploaded", result.Upload.Uploaded, "failed", len(result.Upload.Failures))
	return result, nil
}

func (s LibraryService) rollbackAlbum(logger *slog.Logger, albumID string) {
	if err := s.albumService.DeleteAlbum(albumID); err != nil {
		logger.Error("error rolling back album", "error", err)
	}
}

/*
UploadPhotos stores each file independently. A failed file is logged
and reported but never stops the rest. The album's photo count is
recomputed afterwards.
*/
func (s LibraryService) UploadPhotos(albumID string, files []UploadFile) (UploadResult, error) {
	var (
		err   error
		album *models.Album
	)

	if !s.storageService.Configured() {
		return UploadResult{}, models.ErrStorageNotConfigured
	}

	if album, err = s.albumService.GetAlbumByID(albumID); err != nil {
		return UploadResult{}, err
	}

	result := s.uploadFiles(album.ID, files)
	s.refreshPhotoCount(album)

	slog.Info("photos uploaded", "albumID", album.ID, "uploaded", result.Uploaded, "failed", len(result.Failures))
	return result, nil
}

func (s LibraryService) uploadFiles(albumID string, files []UploadFile) UploadResult {
	result := UploadResult{
		Failures: []UploadFailure{},
	}

	for _, file := range files {
		if err := s.uploadPhoto(albumID, file); err != nil {
			slog.Error("error uploading photo", "error", err, "albumID", albumID, "fileName", file.Name)
			result.Failures = append(result.Failures, UploadFailure{Name: file.Name, Err: err})
			continue
		}

		result.Uploaded++
	}

	return result
}

func (s LibraryService) uploadPhoto(albumID string, file UploadFile) error {
	var (
		err  error
		data upload
	)

	if data, err = s.readUpload(file); err != nil {
		return err
	}

	storagePath := path.Join(albumID, slug.RandomFileName(file.Name, data.extension))

	if err = s.storageService.Upload(storagePath, bytes.NewReader(data.data), data.contentType); err != nil {
		return err
	}

	_, err = s.photoService.CreatePhoto(models.NewPhoto{
		AlbumID:     albumID,
		URL:         s.storageService.PublicURL(storagePath),
		StoragePath: storagePath,
	})

	if err != nil {
		if removeErr := s.storageService.Remove(storagePath); removeErr != nil {
			slog.Error("error removing orphaned photo object", "error", removeErr, "path", storagePath)
		}

		return err
	}

	return nil
}

type upload struct {
	data        []byte
	contentType string
	extension   string
}

func (s LibraryService) readUpload(file UploadFile) (upload, error) {
	var (
		err    error
		reader io.ReadCloser
		data   []byte
	)

	if file.Open == nil {
		return upload{}, ErrEmptyFile
	}

	if reader, err = file.Open(); err != nil {
		return upload{}, fmt.Errorf("error opening '%s': %w", file.Name, err)
	}

	defer reader.Close()

	if data, err = io.ReadAll(io.LimitReader(reader, s.maxUploadBytes+1)); err != nil {
		return upload{}, fmt.Errorf("error reading '%s': %w", file.Name, err)
	}

	if len(data) == 0 {
		return upload{}, ErrEmptyFile
	}

	if int64(len(data)) > s.maxUploadBytes {
		return upload{}, ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)

	if !strings.HasPrefix(mtype.String(), "image/") {
		return upload{}, fmt.Errorf("%w (detected %s)", ErrNotAnImage, mtype.String())
	}

	return upload{
		data:        data,
		contentType: mtype.String(),
		extension:   mtype.Extension(),
	}, nil
}

/*
DeleteAlbum removes the album's stored objects, then its photo rows and
the album row. Storage failures are logged and do not stop the delete.
*/
func (s LibraryService) DeleteAlbum(albumID string) error {
	var (
		err    error
		album  *models.Album
		photos []*models.Photo
	)

	if album, err = s.albumService.GetAlbumByID(albumID); err != nil {
		return err
	}

	if photos, err = s.photoService.GetPhotos(album.ID, 0); err != nil {
		return err
	}

	logger := slog.With("albumID", album.ID)

	if s.storageService.Configured() {
		paths := albumObjectPaths(album, photos)

		if listed, listErr := s.storageService.List(AlbumFolder(album.ID)); listErr != nil {
			logger.Warn("error listing album folder, removing known objects only", "error", listErr)
		} else {
			paths = appendUnique(paths, listed...)
		}

		if err = s.storageService.Remove(paths...); err != nil {
			logger.Error("error removing album objects from storage", "error", err, "count", len(paths))
		}
	}

	if err = s.albumService.DeleteAlbum(album.ID); err != nil {
		return err
	}

	logger.Info("album deleted", "photos", len(photos))
	return nil
}

func albumObjectPaths(album *models.Album, photos []*models.Photo) []string {
	result := []string{}

	if album.CoverStoragePath != "" {
		result = appendUnique(result, album.CoverStoragePath)
	}

	for _, photo := range photos {
		if photo.StoragePath == "" {
			continue
		}

		result = appendUnique(result, photo.StoragePath, ThumbnailPath(photo.StoragePath))
	}

	return result
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !slices.IsInSlice(v, list) {
			list = append(list, v)
		}
	}

	return list
}

func (s LibraryService) DeletePhoto(photoID string) error {
	var (
		err   error
		photo *models.Photo
		album *models.Album
	)

	if photo, err = s.photoService.GetPhoto(photoID); err != nil {
		return err
	}

	if s.storageService.Configured() && photo.StoragePath != "" {
		if err = s.storageService.Remove(photo.StoragePath, ThumbnailPath(photo.StoragePath)); err != nil {
			slog.Error("error removing photo from storage", "error", err, "photoID", photo.ID, "path", photo.StoragePath)
		}
	}

	if err = s.photoService.DeletePhoto(photo.ID); err != nil {
		return err
	}

	if album, err = s.albumService.GetAlbumByID(photo.AlbumID); err != nil {
		slog.Error("error loading album to refresh photo count", "error", err, "albumID", photo.AlbumID)
		return nil
	}

	s.refreshPhotoCount(album)
	return nil
}

func (s LibraryService) refreshPhotoCount(album *models.Album) bool {
	count, err := s.photoService.CountPhotos(album.ID)

	if err != nil {
		slog.Error("error counting photos", "error", err, "albumID", album.ID)
		return false
	}

	if album.PhotoCount != nil && *album.PhotoCount == count {
		return false
	}

	if err = s.albumService.UpdateAlbum(album.ID, models.AlbumUpdate{PhotoCount: &count}); err != nil {
		slog.Error("error updating photo count", "error", err, "albumID", album.ID)
		return false
	}

	album.PhotoCount = &count
	return true
}

/*
RecountPhotos brings the cached photo count of every album back in line
with the photo table. It returns how many albums changed.
*/
func (s LibraryService) RecountPhotos() (int, error) {
	var (
		err    error
		albums []*models.Album
	)

	if albums, err = s.albumService.GetAlbums(); err != nil {
		return 0, err
	}

	changed := 0
	errs := []error{}

	for _, album := range albums {
		count, countErr := s.photoService.CountPhotos(album.ID)

		if countErr != nil {
			errs = append(errs, countErr)
			continue
		}

		if album.PhotoCount != nil && *album.PhotoCount == count {
			continue
		}

		if updateErr := s.albumService.UpdateAlbum(album.ID, models.AlbumUpdate{PhotoCount: &count}); updateErr != nil {
			errs = append(errs, updateErr)
			continue
		}

		changed++
	}

	return changed, errors.Join(errs...)
}
