package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/getoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/s3/putoptions"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type StorageServicer interface {
	Configured() bool
	PublicURL(storagePath string) string
	Upload(storagePath string, body io.Reader, contentType string) error
	Remove(storagePaths ...string) error
	Download(storagePath string) (io.ReadCloser, error)
	Exists(storagePath string) (bool, error)
	List(prefix string) ([]string, error)
	EnsureBucket() error
}

type StorageServiceConfig struct {
	Bucket        string
	Client        s3.S3Client
	Enabled       bool
	PublicBaseURL string
	Region        string
}

type StorageService struct {
	bucket        string
	client        s3.S3Client
	enabled       bool
	publicBaseURL string
	region        string
}

func NewStorageService(config StorageServiceConfig) StorageService {
	return StorageService{
		bucket:        config.Bucket,
		client:        config.Client,
		enabled:       config.Enabled && config.Bucket != "" && config.PublicBaseURL != "",
		publicBaseURL: strings.TrimRight(config.PublicBaseURL, "/"),
		region:        config.Region,
	}
}

func (s StorageService) Configured() bool {
	return s.enabled
}

/*
PublicURL builds the public URL of an object. It makes no network call,
so the same path always produces the same URL. An empty string is
returned when storage isn't configured.
*/
func (s StorageService) PublicURL(storagePath string) string {
	return PublicObjectURL(s.publicBaseURL, storagePath)
}

/*
PublicObjectURL joins a public base URL and an object path, escaping each
path segment.
*/
func PublicObjectURL(baseURL, storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")

	if baseURL == "" || storagePath == "" {
		return ""
	}

	segments := strings.Split(storagePath, "/")

	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.TrimRight(baseURL, "/") + "/" + strings.Join(segments, "/")
}

func (s StorageService) Upload(storagePath string, body io.Reader, contentType string) error {
	if !s.enabled {
		return models.ErrStorageNotConfigured
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stream, err := s.client.PutStream(s.bucket, storagePath, putoptions.WithContentType(contentType))

	if err != nil {
		return fmt.Errorf("error opening upload stream for '%s': %w", storagePath, err)
	}

	if _, err = io.Copy(stream.Writer, body); err != nil {
		_ = stream.Writer.Close()
		return fmt.Errorf("error uploading '%s': %w", storagePath, err)
	}

	if err = stream.Writer.Close(); err != nil {
		return fmt.Errorf("error closing upload stream for '%s': %w", storagePath, err)
	}

	if _, err = stream.Wait(); err != nil {
		return fmt.Errorf("error completing upload of '%s': %w", storagePath, err)
	}

	return nil
}

func (s StorageService) Remove(storagePaths ...string) error {
	if !s.enabled {
		return models.ErrStorageNotConfigured
	}

	keys := make([]string, 0, len(storagePaths))

	for _, p := range storagePaths {
		if p != "" {
			keys = append(keys, p)
		}
	}

	if len(keys) == 0 {
		return nil
	}

	response, err := s.client.Delete(s.bucket, keys)

	if err != nil {
		return fmt.Errorf("error removing %d object(s) from bucket '%s': %w", len(keys), s.bucket, err)
	}

	if len(response.Errors) > 0 {
		failures := make([]string, 0, len(response.Errors))

		for _, e := range response.Errors {
			failures = append(failures, fmt.Sprintf("%s (%s: %s)", e.Key, e.Code, e.Message))
		}

		return fmt.Errorf("error removing %d of %d object(s) from bucket '%s': %s", len(failures), len(keys), s.bucket, strings.Join(failures, ", "))
	}

	return nil
}

func (s StorageService) Download(storagePath string) (io.ReadCloser, error) {
	if !s.enabled {
		return nil, models.ErrStorageNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*2)

	object, err := s.client.Get(
		s.bucket,
		storagePath,
		getoptions.WithContext(ctx),
	)

	if err != nil {
		cancel()
		return nil, fmt.Errorf("error downloading '%s': %w", storagePath, err)
	}

	return cancelOnClose{ReadCloser: object.Body, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

func (s StorageService) Exists(storagePath string) (bool, error) {
	var (
		err  error
		stat *s3.ObjectMetadata
	)

	if !s.enabled {
		return false, models.ErrStorageNotConfigured
	}

	if stat, err = s.client.StatObject(s.bucket, storagePath); err != nil {
		return false, fmt.Errorf("error retrieving metadata for '%s': %w", storagePath, err)
	}

	return stat != nil, nil
}

/*
List returns the keys of every object under prefix, skipping folder
markers.
*/
func (s StorageService) List(prefix string) ([]string, error) {
	var (
		err      error
		response s3.ListResponse
	)

	if !s.enabled {
		return nil, models.ErrStorageNotConfigured
	}

	response, err = s.client.List(
		s.bucket,
		prefix,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			return !strings.HasSuffix(aws.ToString(obj.Key), "/")
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing objects under '%s': %w", prefix, err)
	}

	result := make([]string, 0, len(response.Objects))

	for _, obj := range response.Objects {
		result = append(result, obj.Key)
	}

	return result, nil
}

func (s StorageService) EnsureBucket() error {
	var (
		err    error
		exists bool
	)

	if !s.enabled {
		return models.ErrStorageNotConfigured
	}

	if exists, err = s.client.BucketExists(s.bucket); err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", s.bucket, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", s.bucket)

	if err = s.client.CreateBucket(s.bucket, createbucketoptions.WithRegion(s.region)); err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", s.bucket, err)
	}

	return nil
}

/*
ThumbnailPath is where the thumbnail of a stored photo lives:
<album id>/thumbnails/<name>.jpg
*/
func ThumbnailPath(storagePath string) string {
	dir := path.Dir(storagePath)
	name := strings.TrimSuffix(path.Base(storagePath), path.Ext(storagePath))

	return path.Join(dir, "thumbnails", name+".jpg")
}

/*
AlbumFolder is the storage prefix that holds every object of an album.
*/
func AlbumFolder(albumID string) string {
	return albumID + "/"
}

func ThumbnailFolder(albumID string) string {
	return path.Join(albumID, "thumbnails") + "/"
}
