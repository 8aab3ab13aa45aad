package models

import (
	"fmt"
)

var (
	ErrPhotoNotFound = fmt.Errorf("photo not found")
)

type Photo struct {
	BaseModel

	AlbumID     string `db:"album_id"`
	URL         string `db:"url"`
	StoragePath string `db:"storage_path"`
}

type NewPhoto struct {
	AlbumID     string
	URL         string
	StoragePath string
}
