package models

import (
	"fmt"
)

var (
	ErrAlbumNotFound = fmt.Errorf("album not found")
	ErrSlugTaken     = fmt.Errorf("an album with this slug already exists")
)

/*
Album is a photo album. Slug is derived from the title once, at
creation, and never changes afterwards. An empty CoverURL or
CoverStoragePath means the field is absent. PhotoCount is a cache of
the number of photos in the album and may be nil when unknown.
*/
type Album struct {
	BaseModel

	Slug             string `db:"slug"`
	Title            string `db:"title"`
	CoverURL         string `db:"cover_url"`
	CoverStoragePath string `db:"cover_storage_path"`
	PhotoCount       *int   `db:"photo_count"`
}

/*
AlbumUpdate is a partial update. Nil fields are left untouched.
*/
type AlbumUpdate struct {
	Title            *string
	CoverURL         *string
	CoverStoragePath *string
	PhotoCount       *int
}

func (u AlbumUpdate) IsEmpty() bool {
	return u.Title == nil && u.CoverURL == nil && u.CoverStoragePath == nil && u.PhotoCount == nil
}
