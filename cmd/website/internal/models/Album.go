package models

import (
	"github.com/adampresley/photoportfolio/pkg/covers"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
)

/*
Album is an album as shown on a card: the resolved cover, or the
placeholder when no cover resolves.
*/
type Album struct {
	ID            string
	Slug          string
	Title         string
	CoverURL      string
	HasCover      bool
	PhotoCount    int
	HasPhotoCount bool
	CreatedAt     string
	Photos        []Photo
}

type Photo struct {
	ID           string
	Index        int
	URL          string
	ThumbnailURL string
}

func NewAlbum(album *models.Album, urlFor covers.URLFunc) Album {
	cover := covers.ResolveCoverURL(*album, urlFor)

	result := Album{
		ID:        album.ID,
		Slug:      album.Slug,
		Title:     album.Title,
		CoverURL:  cover,
		HasCover:  cover != "",
		CreatedAt: album.CreatedAt.Format("Jan _2, 2006"),
		Photos:    []Photo{},
	}

	if !result.HasCover {
		result.CoverURL = covers.Placeholder
	}

	if album.PhotoCount != nil {
		result.PhotoCount = *album.PhotoCount
		result.HasPhotoCount = true
	}

	return result
}

func NewAlbums(albums []*models.Album, urlFor covers.URLFunc) []Album {
	result := make([]Album, 0, len(albums))

	for _, album := range albums {
		result = append(result, NewAlbum(album, urlFor))
	}

	return result
}

/*
NewPhoto converts a stored photo. ThumbnailURL falls back to the full
photo when storage can't resolve the thumbnail path.
*/
func NewPhoto(photo *models.Photo, index int, urlFor covers.URLFunc) Photo {
	result := Photo{
		ID:    photo.ID,
		Index: index,
		URL:   covers.ResolvePhotoURL(*photo, urlFor),
	}

	if photo.StoragePath != "" && urlFor != nil {
		result.ThumbnailURL = urlFor(services.ThumbnailPath(photo.StoragePath))
	}

	if result.ThumbnailURL == "" {
		result.ThumbnailURL = result.URL
	}

	if result.URL == "" {
		result.URL = covers.Placeholder
		result.ThumbnailURL = covers.Placeholder
	}

	return result
}

func NewPhotos(photos []*models.Photo, urlFor covers.URLFunc) []Photo {
	result := make([]Photo, 0, len(photos))

	for index, photo := range photos {
		result = append(result, NewPhoto(photo, index, urlFor))
	}

	return result
}
