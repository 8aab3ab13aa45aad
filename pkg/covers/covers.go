/*
Package covers resolves displayable image URLs for albums and photos.
An album's cover may be known by an object-storage path, by a direct
URL, or by a legacy value in the URL field that is really a storage
path. Resolution never touches the network itself; it only asks the
injected URLFunc to turn a storage path into a public URL.
*/
package covers

import (
	"strings"

	"github.com/adampresley/photoportfolio/pkg/models"
)

const (
	Placeholder = "/static/images/placeholder.svg"
)

/*
URLFunc turns an object-storage path into a public URL. It returns an
empty string when storage is unavailable or the path can't be resolved.
*/
type URLFunc func(path string) string

func (f URLFunc) resolve(path string) string {
	if f == nil || path == "" {
		return ""
	}

	return f(path)
}

/*
ResolveCoverURL returns the URL to display for an album's cover, or an
empty string when no usable source exists. The storage path wins over
the cover URL. An absolute cover URL is returned as is, and anything
else in the cover URL field is treated as a storage path.
*/
func ResolveCoverURL(album models.Album, urlFor URLFunc) string {
	if album.CoverStoragePath != "" {
		if u := urlFor.resolve(album.CoverStoragePath); u != "" {
			return u
		}
	}

	if album.CoverURL == "" {
		return ""
	}

	if IsAbsoluteURL(album.CoverURL) {
		return album.CoverURL
	}

	return urlFor.resolve(album.CoverURL)
}

/*
CoverOrPlaceholder is ResolveCoverURL with the placeholder image
substituted when nothing resolves.
*/
func CoverOrPlaceholder(album models.Album, urlFor URLFunc) string {
	if u := ResolveCoverURL(album, urlFor); u != "" {
		return u
	}

	return Placeholder
}

/*
ResolvePhotoURL prefers a fresh URL generated from the photo's storage
path and falls back to the URL stored alongside it.
*/
func ResolvePhotoURL(photo models.Photo, urlFor URLFunc) string {
	if u := urlFor.resolve(photo.StoragePath); u != "" {
		return u
	}

	return photo.URL
}

func IsAbsoluteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
