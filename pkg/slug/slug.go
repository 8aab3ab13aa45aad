package slug

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptySlug = fmt.Errorf("title must contain at least one letter or digit")

	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

/*
Make builds a URL-safe slug from an album title: lower-cased, accents
stripped, every run of other characters collapsed to a single dash, and
no dash at either end. "Ensaio Família & Amigos!" becomes
"ensaio-familia-amigos".
*/
func Make(title string) (string, error) {
	var (
		err      error
		stripped string
	)

	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	if stripped, _, err = transform.String(stripAccents, strings.ToLower(title)); err != nil {
		return "", fmt.Errorf("error normalizing title '%s': %w", title, err)
	}

	result := nonAlphanumeric.ReplaceAllString(stripped, "-")
	result = strings.Trim(result, "-")

	if result == "" {
		return "", ErrEmptySlug
	}

	return result, nil
}

/*
RandomFileName returns a unique file name that keeps the extension of
originalName. When originalName has no extension, detectedExt (for
example ".jpg" from content sniffing) is used instead.
*/
func RandomFileName(originalName, detectedExt string) string {
	return uuid.NewString() + Extension(originalName, detectedExt)
}

/*
CoverFileName is the object name used for an album's cover image.
*/
func CoverFileName(originalName, detectedExt string) string {
	return "cover" + Extension(originalName, detectedExt)
}

func Extension(originalName, detectedExt string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))

	if ext == "" || ext == "." {
		ext = strings.ToLower(detectedExt)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}
