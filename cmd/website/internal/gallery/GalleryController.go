package gallery

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/photoportfolio/cmd/website/internal/configuration"
	internalmodels "github.com/adampresley/photoportfolio/cmd/website/internal/models"
	"github.com/adampresley/photoportfolio/cmd/website/internal/viewmodels"
	"github.com/adampresley/photoportfolio/pkg/carousel"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
)

type GalleryHandlers interface {
	GalleryPage(w http.ResponseWriter, r *http.Request)
	CarouselStream(w http.ResponseWriter, r *http.Request)
	AlbumPage(w http.ResponseWriter, r *http.Request)
	LightboxPage(w http.ResponseWriter, r *http.Request)
}

type GalleryControllerConfig struct {
	AlbumService     services.AlbumServicer
	CarouselInterval time.Duration
	Config           *configuration.Config
	PhotoService     services.PhotoServicer
	Prefetch         int
	Renderer         rendering.TemplateRenderer
	StorageService   services.StorageServicer
	Workers          int
}

type GalleryController struct {
	albumService     services.AlbumServicer
	carouselInterval time.Duration
	config           *configuration.Config
	photoService     services.PhotoServicer
	prefetch         int
	renderer         rendering.TemplateRenderer
	storageService   services.StorageServicer
	workers          int
}

func NewGalleryController(config GalleryControllerConfig) GalleryController {
	result := GalleryController{
		albumService:     config.AlbumService,
		carouselInterval: config.CarouselInterval,
		config:           config.Config,
		photoService:     config.PhotoService,
		prefetch:         config.Prefetch,
		renderer:         config.Renderer,
		storageService:   config.StorageService,
		workers:          config.Workers,
	}

	if result.carouselInterval <= 0 {
		result.carouselInterval = carousel.DefaultInterval
	}

	if result.prefetch <= 0 {
		result.prefetch = carousel.DefaultPrefetch
	}

	if result.workers <= 0 {
		result.workers = 4
	}

	return result
}

func (c GalleryController) baseViewModel(r *http.Request) viewmodels.BaseViewModel {
	result := viewmodels.BaseViewModel{
		IsHtmx:             httphelpers.IsHtmx(r),
		JavascriptIncludes: []rendering.JavascriptInclude{},
		StorageConfigured:  c.storageService.Configured(),
	}

	if c.config != nil {
		result.SiteName = c.config.SiteName
	}

	if !result.StorageConfigured {
		result.IsWarning = true
		result.Message = "Photo storage is not configured. Images can't be shown right now."
	}

	return result
}

/*
GET /gallery
*/
func (c GalleryController) GalleryPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		albums []*models.Album
	)

	pageName := "pages/gallery/albums"

	viewData := viewmodels.GalleryPage{
		BaseViewModel:    c.baseViewModel(r),
		Albums:           []internalmodels.Album{},
		CarouselInterval: int(c.carouselInterval / time.Millisecond),
	}

	viewData.JavascriptIncludes = append(viewData.JavascriptIncludes, rendering.JavascriptInclude{
		Type: "module", Src: "/static/js/pages/gallery.js",
	})

	if albums, err = c.albumService.GetAlbums(); err != nil {
		slog.Error("error getting album list", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading the albums. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Albums = internalmodels.NewAlbums(albums, c.storageService.PublicURL)
	c.renderer.Render(pageName, viewData, w)
}

/*
GET /gallery/{slug}
*/
func (c GalleryController) AlbumPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		album  *models.Album
		photos []*models.Photo
	)

	pageName := "pages/gallery/album"
	slug := r.PathValue("slug")

	viewData := viewmodels.AlbumPage{
		BaseViewModel: c.baseViewModel(r),
		Album:         internalmodels.Album{},
	}

	viewData.JavascriptIncludes = append(viewData.JavascriptIncludes, rendering.JavascriptInclude{
		Type: "module", Src: "/static/js/pages/album.js",
	})

	if album, err = c.albumService.GetAlbumBySlug(slug); err != nil {
		if errors.Is(err, models.ErrAlbumNotFound) {
			viewData.NotFound = true
			viewData.IsWarning = true
			viewData.Message = "This album doesn't exist or was removed."

			w.WriteHeader(http.StatusNotFound)
			c.renderer.Render(pageName, viewData, w)
			return
		}

		slog.Error("error getting album", "error", err, "slug", slug)
		viewData.IsError = true
		viewData.Message = "There was a problem loading this album. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Album = internalmodels.NewAlbum(album, c.storageService.PublicURL)

	if photos, err = c.photoService.GetPhotos(album.ID, 0); err != nil {
		slog.Error("error getting photos of album", "error", err, "albumID", album.ID)
		viewData.IsError = true
		viewData.Message = "There was a problem loading the photos of this album."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Album.Photos = internalmodels.NewPhotos(photos, c.storageService.PublicURL)
	c.renderer.Render(pageName, viewData, w)
}

/*
GET /gallery/{slug}/photos/{index}
*/
func (c GalleryController) LightboxPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		album  *models.Album
		photos []*models.Photo
	)

	pageName := "pages/gallery/lightbox"
	slug := r.PathValue("slug")
	index, _ := strconv.Atoi(r.PathValue("index"))

	viewData := viewmodels.LightboxPage{
		BaseViewModel: c.baseViewModel(r),
	}

	viewData.JavascriptIncludes = append(viewData.JavascriptIncludes, rendering.JavascriptInclude{
		Type: "module", Src: "/static/js/pages/album.js",
	})

	if album, err = c.albumService.GetAlbumBySlug(slug); err != nil {
		if errors.Is(err, models.ErrAlbumNotFound) {
			http.Redirect(w, r, "/gallery", http.StatusSeeOther)
			return
		}

		slog.Error("error getting album for lightbox", "error", err, "slug", slug)
		httphelpers.TextInternalServerError(w, "There was a problem loading this photo.")
		return
	}

	if photos, err = c.photoService.GetPhotos(album.ID, 0); err != nil {
		slog.Error("error getting photos for lightbox", "error", err, "albumID", album.ID)
		httphelpers.TextInternalServerError(w, "There was a problem loading this photo.")
		return
	}

	if len(photos) == 0 {
		http.Redirect(w, r, "/gallery/"+album.Slug, http.StatusSeeOther)
		return
	}

	position := ((index % len(photos)) + len(photos)) % len(photos)

	viewData.Album = internalmodels.NewAlbum(album, c.storageService.PublicURL)
	viewData.Photo = internalmodels.NewPhoto(photos[position], position, c.storageService.PublicURL)
	viewData.Position = position + 1
	viewData.Total = len(photos)
	viewData.PrevIndex = carousel.Prev(position, len(photos))
	viewData.NextIndex = carousel.Next(position, len(photos))

	c.renderer.Render(pageName, viewData, w)
}
