package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/photoportfolio/pkg/carousel"
	"github.com/adampresley/photoportfolio/pkg/covers"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/alitto/pond/v2"
)

const (
	keepAliveInterval = 25 * time.Second
)

type carouselEvent struct {
	AlbumID string `json:"albumId"`
	carousel.Frame
}

type albumCarousel struct {
	albumID  string
	carousel *carousel.Carousel
}

/*
GET /carousel-stream

Streams the frames of every album card as server-sent events. Each album
gets its own carousel, started with the request context, so every timer
stops when the client goes away.
*/
func (c GalleryController) CarouselStream(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		albums []*models.Album
	)

	if albums, err = c.albumService.GetAlbums(); err != nil {
		slog.Error("error getting albums for carousel stream", "error", err)
		httphelpers.TextInternalServerError(w, "There was a problem loading the albums.")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	carousels := c.loadCarousels(ctx, albums)

	defer func() {
		for _, ac := range carousels {
			ac.carousel.Stop()
		}
	}()

	defer cancel()

	rc := http.NewResponseController(w)

	if err = rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("could not clear write deadline for carousel stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events := make(chan carouselEvent, len(carousels)+1)

	for _, ac := range carousels {
		if err = writeCarouselEvent(w, carouselEvent{AlbumID: ac.albumID, Frame: ac.carousel.Current()}); err != nil {
			return
		}

		albumID := ac.albumID

		ac.carousel.Start(ctx, func(frame carousel.Frame) {
			select {
			case events <- carouselEvent{AlbumID: albumID, Frame: frame}:
			case <-ctx.Done():
			}
		})
	}

	if err = rc.Flush(); err != nil {
		slog.Error("streaming is not supported by this response writer", "error", err)
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event := <-events:
			if err = writeCarouselEvent(w, event); err != nil {
				slog.Debug("carousel client went away", "error", err)
				return
			}

		case <-keepAlive.C:
			if _, err = io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}

		if err = rc.Flush(); err != nil {
			return
		}
	}
}

/*
loadCarousels fetches the first photos of every album concurrently and
builds one carousel per album, in album order.
*/
func (c GalleryController) loadCarousels(ctx context.Context, albums []*models.Album) []albumCarousel {
	var (
		mu sync.Mutex
	)

	photosByAlbum := make(map[string][]models.Photo, len(albums))
	urlFor := covers.URLFunc(c.storageService.PublicURL)

	pool := pond.NewPool(c.workers, pond.WithContext(ctx))

	for _, album := range albums {
		pool.Submit(func() {
			photos, err := c.photoService.GetPhotos(album.ID, c.prefetch)

			if err != nil {
				slog.Error("error getting carousel photos", "error", err, "albumID", album.ID)
				return
			}

			values := make([]models.Photo, 0, len(photos))

			for _, p := range photos {
				values = append(values, *p)
			}

			mu.Lock()
			photosByAlbum[album.ID] = values
			mu.Unlock()
		})
	}

	_ = pool.Stop().Wait()

	result := make([]albumCarousel, 0, len(albums))

	for _, album := range albums {
		car := carousel.New(
			covers.CoverOrPlaceholder(*album, urlFor),
			carousel.WithInterval(c.carouselInterval),
		)

		car.Load(photosByAlbum[album.ID], urlFor)
		result = append(result, albumCarousel{albumID: album.ID, carousel: car})
	}

	return result
}

func writeCarouselEvent(w io.Writer, event carouselEvent) error {
	data, err := json.Marshal(event)

	if err != nil {
		return fmt.Errorf("error encoding carousel frame: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: frame\ndata: %s\n\n", data)
	return err
}
