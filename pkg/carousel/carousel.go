/*
Package carousel cycles an album card through a small set of its photos.
A Carousel starts idle and shows its fallback image (the album's resolved
cover or the placeholder). Once loaded with more than one photo it can be
started, after which it advances one photo per interval until its context
is cancelled or Stop is called.
*/
package carousel

import (
	"context"
	"sync"
	"time"

	"github.com/adampresley/photoportfolio/pkg/covers"
	"github.com/adampresley/photoportfolio/pkg/models"
)

const (
	DefaultInterval = 3000 * time.Millisecond
	DefaultPrefetch = 5
)

/*
TickerFunc arms a repeating ticker. It returns the tick channel and a
function that releases the ticker.
*/
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

type Option func(c *Carousel)

func WithInterval(d time.Duration) Option {
	return func(c *Carousel) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithTicker(fn TickerFunc) Option {
	return func(c *Carousel) {
		if fn != nil {
			c.newTicker = fn
		}
	}
}

/*
Frame is what an album card should display right now.
*/
type Frame struct {
	Index         int    `json:"index"`
	URL           string `json:"url"`
	Fallback      string `json:"fallback"`
	UsingFallback bool   `json:"usingFallback"`
}

type Carousel struct {
	runMu     sync.Mutex
	mu        sync.Mutex
	urls      []string
	failed    map[int]bool
	index     int
	fallback  string
	interval  time.Duration
	newTicker TickerFunc

	stop chan struct{}
	done chan struct{}
}

func New(fallback string, opts ...Option) *Carousel {
	if fallback == "" {
		fallback = covers.Placeholder
	}

	c := &Carousel{
		failed:    map[int]bool{},
		fallback:  fallback,
		interval:  DefaultInterval,
		newTicker: defaultTicker,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func defaultTicker(d time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}

/*
Load replaces the rotation set. Photos whose URL can't be resolved are
marked as failed so they render the fallback. If the size of the set
changes while rotating, the rotation is cancelled and must be started
again by the owner.
*/
func (c *Carousel) Load(photos []models.Photo, urlFor covers.URLFunc) {
	urls := make([]string, 0, len(photos))

	for _, photo := range photos {
		urls = append(urls, covers.ResolvePhotoURL(photo, urlFor))
	}

	c.mu.Lock()
	sizeChanged := len(urls) != len(c.urls)
	c.urls = urls
	c.failed = map[int]bool{}
	c.mu.Unlock()

	for i, u := range urls {
		if u == "" {
			c.MarkError(i)
		}
	}

	if sizeChanged {
		c.Stop()
	}
}

func (c *Carousel) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.urls)
}

/*
Index is the current position, always in [0, Size()) when the set is
not empty, and 0 otherwise.
*/
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex()
}

func (c *Carousel) currentIndex() int {
	if len(c.urls) == 0 {
		return 0
	}

	return c.index % len(c.urls)
}

func (c *Carousel) Current() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame()
}

func (c *Carousel) frame() Frame {
	index := c.currentIndex()

	result := Frame{
		Index:    index,
		Fallback: c.fallback,
	}

	if len(c.urls) == 0 || c.failed[index] {
		result.URL = c.fallback
		result.UsingFallback = true
		return result
	}

	result.URL = c.urls[index]
	return result
}

/*
Tick advances to the next photo, wrapping around at the end. It does
nothing when there is one photo or none.
*/
func (c *Carousel) Tick() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.urls) > 1 {
		c.index = (c.index + 1) % len(c.urls)
	}

	return c.frame()
}

/*
MarkError records that the photo at index failed to render. That frame
shows the fallback from now on; the other photos keep rotating.
*/
func (c *Carousel) MarkError(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.urls) {
		return
	}

	c.failed[index] = true
}

/*
Start arms the rotation timer and calls onTick with each new frame. Any
previous timer is cancelled first. Nothing is scheduled, and false is
returned, when the set has fewer than two photos. Concurrent calls to
Start and Stop are serialized, so at most one timer is ever armed.
*/
func (c *Carousel) Start(ctx context.Context, onTick func(Frame)) bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.stopRotation()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.urls) <= 1 {
		return false
	}

	ticks, release := c.newTicker(c.interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	c.stop = stop
	c.done = done

	go func() {
		defer close(done)
		defer release()

		for {
			select {
			case <-ctx.Done():
				return

			case <-stop:
				return

			case <-ticks:
				frame := c.Tick()

				if onTick != nil {
					onTick(frame)
				}
			}
		}
	}()

	return true
}

/*
Stop cancels the rotation timer, if any, and waits for it to finish.
*/
func (c *Carousel) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.stopRotation()
}

func (c *Carousel) stopRotation() {
	c.mu.Lock()
	stop := c.stop
	done := c.done
	c.stop = nil
	c.done = nil
	c.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
}

func (c *Carousel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done == nil {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

/*
Next returns the index after current in a set of n items, wrapping to
the start.
*/
func Next(current, n int) int {
	if n <= 0 {
		return 0
	}

	return (mod(current, n) + 1) % n
}

/*
Prev returns the index before current in a set of n items, wrapping to
the end.
*/
func Prev(current, n int) int {
	if n <= 0 {
		return 0
	}

	return (mod(current, n) - 1 + n) % n
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
