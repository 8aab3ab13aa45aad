package carousel_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/adampresley/photoportfolio/pkg/carousel"
	"github.com/adampresley/photoportfolio/pkg/covers"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	armed    int
	released int
	maxLive  int
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) ticker(d time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.armed++
	m.maxLive = max(m.maxLive, m.armed-m.released)

	return m.ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.released++
	}
}

func (m *manualTicker) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed, m.released
}

func urlFor(path string) string {
	return "https://storage.example.com/" + path
}

func photos(n int) []models.Photo {
	result := make([]models.Photo, 0, n)

	for i := range n {
		result = append(result, models.Photo{StoragePath: fmt.Sprintf("album/%d.jpg", i)})
	}

	return result
}

func TestIdleCarouselShowsFallback(t *testing.T) {
	c := carousel.New("https://cdn.example.com/cover.jpg")

	frame := c.Current()

	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, frame.Index)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", frame.URL)
	assert.True(t, frame.UsingFallback)
}

func TestEmptyFallbackUsesPlaceholder(t *testing.T) {
	c := carousel.New("")
	assert.Equal(t, covers.Placeholder, c.Current().URL)
}

func TestLoadEmptySetStaysIdle(t *testing.T) {
	c := carousel.New("cover")
	c.Load(nil, urlFor)

	assert.Equal(t, 0, c.Size())
	assert.Equal(t, "cover", c.Tick().URL)
}

func TestTickWrapsAround(t *testing.T) {
	for size := 2; size <= 5; size++ {
		for initial := 0; initial < size; initial++ {
			c := carousel.New("cover")
			c.Load(photos(size), urlFor)

			for range initial {
				c.Tick()
			}

			require.Equal(t, initial, c.Index())

			for n := 1; n <= 3*size; n++ {
				frame := c.Tick()

				want := (initial + n) % size
				assert.Equal(t, want, frame.Index)
				assert.GreaterOrEqual(t, frame.Index, 0)
				assert.Less(t, frame.Index, size)
				assert.Equal(t, fmt.Sprintf("https://storage.example.com/album/%d.jpg", want), frame.URL)
			}
		}
	}
}

func TestSinglePhotoNeverAdvances(t *testing.T) {
	c := carousel.New("cover")
	c.Load(photos(1), urlFor)

	assert.Equal(t, 0, c.Tick().Index)
	assert.Equal(t, "https://storage.example.com/album/0.jpg", c.Current().URL)
}

func TestStartDoesNotScheduleForSmallSets(t *testing.T) {
	for _, size := range []int{0, 1} {
		ticker := newManualTicker()
		c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
		c.Load(photos(size), urlFor)

		started := c.Start(context.Background(), nil)

		armed, _ := ticker.counts()
		assert.False(t, started)
		assert.False(t, c.Running())
		assert.Equal(t, 0, armed)
	}
}

func TestStartRotatesOnEachTick(t *testing.T) {
	ticker := newManualTicker()
	frames := make(chan carousel.Frame)

	c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
	c.Load(photos(3), urlFor)

	require.True(t, c.Start(context.Background(), func(f carousel.Frame) { frames <- f }))
	assert.True(t, c.Running())

	for _, want := range []int{1, 2, 0, 1} {
		ticker.ch <- time.Now()
		frame := <-frames
		assert.Equal(t, want, frame.Index)
	}

	c.Stop()

	armed, released := ticker.counts()
	assert.False(t, c.Running())
	assert.Equal(t, 1, armed)
	assert.Equal(t, 1, released)
}

func TestStartReplacesPreviousTimer(t *testing.T) {
	ticker := newManualTicker()

	c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
	c.Load(photos(3), urlFor)

	require.True(t, c.Start(context.Background(), nil))
	require.True(t, c.Start(context.Background(), nil))

	armed, released := ticker.counts()
	assert.Equal(t, 2, armed)
	assert.Equal(t, 1, released)

	c.Stop()

	_, released = ticker.counts()
	assert.Equal(t, 2, released)
}

func TestConcurrentStartArmsOneTimerAtATime(t *testing.T) {
	ticker := newManualTicker()

	c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
	c.Load(photos(3), urlFor)

	var wg sync.WaitGroup

	for range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			c.Start(context.Background(), nil)
		}()
	}

	wg.Wait()
	c.Stop()

	armed, released := ticker.counts()
	assert.Equal(t, 32, armed)
	assert.Equal(t, armed, released)
	assert.False(t, c.Running())

	ticker.mu.Lock()
	defer ticker.mu.Unlock()
	assert.Equal(t, 1, ticker.maxLive)
}

func TestContextCancellationStopsRotation(t *testing.T) {
	ticker := newManualTicker()
	ctx, cancel := context.WithCancel(context.Background())

	c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
	c.Load(photos(2), urlFor)
	require.True(t, c.Start(ctx, nil))

	cancel()

	assert.Eventually(t, func() bool { return !c.Running() }, time.Second, 5*time.Millisecond)

	_, released := ticker.counts()
	assert.Equal(t, 1, released)
}

func TestLoadWithDifferentSizeCancelsRotation(t *testing.T) {
	ticker := newManualTicker()

	c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
	c.Load(photos(4), urlFor)
	require.True(t, c.Start(context.Background(), nil))

	c.Load(photos(1), urlFor)

	assert.False(t, c.Running())
}

func TestLoadWithSameSizeKeepsRotation(t *testing.T) {
	ticker := newManualTicker()

	c := carousel.New("cover", carousel.WithTicker(ticker.ticker))
	c.Load(photos(3), urlFor)
	require.True(t, c.Start(context.Background(), nil))

	c.Load(photos(3), urlFor)

	assert.True(t, c.Running())
	c.Stop()
}

func TestShrinkingSetKeepsIndexInBounds(t *testing.T) {
	c := carousel.New("cover")
	c.Load(photos(5), urlFor)

	for range 4 {
		c.Tick()
	}

	require.Equal(t, 4, c.Index())

	c.Load(photos(3), urlFor)

	assert.Equal(t, 1, c.Index())
	assert.Equal(t, "https://storage.example.com/album/1.jpg", c.Current().URL)
	assert.Equal(t, 2, c.Tick().Index)
}

func TestMarkErrorUsesFallbackForThatFrameOnly(t *testing.T) {
	c := carousel.New("cover")
	c.Load(photos(3), urlFor)

	c.MarkError(1)

	frame := c.Tick()
	assert.Equal(t, 1, frame.Index)
	assert.Equal(t, "cover", frame.URL)
	assert.True(t, frame.UsingFallback)

	frame = c.Tick()
	assert.Equal(t, 2, frame.Index)
	assert.Equal(t, "https://storage.example.com/album/2.jpg", frame.URL)
	assert.False(t, frame.UsingFallback)
}

func TestMarkErrorOutOfRangeIsIgnored(t *testing.T) {
	c := carousel.New("cover")
	c.Load(photos(2), urlFor)

	c.MarkError(-1)
	c.MarkError(7)

	assert.False(t, c.Current().UsingFallback)
}

func TestUnresolvablePhotoIsMarkedFailed(t *testing.T) {
	c := carousel.New("cover")
	c.Load([]models.Photo{
		{StoragePath: "album/0.jpg"},
		{},
		{URL: "https://old.example.com/2.jpg"},
	}, urlFor)

	assert.False(t, c.Current().UsingFallback)
	assert.True(t, c.Tick().UsingFallback)
	assert.Equal(t, "https://old.example.com/2.jpg", c.Tick().URL)
}

func TestNextAndPrevWrap(t *testing.T) {
	assert.Equal(t, 1, carousel.Next(0, 3))
	assert.Equal(t, 0, carousel.Next(2, 3))
	assert.Equal(t, 2, carousel.Prev(0, 3))
	assert.Equal(t, 0, carousel.Prev(1, 3))
	assert.Equal(t, 0, carousel.Next(0, 0))
	assert.Equal(t, 0, carousel.Prev(0, 0))
	assert.Equal(t, 0, carousel.Next(5, 1))
}
