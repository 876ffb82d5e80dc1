// Package preview decodes and downscales images off the UI thread, for cells
// that show a thumbnail. Requests are served newest-first so the items the
// user is currently looking at win over ones already scrolled past.
package preview

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"
)

const defaultCapacity = 100

type request struct {
	path string
	side int
	done func(image.Image)
}

// Loader runs a fixed pool of decode workers over a bounded LIFO queue.
// Decoded previews are kept in an in-memory cache keyed by path.
type Loader struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []request
	closed   bool
	capacity int

	cache sync.Map // map[string]image.Image
	wg    sync.WaitGroup
}

// NewLoader starts a loader with the given worker count and queue capacity.
// Zero or negative arguments fall back to one worker and the default capacity.
func NewLoader(workers, capacity int) *Loader {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = defaultCapacity
	}
	l := &Loader{
		queue:    make([]request, 0, capacity),
		capacity: capacity,
	}
	l.cond = sync.NewCond(&l.mu)
	for i := 0; i < workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}
	return l
}

// Get returns the cached preview for path, or nil when none has been decoded
// yet. It never queues work.
func (l *Loader) Get(path string) image.Image {
	if cached, ok := l.cache.Load(path); ok {
		return cached.(image.Image)
	}
	return nil
}

// Load requests a side x side preview of the image at path. A cache hit calls
// done synchronously; otherwise the request is queued and done runs on a
// worker goroutine once the decode finishes. Files that fail to decode are
// dropped silently.
//
// The queue keeps only the newest requests: when it is full the oldest
// pending request is discarded. Cells scrolled out of view simply stop
// mattering, so their stale requests are the right ones to shed.
func (l *Loader) Load(path string, side int, done func(image.Image)) {
	if path == "" || side <= 0 || done == nil {
		return
	}
	if cached, ok := l.cache.Load(path); ok {
		done(cached.(image.Image))
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if len(l.queue) >= l.capacity {
		l.queue = l.queue[1:]
	}
	l.queue = append(l.queue, request{path: path, side: side, done: done})
	l.cond.Signal()
	l.mu.Unlock()
}

// Close stops the workers after their current decode. Pending requests are
// dropped; Load becomes a no-op.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		last := len(l.queue) - 1
		req := l.queue[last]
		l.queue = l.queue[:last]
		l.mu.Unlock()

		if cached, ok := l.cache.Load(req.path); ok {
			req.done(cached.(image.Image))
			continue
		}
		img, err := decodeScaled(req.path, req.side)
		if err != nil || img == nil {
			continue
		}
		l.cache.Store(req.path, img)
		req.done(img)
	}
}

// decodeScaled decodes the image at path and letterboxes it into a side x side
// square, preserving the aspect ratio.
func decodeScaled(path string, side int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{image.Black}, image.Point{}, draw.Src)

	var scaledW, scaledH int
	ratio := float64(srcW) / float64(srcH)
	if ratio > 1 {
		scaledW = side
		scaledH = int(float64(side) / ratio)
	} else {
		scaledH = side
		scaledW = int(float64(side) * ratio)
	}
	xBase := (side - scaledW) / 2
	yBase := (side - scaledH) / 2
	target := image.Rect(xBase, yBase, xBase+scaledW, yBase+scaledH)

	// ApproxBiLinear is fast enough for thumbnails and good enough to look at.
	draw.ApproxBiLinear.Scale(dst, target, src, srcBounds, draw.Over, nil)
	return dst, nil
}
