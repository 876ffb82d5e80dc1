package xscroll

import (
	"time"

	"fyne.io/fyne/v2"
)

// frameTicker runs fn on the fyne event loop at a fixed cadence until
// stopped. Start and Stop must be called from the UI thread; the goroutine
// only relays ticks through fyne.Do.
type frameTicker struct {
	interval time.Duration
	fn       func()

	ticker *time.Ticker
	stop   chan struct{}
}

func newFrameTicker(interval time.Duration, fn func()) *frameTicker {
	return &frameTicker{interval: interval, fn: fn}
}

func (t *frameTicker) Start() {
	if t.ticker != nil {
		return
	}
	t.ticker = time.NewTicker(t.interval)
	t.stop = make(chan struct{})

	ticker := t.ticker
	stop := t.stop
	go func() {
		for {
			select {
			case <-ticker.C:
				fyne.Do(t.fn)
			case <-stop:
				return
			}
		}
	}()
}

func (t *frameTicker) Stop() {
	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	t.ticker = nil
	close(t.stop)
	t.stop = nil
}

func (t *frameTicker) Running() bool {
	return t.ticker != nil
}
