package xscroll

import "time"

// Appear selects the entrance animation played on a cell when scrolling
// exposes it. Animations are skipped entirely when the desktop asks for
// reduced motion.
type Appear int

const (
	// AppearNone shows new cells in place.
	AppearNone Appear = iota
	// AppearSlide slides new cells in from the direction of travel.
	AppearSlide
	// AppearGrow scales new cells up from slightly below full size.
	AppearGrow
)

const (
	// tickInterval is the cadence of the motion ticker while scrolling.
	tickInterval = 15 * time.Millisecond

	// indicatorLinger is how long the position indicator stays visible
	// after motion stops.
	indicatorLinger = 600 * time.Millisecond

	// tapAfterDragGuard suppresses taps that land right after a drag, so
	// releasing a fling does not also select the item under the finger.
	tapAfterDragGuard = 200 * time.Millisecond

	scrollBarWidth      float32 = 5
	scrollBarPad        float32 = 3
	minBarLength        float32 = 24
	appearSlideDistance float32 = 24
)
