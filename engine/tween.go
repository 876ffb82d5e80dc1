package engine

// Bounds on the duration of a programmatic scroll. Longer scrolls take
// longer, up to tweenMaxDuration.
const (
	tweenMinDuration float32 = 0.15 // seconds
	tweenMaxDuration float32 = 0.45
	tweenDistanceRef float32 = 4000 // px covered per extra second
)

// tween moves the offset to a target over a fixed duration, stepped once per
// tick. It is a plain elapsed-fraction state machine: Cancel drops remaining
// progress immediately and nothing runs between ticks.
type tween struct {
	from     float32
	to       float32
	duration float32
	elapsed  float32
	active   bool
}

func (t *tween) Start(from, to float32) {
	t.from = from
	t.to = to
	t.duration = clamp32(tweenMinDuration+abs32(to-from)/tweenDistanceRef,
		tweenMinDuration, tweenMaxDuration)
	t.elapsed = 0
	t.active = true
}

func (t *tween) Cancel() {
	t.active = false
}

// Step advances by dt seconds and returns the eased offset. done is true on
// the tick that lands on the target; the tween deactivates itself then.
func (t *tween) Step(dt float32) (pos float32, done bool) {
	if !t.active {
		return t.to, true
	}
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.active = false
		return t.to, true
	}
	f := easeOutCubic(t.elapsed / t.duration)
	return t.from + (t.to-t.from)*f, false
}

func easeOutCubic(x float32) float32 {
	inv := 1 - x
	return 1 - inv*inv*inv
}
