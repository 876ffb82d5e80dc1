package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingCallback is returned by New when a callback the configured mode
// requires has not been set.
var ErrMissingCallback = errors.New("engine: required callback not set")

// maxTickStep caps the integration step so a stalled frame (window drag,
// debugger pause) does not turn into one giant, unstable physics step.
const maxTickStep float32 = 1.0 / 20

// touchSlackFactor is how far past the bounds a finger may drag the offset,
// as a fraction of the viewport extent.
const touchSlackFactor float32 = 0.5

// Viewport is the engine's public face: it owns the size index, view pool,
// slot window and physics, keeps the scroll bounds current, and exposes the
// scroll and data operations a widget adapter builds on.
//
// All methods must be called from one logical thread, and the injected
// callbacks must not re-enter the Viewport. Tick drives motion; input
// methods are expected between ticks, never during one.
type Viewport[V any] struct {
	cfg Config
	cb  Callbacks[V]

	idx  *sizeIndex // ModeVariable only
	pool *pool[V]
	win  *window[V]
	phys *physics
	tw   tween

	viewport float32 // primary-axis extent
	cross    float32 // cross-axis extent
	lastTick time.Time
}

// New validates the callbacks against the configured mode and assembles a
// Viewport. Missing required callbacks fail construction outright rather than
// leaving a half-wired engine behind.
func New[V any](cfg Config, cb Callbacks[V]) (*Viewport[V], error) {
	cfg.normalize()
	switch {
	case cb.Create == nil:
		return nil, fmt.Errorf("%w: Create", ErrMissingCallback)
	case cb.Bind == nil:
		return nil, fmt.Errorf("%w: Bind", ErrMissingCallback)
	case cb.Place == nil:
		return nil, fmt.Errorf("%w: Place", ErrMissingCallback)
	case cfg.Mode == ModeVariable && cb.SizeOf == nil:
		return nil, fmt.Errorf("%w: SizeOf (ModeVariable)", ErrMissingCallback)
	}

	vp := &Viewport[V]{cfg: cfg, cb: cb}
	if cfg.Mode == ModeVariable {
		vp.idx = newSizeIndex(cfg.Spacing)
	}
	vp.pool = newPool(cb, vp.cfg.Diag)
	vp.win = newWindow(&vp.cfg, cb, vp.pool, vp.idx)
	vp.phys = newPhysics(&vp.cfg)
	return vp, nil
}

// SetViewport records the visible extent along both axes, grows the slot
// window to cover it and refreshes bounds and bindings.
func (vp *Viewport[V]) SetViewport(primary, cross float32) {
	if !finite32(primary) || !finite32(cross) {
		vp.cfg.Diag(fmt.Errorf("engine: ignoring non-finite viewport %v x %v", primary, cross))
		return
	}
	if primary == vp.viewport && cross == vp.cross {
		return
	}
	vp.viewport = primary
	vp.cross = cross
	vp.win.SetViewport(primary)
	vp.recomputeBounds()
	vp.win.Update(vp.phys.offset, true)
}

// SetCellCross updates the cross-axis extent of one cell. Only placement
// changes, so bound slots are just re-placed.
func (vp *Viewport[V]) SetCellCross(size float32) {
	if !finite32(size) || size == vp.cfg.CrossSize {
		return
	}
	vp.cfg.CrossSize = size
	vp.win.PlaceAll()
}

// SetItemExtent changes the shared item extent in fixed mode and rebinds the
// window at the new geometry. Variable mode ignores it; sizes come from the
// SizeOf callback there.
func (vp *Viewport[V]) SetItemExtent(size float32) {
	if vp.cfg.Mode != ModeFixed || !finite32(size) || size <= 0 {
		return
	}
	if size == vp.cfg.ItemSize {
		return
	}
	vp.cfg.ItemSize = size
	vp.win.SetViewport(vp.viewport)
	vp.recomputeBounds()
	vp.win.Update(vp.phys.offset, true)
}

// SetTotalCount resizes the data set. The size index grows or shrinks
// incrementally, bounds are recomputed and the whole window is rebound.
// Negative counts clamp to zero.
func (vp *Viewport[V]) SetTotalCount(n int) {
	if n < 0 {
		n = 0
	}
	if vp.idx != nil {
		vp.idx.SetLen(n, vp.cb.SizeOf)
	}
	vp.win.SetTotal(n)
	vp.win.SetViewport(vp.viewport)
	vp.recomputeBounds()
	vp.win.Update(vp.phys.offset, true)
}

// TotalCount returns the current data set size.
func (vp *Viewport[V]) TotalCount() int {
	return vp.win.total
}

// ContentSize is the primary-axis extent of the whole data set.
func (vp *Viewport[V]) ContentSize() float32 {
	return vp.win.ContentSize()
}

// Bounds returns the valid offset range.
func (vp *Viewport[V]) Bounds() (min, max float32) {
	return vp.phys.minBound, vp.phys.maxBound
}

// Offset returns the current scroll offset, pixel-rounded when configured.
func (vp *Viewport[V]) Offset() float32 {
	if vp.cfg.PixelAligned {
		return round32(vp.phys.offset)
	}
	return vp.phys.offset
}

// SetOffset jumps the offset to pos, clamped to the bounds. Any in-flight
// motion stops; non-finite positions are ignored.
func (vp *Viewport[V]) SetOffset(pos float32) {
	if !finite32(pos) {
		return
	}
	vp.tw.Cancel()
	vp.phys.SetOffset(clamp32(pos, vp.phys.minBound, vp.phys.maxBound))
	vp.win.Update(vp.phys.offset, false)
}

// Nudge shifts the offset by delta, as from a scroll wheel. The offset may
// overshoot the bounds slightly; the boundary spring settles it on following
// ticks. Non-finite deltas are ignored.
func (vp *Viewport[V]) Nudge(delta float32) {
	if !finite32(delta) || delta == 0 {
		return
	}
	vp.tw.Cancel()
	slack := vp.viewport * touchSlackFactor
	vp.phys.velocity = 0
	vp.phys.offset = clamp32(vp.phys.offset+delta, vp.phys.minBound-slack, vp.phys.maxBound+slack)
	vp.primeTick()
	vp.win.Update(vp.phys.offset, false)
}

// RefreshIndex re-runs the bind callback for one index if a slot currently
// shows it, and reports whether it did. Unbound indices are a no-op.
func (vp *Viewport[V]) RefreshIndex(index int) bool {
	if index < 0 || index >= vp.win.total {
		return false
	}
	return vp.win.RebindIndex(index)
}

// RefreshVisible re-runs bind and placement for every slot in the window.
func (vp *Viewport[V]) RefreshVisible() {
	vp.win.RebindAll()
}

// UpdateItemSize re-queries the SizeOf callback for one index and repairs the
// size index from that point on.
func (vp *Viewport[V]) UpdateItemSize(index int) {
	if vp.idx == nil || index < 0 || index >= vp.idx.Len() {
		return
	}
	vp.idx.SetSize(index, vp.cb.SizeOf(index))
	vp.afterSizeChange()
}

// SetItemSize records an explicit new extent for one index, bypassing the
// SizeOf callback.
func (vp *Viewport[V]) SetItemSize(index int, size float32) {
	if vp.idx == nil || index < 0 || index >= vp.idx.Len() {
		return
	}
	vp.idx.SetSize(index, size)
	vp.afterSizeChange()
}

// UpdateItemSizes re-queries extents for a batch of indices with a single
// prefix rebuild from the lowest changed index and one window update.
func (vp *Viewport[V]) UpdateItemSizes(indices []int) {
	if vp.idx == nil || len(indices) == 0 {
		return
	}
	lowest := -1
	for _, i := range indices {
		if i < 0 || i >= vp.idx.Len() {
			continue
		}
		if lowest == -1 || i < lowest {
			lowest = i
		}
	}
	if lowest == -1 {
		return
	}
	vp.idx.RebuildFrom(lowest, vp.cb.SizeOf)
	vp.afterSizeChange()
}

func (vp *Viewport[V]) afterSizeChange() {
	vp.win.SetViewport(vp.viewport)
	vp.recomputeBounds()
	vp.win.Update(vp.phys.offset, true)
}

// ScrollToIndex brings index to the start of the viewport, clamped to the
// bounds. With animate the move runs as a tween over the following ticks,
// otherwise it jumps. Either way any in-flight motion is cancelled first.
func (vp *Viewport[V]) ScrollToIndex(index int, animate bool) {
	if vp.win.total == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > vp.win.total-1 {
		index = vp.win.total - 1
	}
	var target float32
	if vp.idx != nil {
		target = vp.idx.PositionOf(index)
	} else {
		target = float32(index/vp.cfg.Lines) * vp.cfg.stride()
	}
	vp.scrollTo(target, animate)
}

// ScrollToTop scrolls to the content start.
func (vp *Viewport[V]) ScrollToTop(animate bool) {
	vp.scrollTo(vp.phys.minBound, animate)
}

// ScrollToBottom scrolls to the content end.
func (vp *Viewport[V]) ScrollToBottom(animate bool) {
	vp.scrollTo(vp.phys.maxBound, animate)
}

func (vp *Viewport[V]) scrollTo(target float32, animate bool) {
	target = clamp32(target, vp.phys.minBound, vp.phys.maxBound)
	vp.phys.velocity = 0
	vp.phys.samples = vp.phys.samples[:0]
	if !animate {
		vp.tw.Cancel()
		vp.phys.offset = target
		vp.win.Update(target, false)
		return
	}
	vp.tw.Start(vp.phys.offset, target)
	vp.primeTick()
}

// TouchStart claims the offset for a finger: free motion and any tween stop
// and the velocity samples restart.
func (vp *Viewport[V]) TouchStart() {
	vp.tw.Cancel()
	vp.phys.TouchStart()
}

// TouchMove applies one finger delta and syncs the window to the new offset.
func (vp *Viewport[V]) TouchMove(delta float32, at time.Time) {
	before := vp.phys.offset
	vp.phys.TouchMove(delta, at, vp.viewport*touchSlackFactor)
	if vp.phys.offset != before {
		vp.win.Update(vp.phys.offset, false)
	}
}

// TouchEnd releases the finger, estimating the fling velocity from the recent
// samples. The caller should begin ticking to run the fling out.
func (vp *Viewport[V]) TouchEnd(at time.Time) {
	vp.phys.TouchEnd(at)
	vp.primeTick()
}

// TouchCancel abandons the gesture without a fling. The offset may still be
// outside the bounds, so ticking should continue until Moving reports false.
func (vp *Viewport[V]) TouchCancel() {
	vp.phys.TouchCancel()
	vp.primeTick()
}

// Moving reports whether ticks still have motion to run: an active tween,
// residual velocity, or an out-of-bounds offset awaiting the spring.
func (vp *Viewport[V]) Moving() bool {
	return vp.tw.active || vp.phys.Moving()
}

// Tick advances motion to now and syncs the window when the offset moved.
// It reports whether more ticks are needed. The first tick after a rest only
// records its timestamp; integration starts with the next one.
func (vp *Viewport[V]) Tick(now time.Time) bool {
	var dt float32
	if !vp.lastTick.IsZero() {
		dt = float32(now.Sub(vp.lastTick).Seconds())
	}
	vp.lastTick = now
	if dt <= 0 {
		return vp.Moving()
	}
	if dt > maxTickStep {
		dt = maxTickStep
	}

	before := vp.phys.offset
	var more bool
	if vp.tw.active {
		pos, done := vp.tw.Step(dt)
		vp.phys.offset = pos
		more = !done
	} else {
		more = vp.phys.Step(dt)
	}
	if vp.phys.offset != before {
		vp.win.Update(vp.phys.offset, false)
	}
	if !more {
		vp.lastTick = time.Time{}
	}
	return more
}

// PlaceVisible re-emits placement for every bound slot, for adapters whose
// Place callback depends on the current offset.
func (vp *Viewport[V]) PlaceVisible() {
	vp.win.PlaceAll()
}

// IndexAt maps a content-space point to the data index under it, or -1 when
// it misses every item.
func (vp *Viewport[V]) IndexAt(primary, cross float32) int {
	if !finite32(primary) || !finite32(cross) {
		return -1
	}
	return vp.win.indexAtPoint(primary, cross)
}

// ViewOf returns the live view currently bound to index, if any.
func (vp *Viewport[V]) ViewOf(index int) (V, bool) {
	return vp.win.ViewOf(index)
}

// SlotCount returns the size of the slot window.
func (vp *Viewport[V]) SlotCount() int {
	return len(vp.win.slots)
}

// Close returns every view to the pool and destroys the pooled ones.
func (vp *Viewport[V]) Close() {
	vp.tw.Cancel()
	vp.phys.TouchCancel()
	vp.win.DetachAll()
	vp.pool.Clear()
}

// primeTick forgets the previous tick timestamp so the next Tick measures dt
// from a fresh start instead of across the idle gap.
func (vp *Viewport[V]) primeTick() {
	vp.lastTick = time.Time{}
}

func (vp *Viewport[V]) recomputeBounds() {
	content := vp.win.ContentSize()
	max := content - vp.viewport
	if max < 0 {
		max = 0
	}
	vp.phys.SetBounds(0, max)
	if !vp.phys.touching && !vp.tw.active {
		vp.phys.offset = clamp32(vp.phys.offset, 0, max)
	}
}
