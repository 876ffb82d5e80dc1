// Package xscroll provides kinetic, virtualized list and grid widgets for
// Fyne. A List keeps only the visible cells (plus a small buffer) alive and
// rebinds them to new data indices as the viewport moves, so it stays cheap
// over data sets far too large to materialize. Scrolling is touch-driven:
// drags feed a velocity estimator, releases fling with inertial decay, and
// overshooting either end springs back.
//
// The virtualization and physics live in the engine package, which is
// toolkit-agnostic; this package is its Fyne adapter.
package xscroll

import (
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/xscroll/engine"
)

// List is a scrolling list or grid over a callback-provided data set. The
// zero value is not usable; construct with NewList or NewGrid.
type List struct {
	widget.BaseWidget

	length func() int
	create func(kind int) fyne.CanvasObject
	bind   func(index int, o fyne.CanvasObject)

	kindOf     func(index int) int
	sizeOf     func(index int) float32
	onSelected func(index int)

	itemSize     float32 // 0 means derive from the theme
	columns      int
	spacing      float32 // -1 means theme padding
	crossSpacing float32
	buffer       int
	horizontal   bool
	reverse      bool
	pixelAligned bool
	naturalDecay bool
	appear       Appear

	eng      *engine.Viewport[fyne.CanvasObject]
	cellPane *fyne.Container
	clip     *container.Scroll
	bar      *indicator
	ticker   *frameTicker

	anims         map[fyne.CanvasObject]*fyne.Animation
	pendingAppear fyne.CanvasObject

	dragging    bool
	lastDragEnd time.Time
	lastOffset  float32
	animOK      bool
}

var _ fyne.Draggable = (*List)(nil)
var _ fyne.Scrollable = (*List)(nil)
var _ fyne.Tappable = (*List)(nil)

// NewList returns a vertical list. length reports the data set size, create
// builds one empty cell, and bind renders the item at index into a cell.
// Cells are recycled: bind must fully overwrite whatever the cell showed
// before.
func NewList(length func() int, create func() fyne.CanvasObject, bind func(index int, o fyne.CanvasObject)) *List {
	l := newList(length, bind)
	l.create = func(int) fyne.CanvasObject { return create() }
	return l
}

// NewGrid returns a vertical grid with the given number of columns, filling
// each row left to right before moving down.
func NewGrid(length func() int, columns int, create func() fyne.CanvasObject, bind func(index int, o fyne.CanvasObject)) *List {
	l := NewList(length, create, bind)
	l.columns = columns
	return l
}

func newList(length func() int, bind func(index int, o fyne.CanvasObject)) *List {
	l := &List{
		length:  length,
		bind:    bind,
		columns: 1,
		spacing: -1,
		buffer:  engine.DefaultBuffer,
		anims:   make(map[fyne.CanvasObject]*fyne.Animation),
	}
	l.ExtendBaseWidget(l)
	return l
}

// SetItemHeight fixes every item's extent along the scroll axis (height when
// vertical, width when horizontal). It replaces any per-item size function.
func (l *List) SetItemHeight(h float32) {
	l.itemSize = h
	if l.sizeOf != nil {
		l.sizeOf = nil
		l.restructure()
		return
	}
	if l.eng != nil {
		l.eng.SetItemExtent(h)
		l.syncOffset()
	}
}

// SetItemHeightFunc switches to per-item extents. f must return the same
// value for an index until UpdateItemSize or UpdateItemSizes announces a
// change. Per-item extents force a single column.
func (l *List) SetItemHeightFunc(f func(index int) float32) {
	l.sizeOf = f
	l.restructure()
}

// SetKinds enables heterogeneous cells: kindOf maps an index to a cell kind
// and create builds an empty cell of one kind. Cells are recycled per kind.
func (l *List) SetKinds(kindOf func(index int) int, create func(kind int) fyne.CanvasObject) {
	l.kindOf = kindOf
	l.create = create
	l.restructure()
}

// SetColumns changes the number of items per row. Ignored while a per-item
// size function is set.
func (l *List) SetColumns(n int) {
	if n < 1 {
		n = 1
	}
	l.columns = n
	l.restructure()
}

// SetSpacing sets the gap between rows and between cells within a row. A
// negative primary spacing falls back to the theme padding.
func (l *List) SetSpacing(primary, cross float32) {
	l.spacing = primary
	l.crossSpacing = cross
	l.restructure()
}

// SetBuffer sets how many extra off-screen cells stay bound past each edge.
func (l *List) SetBuffer(n int) {
	l.buffer = n
	l.restructure()
}

// SetHorizontal switches the scroll axis.
func (l *List) SetHorizontal(horizontal bool) {
	l.horizontal = horizontal
	l.restructure()
}

// SetReverse flips the axis direction, so item 0 sits at the bottom (or
// right) edge and scrolling forward moves toward the top.
func (l *List) SetReverse(reverse bool) {
	l.reverse = reverse
	if l.eng != nil {
		l.eng.PlaceVisible()
	}
}

// SetPixelAligned rounds cell placement to whole pixels, trading smoothness
// for crisp text during slow scrolls.
func (l *List) SetPixelAligned(aligned bool) {
	l.pixelAligned = aligned
	l.restructure()
}

// SetNaturalDecay picks the fling friction by speed tier instead of one
// fixed coefficient, so fast flings glide and slow drifts settle quickly.
func (l *List) SetNaturalDecay(natural bool) {
	l.naturalDecay = natural
	l.restructure()
}

// SetOnSelected registers a tap handler receiving the tapped item's index.
func (l *List) SetOnSelected(f func(index int)) {
	l.onSelected = f
}

// SetAppear selects the entrance animation for newly exposed cells.
func (l *List) SetAppear(a Appear) {
	l.appear = a
}

// ScrollToIndex brings the item at index to the start of the viewport,
// animated or jumping. Animation degrades to a jump when the desktop asks
// for reduced motion.
func (l *List) ScrollToIndex(index int, animate bool) {
	if l.eng == nil {
		return
	}
	l.eng.ScrollToIndex(index, animate && l.animOK)
	l.afterScrollRequest()
}

// ScrollToTop scrolls to the first item.
func (l *List) ScrollToTop(animate bool) {
	if l.eng == nil {
		return
	}
	l.eng.ScrollToTop(animate && l.animOK)
	l.afterScrollRequest()
}

// ScrollToBottom scrolls to the last item.
func (l *List) ScrollToBottom(animate bool) {
	if l.eng == nil {
		return
	}
	l.eng.ScrollToBottom(animate && l.animOK)
	l.afterScrollRequest()
}

// Offset returns the current scroll position in content space.
func (l *List) Offset() float32 {
	if l.eng == nil {
		return 0
	}
	return l.eng.Offset()
}

// SetOffset jumps to an absolute scroll position, clamped to the content.
func (l *List) SetOffset(pos float32) {
	if l.eng == nil {
		return
	}
	l.eng.SetOffset(pos)
	l.syncOffset()
}

// RefreshIndex re-binds the cell showing index, if it is currently visible.
// Cheaper than Refresh when a single item's data changed.
func (l *List) RefreshIndex(index int) {
	if l.eng != nil {
		l.eng.RefreshIndex(index)
	}
}

// UpdateItemSize re-queries the size function for one index and reflows the
// items after it.
func (l *List) UpdateItemSize(index int) {
	if l.eng == nil {
		return
	}
	l.eng.UpdateItemSize(index)
	l.syncOffset()
}

// UpdateItemSizes is the batched form of UpdateItemSize: one reflow from the
// lowest changed index.
func (l *List) UpdateItemSizes(indices []int) {
	if l.eng == nil {
		return
	}
	l.eng.UpdateItemSizes(indices)
	l.syncOffset()
}

// Refresh re-reads the data length and rebinds every visible cell.
func (l *List) Refresh() {
	if l.eng != nil && l.length != nil {
		l.eng.SetTotalCount(l.length())
		l.eng.RefreshVisible()
		l.syncOffset()
	}
	l.BaseWidget.Refresh()
}

// CreateRenderer is an internal detail of the widget lifecycle.
func (l *List) CreateRenderer() fyne.WidgetRenderer {
	l.ensureEngine()
	return &listRenderer{list: l}
}

// Dragged drives the scroll position directly from the finger and records
// the deltas for the release-velocity estimate.
func (l *List) Dragged(e *fyne.DragEvent) {
	if l.eng == nil {
		return
	}
	if !l.dragging {
		l.dragging = true
		l.ticker.Stop()
		l.eng.TouchStart()
	}
	d := e.Dragged.DY
	if l.horizontal {
		d = e.Dragged.DX
	}
	if isBadDelta(d) {
		return
	}
	delta := -d
	if l.reverse {
		delta = d
	}
	l.eng.TouchMove(delta, time.Now())
	l.syncOffset()
}

// DragEnd releases the finger. If the gesture ended with speed the list
// coasts with inertia, and any boundary overshoot springs back.
func (l *List) DragEnd() {
	if !l.dragging || l.eng == nil {
		return
	}
	l.dragging = false
	l.lastDragEnd = time.Now()
	l.eng.TouchEnd(time.Now())
	l.startMotion()
}

// Scrolled nudges the position by a wheel step; overshoot past either end is
// settled by the boundary spring on the following ticks.
func (l *List) Scrolled(e *fyne.ScrollEvent) {
	if l.eng == nil {
		return
	}
	d := e.Scrolled.DY
	if l.horizontal && e.Scrolled.DX != 0 {
		d = e.Scrolled.DX
	}
	// Some drivers emit junk deltas; never integrate those.
	if isBadDelta(d) {
		return
	}
	delta := -d
	if l.reverse {
		delta = d
	}
	l.eng.Nudge(delta)
	l.syncOffset()
	l.startMotion()
}

// Tapped maps the tap to the item under it and reports it to the selection
// handler. Taps landing right after a drag are ignored, since on some
// platforms the release of a fling also fires a tap.
func (l *List) Tapped(e *fyne.PointEvent) {
	if l.onSelected == nil || l.eng == nil {
		return
	}
	if l.dragging || time.Since(l.lastDragEnd) < tapAfterDragGuard {
		return
	}
	primary, cross := l.pointToContent(e.Position)
	if index := l.eng.IndexAt(primary, cross); index >= 0 {
		l.onSelected(index)
	}
}

func (l *List) ensureEngine() {
	if l.eng != nil {
		return
	}
	if l.cellPane == nil {
		l.cellPane = container.NewWithoutLayout()
		l.clip = container.NewScroll(l.cellPane)
		l.clip.Direction = container.ScrollNone
		l.bar = newIndicator()
		l.ticker = newFrameTicker(tickInterval, l.tick)
	}

	eng, err := engine.New(l.engineConfig(), engine.Callbacks[fyne.CanvasObject]{
		Create: func(kind int) (fyne.CanvasObject, bool) {
			o := l.create(kind)
			if o == nil {
				return nil, false
			}
			l.cellPane.Add(o)
			return o, true
		},
		Destroy: func(o fyne.CanvasObject) {
			l.stopAppear(o)
			l.cellPane.Remove(o)
		},
		Activate: func(o fyne.CanvasObject, active bool) {
			if active {
				o.Show()
			} else {
				l.stopAppear(o)
				o.Hide()
			}
		},
		Bind: func(o fyne.CanvasObject, index int) {
			l.bind(index, o)
			if l.appear != AppearNone && l.animOK && (l.dragging || l.ticker.Running()) {
				l.pendingAppear = o
			}
		},
		Place:  l.placeCell,
		SizeOf: l.sizeOf,
		KindOf: l.kindOf,
	})
	if err != nil {
		fyne.LogError("xscroll: engine setup", err)
		return
	}
	l.eng = eng
	l.animOK = animationsEnabled()
	if l.length != nil {
		l.eng.SetTotalCount(l.length())
	}
}

func (l *List) engineConfig() engine.Config {
	mode := engine.ModeFixed
	if l.sizeOf != nil {
		mode = engine.ModeVariable
	}
	spacing := l.spacing
	if spacing < 0 {
		spacing = theme.Padding()
	}
	return engine.Config{
		Mode:         mode,
		Lines:        l.effectiveColumns(),
		ItemSize:     l.itemExtent(),
		Spacing:      spacing,
		CrossSpacing: l.crossSpacing,
		Buffer:       l.buffer,
		PixelAligned: l.pixelAligned,
		NaturalDecay: l.naturalDecay,
		Diag: func(err error) {
			fyne.LogError("xscroll", err)
		},
	}
}

func (l *List) effectiveColumns() int {
	if l.sizeOf != nil || l.columns < 1 {
		return 1
	}
	return l.columns
}

func (l *List) itemExtent() float32 {
	if l.itemSize > 0 {
		return l.itemSize
	}
	s, _ := fyne.CurrentApp().Driver().RenderedTextSize("A", theme.TextSize(), fyne.TextStyle{}, nil)
	return s.Height + theme.Padding()*2
}

// restructure rebuilds the engine after a setter changed its layout or
// physics configuration, keeping the scroll position.
func (l *List) restructure() {
	if l.eng == nil {
		return
	}
	offset := l.eng.Offset()
	l.ticker.Stop()
	l.stopAllAppear()
	l.eng.Close()
	l.eng = nil

	l.ensureEngine()
	if l.eng == nil {
		return
	}
	if size := l.Size(); size.Width > 0 || size.Height > 0 {
		l.applyViewport(size)
	}
	l.eng.SetOffset(offset)
	l.syncOffset()
}

func (l *List) applyViewport(size fyne.Size) {
	if l.eng == nil {
		return
	}
	primary, cross := size.Height, size.Width
	if l.horizontal {
		primary, cross = size.Width, size.Height
	}
	cols := float32(l.effectiveColumns())
	cell := (cross - (cols-1)*l.crossSpacing) / cols
	if cell < 0 {
		cell = 0
	}
	l.eng.SetCellCross(cell)
	l.eng.SetViewport(primary, cross)
	l.lastOffset = l.eng.Offset()
	l.eng.PlaceVisible()
}

// placeCell maps engine content-space placement to widget coordinates,
// applying the scroll offset and the axis direction.
func (l *List) placeCell(o fyne.CanvasObject, primary, cross, size, crossSize float32) {
	screen := primary - l.eng.Offset()
	if l.reverse {
		screen = l.viewportPrimary() - (primary - l.eng.Offset()) - size
	}

	var pos fyne.Position
	var sz fyne.Size
	if l.horizontal {
		pos, sz = fyne.NewPos(screen, cross), fyne.NewSize(size, crossSize)
	} else {
		pos, sz = fyne.NewPos(cross, screen), fyne.NewSize(crossSize, size)
	}
	o.Resize(sz)
	o.Move(pos)

	if l.pendingAppear == o {
		l.pendingAppear = nil
		l.animateAppear(o, pos, sz)
	}
}

func (l *List) pointToContent(p fyne.Position) (primary, cross float32) {
	sp, sc := p.Y, p.X
	if l.horizontal {
		sp, sc = p.X, p.Y
	}
	if l.reverse {
		return l.viewportPrimary() - sp + l.eng.Offset(), sc
	}
	return sp + l.eng.Offset(), sc
}

func (l *List) viewportPrimary() float32 {
	if l.horizontal {
		return l.Size().Width
	}
	return l.Size().Height
}

// tick advances the engine one frame on the UI thread and stops the ticker
// once all motion has settled.
func (l *List) tick() {
	if l.eng == nil {
		return
	}
	more := l.eng.Tick(time.Now())
	l.syncOffset()
	if !more {
		l.ticker.Stop()
		l.bar.fadeOut()
	}
}

// syncOffset re-places the visible cells and the indicator after any change
// of scroll position.
func (l *List) syncOffset() {
	if l.eng == nil {
		return
	}
	offset := l.eng.Offset()
	if offset == l.lastOffset {
		return
	}
	l.lastOffset = offset
	l.eng.PlaceVisible()

	_, max := l.eng.Bounds()
	l.bar.update(l.Size(), l.horizontal, l.reverse, offset, max, l.eng.ContentSize())
}

func (l *List) startMotion() {
	if l.eng != nil && l.eng.Moving() {
		l.ticker.Start()
	} else {
		l.bar.fadeOut()
	}
}

func (l *List) afterScrollRequest() {
	l.syncOffset()
	if l.eng.Moving() {
		l.ticker.Start()
	}
}

func isBadDelta(d float32) bool {
	f := float64(d)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

type listRenderer struct {
	list *List
}

func (r *listRenderer) Layout(size fyne.Size) {
	l := r.list
	l.clip.Resize(size)
	l.cellPane.Resize(size)
	if l.eng == nil {
		return
	}
	l.applyViewport(size)

	_, max := l.eng.Bounds()
	l.bar.update(size, l.horizontal, l.reverse, l.eng.Offset(), max, l.eng.ContentSize())
}

func (r *listRenderer) MinSize() fyne.Size {
	return fyne.NewSize(32, 32)
}

func (r *listRenderer) Refresh() {
	r.list.clip.Refresh()
}

func (r *listRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.list.clip, r.list.bar.object()}
}

func (r *listRenderer) Destroy() {
	l := r.list
	l.ticker.Stop()
	l.stopAllAppear()
	l.bar.dispose()
	if l.eng != nil {
		l.eng.Close()
		l.eng = nil
	}
}
