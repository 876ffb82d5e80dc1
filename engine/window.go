package engine

import "math"

type slot[V any] struct {
	view    V
	index   int
	kind    int
	hasView bool
	active  bool
}

// window owns the fixed set of view slots and their assignment to data
// indices. Moving the window by d items rotates the slot slice in place and
// rebinds only the d slots that wrapped around, so the cost of a scroll step
// grows with how far it moved rather than with the slot count. After any
// rotation every slot ends up bound exactly as a full relayout from scratch
// would leave it.
type window[V any] struct {
	cfg  *Config
	cb   Callbacks[V]
	pool *pool[V]
	idx  *sizeIndex // ModeVariable only, nil otherwise

	slots    []slot[V]
	first    int // data index bound to slots[0]
	total    int
	viewport float32
	primed   bool // slots have been bound at least once
}

func newWindow[V any](cfg *Config, cb Callbacks[V], pool *pool[V], idx *sizeIndex) *window[V] {
	return &window[V]{cfg: cfg, cb: cb, pool: pool, idx: idx, first: 0}
}

func (w *window[V]) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	w.total = total
}

// SetViewport records the viewport extent and grows the slot slice to cover
// it. The window never shrinks; a momentarily smaller viewport keeps the
// spare slots for when it grows back. Reports whether new slots appeared.
func (w *window[V]) SetViewport(extent float32) bool {
	w.viewport = extent
	want := w.targetSlotCount()
	if want <= len(w.slots) {
		return false
	}
	for len(w.slots) < want {
		w.slots = append(w.slots, slot[V]{index: -1})
	}
	return true
}

// targetSlotCount is the number of slots needed to cover the viewport with
// the smallest possible item stride, plus one partially visible line at each
// edge and the configured buffer.
func (w *window[V]) targetSlotCount() int {
	if w.viewport <= 0 {
		return len(w.slots)
	}
	stride := w.cfg.stride()
	if w.idx != nil {
		if m := w.idx.MinSize(); m > 0 {
			stride = m + w.cfg.Spacing
		}
	}
	if stride <= 0 {
		stride = fallbackExtent
	}
	perScreen := int(math.Ceil(float64(w.viewport) / float64(stride)))
	return (perScreen+2)*w.cfg.Lines + w.cfg.Buffer
}

// ContentSize is the primary-axis extent of the full data set.
func (w *window[V]) ContentSize() float32 {
	if w.idx != nil {
		return w.idx.ContentSize()
	}
	if w.total == 0 {
		return 0
	}
	lines := (w.total + w.cfg.Lines - 1) / w.cfg.Lines
	return float32(lines)*w.cfg.stride() - w.cfg.Spacing
}

// FirstFor maps a scroll offset to the data index the window should anchor
// at. The result is aligned to a line start. Data sets that fit entirely in
// the slot pool anchor at zero so edge scrolling never rotates.
func (w *window[V]) FirstFor(offset float32) int {
	if w.total == 0 || w.total <= len(w.slots) {
		return 0
	}
	var first int
	if w.idx != nil {
		first, _ = w.idx.VisibleRange(offset, w.viewport, w.cfg.Buffer)
	} else {
		pos := clamp32(offset, 0, w.ContentSize())
		first = int(pos/w.cfg.stride()) * w.cfg.Lines
	}
	if first > w.total-1 {
		first = w.total - 1
	}
	if first < 0 {
		first = 0
	}
	return first - first%w.cfg.Lines
}

// Update moves the window to cover offset. A small move rotates the slot
// slice and rebinds only the wrapped slots; force (or a jump past the whole
// window) rebinds everything.
func (w *window[V]) Update(offset float32, force bool) {
	n := len(w.slots)
	if n == 0 {
		return
	}
	first := w.FirstFor(offset)
	diff := first - w.first
	switch {
	case force || !w.primed || absInt(diff) >= n:
		w.first = first
		for i := range w.slots {
			w.bind(&w.slots[i], first+i)
		}
	case diff == 0:
		return
	case diff > 0:
		rotateSlotsLeft(w.slots, diff)
		w.first = first
		for i := n - diff; i < n; i++ {
			w.bind(&w.slots[i], first+i)
		}
	default:
		rotateSlotsRight(w.slots, -diff)
		w.first = first
		for i := 0; i < -diff; i++ {
			w.bind(&w.slots[i], first+i)
		}
	}
	w.primed = true
}

// RebindIndex re-runs Bind and Place for one index if a slot currently holds
// it. Reports whether the index was in the window.
func (w *window[V]) RebindIndex(index int) bool {
	i := index - w.first
	if !w.primed || i < 0 || i >= len(w.slots) {
		return false
	}
	w.bind(&w.slots[i], index)
	return true
}

// RebindAll re-runs Bind and Place for every slot at its current index.
func (w *window[V]) RebindAll() {
	if !w.primed {
		return
	}
	for i := range w.slots {
		w.bind(&w.slots[i], w.first+i)
	}
}

// PlaceAll re-emits placement for every bound slot. Used after geometry-only
// changes such as a new cross extent.
func (w *window[V]) PlaceAll() {
	for i := range w.slots {
		if w.slots[i].hasView && w.slots[i].active {
			w.place(&w.slots[i])
		}
	}
}

// ViewOf returns the live view bound to index, if the window holds one.
func (w *window[V]) ViewOf(index int) (V, bool) {
	if i := index - w.first; i >= 0 && i < len(w.slots) {
		if s := &w.slots[i]; s.hasView && s.active && s.index == index {
			return s.view, true
		}
	}
	var zero V
	return zero, false
}

// DetachAll returns every held view to the pool and forgets all bindings.
func (w *window[V]) DetachAll() {
	for i := range w.slots {
		s := &w.slots[i]
		if s.hasView {
			w.pool.Put(s.kind, s.view)
			var zero V
			s.view, s.hasView, s.active = zero, false, false
		}
		s.index = -1
	}
	w.first = 0
	w.primed = false
}

// bind points a slot at index: reconciles the view kind against the pool,
// renders the data into the view and places it. Indices outside the data set
// deactivate the slot but keep its view parked for reuse.
func (w *window[V]) bind(s *slot[V], index int) {
	s.index = index
	if index < 0 || index >= w.total {
		if s.hasView && s.active {
			if w.cb.Activate != nil {
				w.cb.Activate(s.view, false)
			}
			s.active = false
		}
		return
	}

	kind := 0
	if w.cb.KindOf != nil {
		kind = w.cb.KindOf(index)
	}
	if s.hasView && s.kind != kind {
		w.pool.Put(s.kind, s.view)
		var zero V
		s.view, s.hasView, s.active = zero, false, false
	}
	if !s.hasView {
		v, ok := w.pool.Get(kind)
		s.kind = kind
		if !ok {
			return
		}
		s.view, s.hasView, s.active = v, true, true
	} else if !s.active {
		if w.cb.Activate != nil {
			w.cb.Activate(s.view, true)
		}
		s.active = true
	}
	w.cb.Bind(s.view, index)
	w.place(s)
}

func (w *window[V]) place(s *slot[V]) {
	line := s.index / w.cfg.Lines
	col := s.index % w.cfg.Lines

	var primary, size float32
	if w.idx != nil {
		primary = w.idx.PositionOf(s.index)
		size = w.idx.SizeOf(s.index)
	} else {
		primary = float32(line) * w.cfg.stride()
		size = w.cfg.ItemSize
	}
	cross := float32(col) * w.cfg.crossStride()
	crossSize := w.cfg.CrossSize

	if w.cfg.PixelAligned {
		primary = round32(primary)
		cross = round32(cross)
		size = round32(size)
		crossSize = round32(crossSize)
	}
	w.cb.Place(s.view, primary, cross, size, crossSize)
}

// indexAtPoint maps a content-space point to the data index under it, or -1
// when the point misses every item. Points inside inter-item gaps resolve to
// the nearest earlier item, which keeps taps near edges forgiving.
func (w *window[V]) indexAtPoint(primary, cross float32) int {
	if w.total == 0 || primary < 0 || primary >= w.ContentSize() {
		return -1
	}
	if w.idx != nil {
		if i := w.idx.IndexAt(primary); i < w.total {
			return i
		}
		return -1
	}
	line := int(primary / w.cfg.stride())
	col := 0
	if w.cfg.Lines > 1 {
		if cs := w.cfg.crossStride(); cs > 0 {
			col = int(cross / cs)
		}
		if col < 0 {
			col = 0
		}
		if col > w.cfg.Lines-1 {
			col = w.cfg.Lines - 1
		}
	}
	index := line*w.cfg.Lines + col
	if index < 0 || index >= w.total {
		return -1
	}
	return index
}

func rotateSlotsLeft[V any](s []slot[V], k int) {
	reverseSlots(s[:k])
	reverseSlots(s[k:])
	reverseSlots(s)
}

func rotateSlotsRight[V any](s []slot[V], k int) {
	rotateSlotsLeft(s, len(s)-k)
}

func reverseSlots[V any](s []slot[V]) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round32(v float32) float32 {
	return float32(math.Round(float64(v)))
}
