package engine

import "sort"

// sizeIndex maps item indices to primary-axis positions when item extents
// vary. It keeps each item's extent plus a prefix-sum table of start
// positions, so a position lookup is a binary search and a start lookup is an
// array read. Spacing is folded into the table: prefix[i] already includes
// the gaps between items 0..i.
type sizeIndex struct {
	sizes   []float32
	prefix  []float32 // prefix[i] = start position of item i
	spacing float32
	content float32 // total extent including inter-item spacing
}

func newSizeIndex(spacing float32) *sizeIndex {
	return &sizeIndex{spacing: spacing}
}

func (x *sizeIndex) Len() int {
	return len(x.sizes)
}

// ContentSize is the extent of all items laid end to end, with spacing
// between them but not after the last.
func (x *sizeIndex) ContentSize() float32 {
	return x.content
}

// SetLen resizes the index to n items, fetching extents for any new tail
// through size. Shrinking just truncates; growing fetches only the added
// indices and extends the prefix table from the old end.
func (x *sizeIndex) SetLen(n int, size func(int) float32) {
	if n < 0 {
		n = 0
	}
	old := len(x.sizes)
	switch {
	case n == old:
		return
	case n < old:
		x.sizes = x.sizes[:n]
		x.prefix = x.prefix[:n]
		x.recomputeContent()
	default:
		for i := old; i < n; i++ {
			x.sizes = append(x.sizes, sanitizeExtent(size(i)))
		}
		x.extendPrefix(old)
	}
}

// SetSize records a new extent for one item and repairs the table from that
// point on. Later items shift; earlier positions are untouched.
func (x *sizeIndex) SetSize(i int, size float32) {
	if i < 0 || i >= len(x.sizes) {
		return
	}
	x.sizes[i] = sanitizeExtent(size)
	x.extendPrefix(i)
}

// Rebuild refetches every extent. RebuildFrom refetches extents for indices
// >= from only, leaving the table before it intact.
func (x *sizeIndex) Rebuild(size func(int) float32) {
	x.RebuildFrom(0, size)
}

func (x *sizeIndex) RebuildFrom(from int, size func(int) float32) {
	if from < 0 {
		from = 0
	}
	if from >= len(x.sizes) {
		return
	}
	for i := from; i < len(x.sizes); i++ {
		x.sizes[i] = sanitizeExtent(size(i))
	}
	x.extendPrefix(from)
}

// PositionOf returns the start position of item i. Indices past the end map
// to the content size, which makes end-of-range arithmetic uniform.
func (x *sizeIndex) PositionOf(i int) float32 {
	if i < 0 || len(x.prefix) == 0 {
		return 0
	}
	if i >= len(x.prefix) {
		return x.content
	}
	return x.prefix[i]
}

// SizeOf returns the recorded extent of item i, or 0 when out of range.
func (x *sizeIndex) SizeOf(i int) float32 {
	if i < 0 || i >= len(x.sizes) {
		return 0
	}
	return x.sizes[i]
}

// IndexAt returns the item whose span contains pos. Positions at or before
// the content start return 0; positions at or past the content end return
// Len(), a sentinel one past the last item. A pos exactly on an item
// boundary belongs to the item starting there.
func (x *sizeIndex) IndexAt(pos float32) int {
	n := len(x.prefix)
	if n == 0 || pos <= 0 {
		return 0
	}
	if pos >= x.content {
		return n
	}
	// First start strictly past pos, then step back one.
	i := sort.Search(n, func(i int) bool { return x.prefix[i] > pos })
	return i - 1
}

// VisibleRange returns the half-open index range [start, end) of items that
// intersect the viewport [pos, pos+viewport), widened by buffer items on both
// sides and clamped to [0, Len()].
func (x *sizeIndex) VisibleRange(pos, viewport float32, buffer int) (start, end int) {
	n := len(x.prefix)
	if n == 0 {
		return 0, 0
	}
	start = x.IndexAt(pos)
	if start >= n {
		start = n - 1
	}
	limit := pos + viewport
	// First item starting at or past the viewport's far edge.
	end = sort.Search(n, func(i int) bool { return x.prefix[i] >= limit })

	start -= buffer
	end += buffer
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}

// MinSize returns the smallest recorded extent, or 0 for an empty index.
// Slot-count estimates use it as the worst-case item density.
func (x *sizeIndex) MinSize() float32 {
	if len(x.sizes) == 0 {
		return 0
	}
	minimum := x.sizes[0]
	for _, s := range x.sizes[1:] {
		if s < minimum {
			minimum = s
		}
	}
	return minimum
}

// extendPrefix recomputes prefix entries for indices >= from, assuming sizes
// is current. prefix[0] is always 0.
func (x *sizeIndex) extendPrefix(from int) {
	n := len(x.sizes)
	if cap(x.prefix) < n {
		grown := make([]float32, n)
		copy(grown, x.prefix)
		x.prefix = grown
	} else {
		x.prefix = x.prefix[:n]
	}
	if from <= 0 {
		if n > 0 {
			x.prefix[0] = 0
		}
		from = 1
	}
	for i := from; i < n; i++ {
		x.prefix[i] = x.prefix[i-1] + x.sizes[i-1] + x.spacing
	}
	x.recomputeContent()
}

func (x *sizeIndex) recomputeContent() {
	n := len(x.sizes)
	if n == 0 {
		x.content = 0
		return
	}
	x.content = x.prefix[n-1] + x.sizes[n-1]
}

func sanitizeExtent(s float32) float32 {
	if s <= 0 || s != s { // non-positive or NaN
		return fallbackExtent
	}
	return s
}
