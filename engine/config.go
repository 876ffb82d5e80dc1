// Package engine implements the virtualization and scroll-physics core used
// by the xscroll widgets. It keeps a small, fixed pool of view slots alive,
// rebinding them to data indices as the scroll offset moves, and integrates
// the offset itself from touch input, inertial decay and boundary springs.
//
// The engine never inspects the views it manages. Views are an opaque type
// parameter; creating, destroying, binding and positioning them happens
// through the injected Callbacks. This keeps the core independent of any
// particular toolkit: the fyne adapter in the parent package is one consumer.
package engine

import "time"

// Mode selects how item extents along the primary axis are determined.
type Mode int

const (
	// ModeFixed gives every item the same extent (Config.ItemSize).
	ModeFixed Mode = iota
	// ModeVariable queries Callbacks.SizeOf per item and maintains a
	// prefix-sum index for position lookups.
	ModeVariable
)

// Config holds the tunables of a Viewport. It is read at construction and
// treated as immutable afterwards; the few extents that legitimately change
// at runtime (viewport and cell sizes) have dedicated setters on Viewport.
type Config struct {
	// Mode selects fixed or variable item sizing.
	Mode Mode

	// Lines is the number of items per cross-axis line: 1 for a plain
	// list, the column count for a vertical grid. Variable mode supports
	// only a single line, since per-item extents cannot describe a
	// multi-column row; values above 1 are ignored there.
	Lines int

	// ItemSize is the primary-axis extent of one item in fixed mode.
	ItemSize float32

	// CrossSize is the cross-axis extent of one item cell.
	CrossSize float32

	// Spacing is added between consecutive items (or lines) on the
	// primary axis, never after the last one. CrossSpacing separates
	// cells within a line.
	Spacing      float32
	CrossSpacing float32

	// Buffer is the number of extra off-screen slots kept bound beyond
	// those needed to cover the viewport.
	Buffer int

	// PixelAligned rounds emitted placements and the reported offset to
	// whole pixels.
	PixelAligned bool

	// SpringStiffness and SpringDamping shape the boundary spring that
	// pulls an out-of-range offset back to the nearest bound. The motion
	// approaches the bound without sustained oscillation as long as
	// SpringDamping >= 2*sqrt(SpringStiffness) and ticks arrive at 30Hz
	// or faster.
	SpringStiffness float32
	SpringDamping   float32

	// VelocityWindow bounds how far back touch samples are kept for the
	// release-velocity estimate.
	VelocityWindow time.Duration

	// MaxVelocity clamps the estimated release velocity, SnapVelocity is
	// the speed below which free motion stops outright.
	MaxVelocity  float32
	SnapVelocity float32

	// NaturalDecay picks the inertial damping coefficient by speed tier,
	// so fast flings glide while slow drifts settle quickly. When false,
	// Decay is used at every speed.
	NaturalDecay bool
	Decay        float32

	// Diag receives reportable but non-fatal conditions (missing
	// callbacks, unknown view kinds). Nil drops them.
	Diag func(error)
}

// Defaults for the zero fields of Config. The spring pair is critically
// damped (27 ~= 2*sqrt(180)).
const (
	DefaultItemSize        float32 = 40
	DefaultSpringStiffness float32 = 180
	DefaultSpringDamping   float32 = 27
	DefaultMaxVelocity     float32 = 6000
	DefaultSnapVelocity    float32 = 24
	DefaultDecay           float32 = 2.8
	DefaultBuffer                  = 2

	DefaultVelocityWindow = 150 * time.Millisecond
)

// fallbackExtent stands in for an item extent when the data reports zero or
// negative sizes, so stride math and slot estimates never divide by zero.
const fallbackExtent float32 = 32

func (c *Config) normalize() {
	if c.Lines < 1 {
		c.Lines = 1
	}
	if c.Mode == ModeVariable {
		c.Lines = 1
	}
	if c.ItemSize <= 0 {
		c.ItemSize = DefaultItemSize
	}
	if c.SpringStiffness <= 0 {
		c.SpringStiffness = DefaultSpringStiffness
	}
	if c.SpringDamping <= 0 {
		c.SpringDamping = DefaultSpringDamping
	}
	if c.VelocityWindow <= 0 {
		c.VelocityWindow = DefaultVelocityWindow
	}
	if c.MaxVelocity <= 0 {
		c.MaxVelocity = DefaultMaxVelocity
	}
	if c.SnapVelocity <= 0 {
		c.SnapVelocity = DefaultSnapVelocity
	}
	if c.Decay <= 0 {
		c.Decay = DefaultDecay
	}
	if c.Buffer < 0 {
		c.Buffer = 0
	}
	if c.Diag == nil {
		c.Diag = func(error) {}
	}
}

// stride is the distance between the starts of consecutive lines in fixed
// mode.
func (c *Config) stride() float32 {
	size := c.ItemSize
	if size <= 0 {
		size = fallbackExtent
	}
	return size + c.Spacing
}

// crossStride is the distance between the starts of adjacent cells within a
// line.
func (c *Config) crossStride() float32 {
	return c.CrossSize + c.CrossSpacing
}

// Callbacks connects a Viewport to the host toolkit. Create, Destroy,
// Activate and Place treat views as opaque handles; Bind hands a view and its
// data index to the application for rendering.
type Callbacks[V any] struct {
	// Create returns a fresh view for the given kind, reporting false for
	// kinds it cannot build. Required.
	Create func(kind int) (V, bool)

	// Destroy releases a view for good. Optional; nil leaves disposal to
	// the garbage collector.
	Destroy func(v V)

	// Activate toggles a view's visibility/participation. Optional.
	Activate func(v V, active bool)

	// Bind renders data index into the view. Required.
	Bind func(v V, index int)

	// Place positions a bound view. primary and cross are content-space
	// offsets along the scroll axis and across it; size and crossSize are
	// the cell extents. Mapping content space to screen space (axis
	// direction, reversal) is the caller's concern. Required.
	Place func(v V, primary, cross, size, crossSize float32)

	// SizeOf reports the primary-axis extent of one item. Required in
	// ModeVariable, where it must stay stable for a given index until an
	// explicit update call.
	SizeOf func(index int) float32

	// KindOf reports the view kind an index needs. Optional; nil means
	// every item shares kind 0.
	KindOf func(index int) int
}
