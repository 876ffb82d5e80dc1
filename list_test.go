package xscroll

import (
	"image/color"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
)

func newTestList(t *testing.T, count int, bound map[int]int) *List {
	t.Helper()
	test.NewApp()

	l := NewList(
		func() int { return count },
		func() fyne.CanvasObject { return canvas.NewRectangle(color.Transparent) },
		func(index int, o fyne.CanvasObject) {
			if bound != nil {
				bound[index]++
			}
		},
	)
	l.SetItemHeight(100)
	l.SetSpacing(8, 0)
	return l
}

func layoutList(t *testing.T, l *List, w, h float32) {
	t.Helper()
	test.TempWidgetRenderer(t, l)
	l.Resize(fyne.NewSize(w, h))
	if l.eng == nil {
		t.Fatalf("engine not built")
	}
}

// settle runs synthetic ticks until all motion stops.
func settle(t *testing.T, l *List) {
	t.Helper()
	now := time.Now()
	for i := 0; i < 2000; i++ {
		if !l.eng.Tick(now) {
			return
		}
		now = now.Add(16 * time.Millisecond)
	}
	t.Fatalf("motion did not settle")
}

func TestListBindsOnlyWindow(t *testing.T) {
	bound := make(map[int]int)
	l := newTestList(t, 1000, bound)
	layoutList(t, l, 200, 400)

	slots := l.eng.SlotCount()
	if len(bound) != slots {
		t.Fatalf("expected %d bound indices, got %d", slots, len(bound))
	}
	for i := 0; i < slots; i++ {
		if bound[i] == 0 {
			t.Fatalf("expected index %d bound", i)
		}
	}
	if bound[slots] != 0 {
		t.Fatalf("expected index %d to stay unbound", slots)
	}
}

func TestListScrollToIndex(t *testing.T) {
	l := newTestList(t, 1000, nil)
	layoutList(t, l, 200, 400)

	l.ScrollToIndex(500, false)
	if got := l.Offset(); got != 500*108 {
		t.Fatalf("expected offset %v, got %v", float32(500*108), got)
	}
	if _, ok := l.eng.ViewOf(500); !ok {
		t.Fatalf("expected a view bound to index 500")
	}

	l.ScrollToBottom(false)
	_, max := l.eng.Bounds()
	if got := l.Offset(); got != max {
		t.Fatalf("expected offset at bound %v, got %v", max, got)
	}
	if _, ok := l.eng.ViewOf(999); !ok {
		t.Fatalf("expected the last item bound at the bottom")
	}

	l.ScrollToTop(false)
	if got := l.Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %v", got)
	}
}

func TestListTapSelects(t *testing.T) {
	l := newTestList(t, 1000, nil)
	var selected []int
	l.SetOnSelected(func(index int) { selected = append(selected, index) })
	layoutList(t, l, 200, 400)

	l.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 250)})
	if len(selected) != 1 || selected[0] != 2 {
		t.Fatalf("expected selection [2], got %v", selected)
	}

	l.SetOffset(1080)
	l.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 250)})
	if len(selected) != 2 || selected[1] != 12 {
		t.Fatalf("expected selection of index 12, got %v", selected)
	}
}

func TestListTapIgnoredRightAfterDrag(t *testing.T) {
	l := newTestList(t, 1000, nil)
	var selected []int
	l.SetOnSelected(func(index int) { selected = append(selected, index) })
	layoutList(t, l, 200, 400)

	l.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DY: -30}})
	l.DragEnd()
	l.ticker.Stop()

	l.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 50)})
	if len(selected) != 0 {
		t.Fatalf("expected tap right after drag ignored, got %v", selected)
	}

	l.lastDragEnd = time.Now().Add(-time.Second)
	l.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 50)})
	if len(selected) != 1 {
		t.Fatalf("expected tap after guard window to select, got %v", selected)
	}
}

func TestListDragMovesAndFlings(t *testing.T) {
	l := newTestList(t, 1000, nil)
	layoutList(t, l, 200, 400)

	l.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DY: -30}})
	l.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DY: -30}})
	if got := l.Offset(); got != 60 {
		t.Fatalf("expected offset 60 during drag, got %v", got)
	}

	l.DragEnd()
	l.ticker.Stop()
	if !l.eng.Moving() {
		t.Fatalf("expected inertial motion after release")
	}

	settle(t, l)
	if got := l.Offset(); got <= 60 {
		t.Fatalf("expected fling to carry past %v, got %v", float32(60), got)
	}
	min, max := l.eng.Bounds()
	if got := l.Offset(); got < min || got > max {
		t.Fatalf("expected rest inside [%v, %v], got %v", min, max, got)
	}
}

func TestListFlingPastEndSpringsBack(t *testing.T) {
	l := newTestList(t, 1000, nil)
	layoutList(t, l, 200, 400)

	l.ScrollToBottom(false)
	_, max := l.eng.Bounds()

	l.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DY: -80}})
	l.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DY: -80}})
	if got := l.Offset(); got <= max {
		t.Fatalf("expected drag to overshoot past %v, got %v", max, got)
	}

	l.DragEnd()
	l.ticker.Stop()
	settle(t, l)
	if got := l.Offset(); got != max {
		t.Fatalf("expected spring to settle at %v, got %v", max, got)
	}
}

func TestListWheelNudge(t *testing.T) {
	l := newTestList(t, 1000, nil)
	layoutList(t, l, 200, 400)

	l.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -60}})
	l.ticker.Stop()
	if got := l.Offset(); got != 60 {
		t.Fatalf("expected offset 60 after wheel, got %v", got)
	}

	l.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: float32(nan())}})
	if got := l.Offset(); got != 60 {
		t.Fatalf("expected junk wheel delta ignored, got offset %v", got)
	}
}

func TestListReversePlacement(t *testing.T) {
	l := newTestList(t, 1000, nil)
	l.SetSpacing(0, 0)
	l.SetReverse(true)
	layoutList(t, l, 200, 400)

	o, ok := l.eng.ViewOf(0)
	if !ok {
		t.Fatalf("expected item 0 bound")
	}
	if got := o.Position().Y; got != 300 {
		t.Fatalf("expected item 0 at y=300 in reverse, got %v", got)
	}

	var selected int
	l.SetOnSelected(func(index int) { selected = index })
	l.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 350)})
	if selected != 0 {
		t.Fatalf("expected reverse tap near the bottom to hit item 0, got %d", selected)
	}
}

func TestGridPlacementAndTap(t *testing.T) {
	test.NewApp()
	l := NewGrid(
		func() int { return 100 },
		2,
		func() fyne.CanvasObject { return canvas.NewRectangle(color.Transparent) },
		func(index int, o fyne.CanvasObject) {},
	)
	l.SetItemHeight(100)
	l.SetSpacing(0, 0)
	layoutList(t, l, 200, 400)

	o1, ok := l.eng.ViewOf(1)
	if !ok {
		t.Fatalf("expected item 1 bound")
	}
	if pos := o1.Position(); pos.X != 100 || pos.Y != 0 {
		t.Fatalf("expected item 1 at (100, 0), got %v", pos)
	}
	o2, ok := l.eng.ViewOf(2)
	if !ok {
		t.Fatalf("expected item 2 bound")
	}
	if pos := o2.Position(); pos.X != 0 || pos.Y != 100 {
		t.Fatalf("expected item 2 at (0, 100), got %v", pos)
	}
	if size := o1.Size(); size.Width != 100 || size.Height != 100 {
		t.Fatalf("expected 100x100 cells, got %v", size)
	}

	var selected int
	l.SetOnSelected(func(index int) { selected = index })
	l.Tapped(&fyne.PointEvent{Position: fyne.NewPos(150, 250)})
	if selected != 5 {
		t.Fatalf("expected tap at (150, 250) to hit index 5, got %d", selected)
	}
}

func TestListKindsRecycled(t *testing.T) {
	test.NewApp()
	kinds := make(map[fyne.CanvasObject]int)
	var mismatches int
	l := newList(func() int { return 1000 }, nil)
	l.bind = func(index int, o fyne.CanvasObject) {
		if kinds[o] != index%2 {
			mismatches++
		}
	}
	l.SetItemHeight(100)
	l.SetSpacing(0, 0)
	l.SetKinds(
		func(index int) int { return index % 2 },
		func(kind int) fyne.CanvasObject {
			o := canvas.NewRectangle(color.Transparent)
			kinds[o] = kind
			return o
		},
	)
	layoutList(t, l, 200, 400)

	l.ScrollToIndex(501, false)
	l.ScrollToTop(false)
	if mismatches != 0 {
		t.Fatalf("expected every bind to land on a matching kind, got %d mismatches", mismatches)
	}
}

func TestListVariableHeights(t *testing.T) {
	l := newTestList(t, 100, nil)
	l.SetSpacing(0, 0)
	l.SetItemHeightFunc(func(index int) float32 {
		if index%2 == 0 {
			return 50
		}
		return 100
	})
	layoutList(t, l, 200, 400)

	l.ScrollToIndex(3, false)
	if got := l.Offset(); got != 200 {
		t.Fatalf("expected offset 200 for index 3, got %v", got)
	}
}

func TestListRefreshAfterLengthChange(t *testing.T) {
	count := 1000
	l := newTestList(t, 0, nil)
	l.length = func() int { return count }
	layoutList(t, l, 200, 400)

	l.ScrollToBottom(false)
	before := l.Offset()
	if before == 0 {
		t.Fatalf("expected a non-zero offset at the bottom")
	}

	count = 3
	l.Refresh()
	if got := l.eng.TotalCount(); got != 3 {
		t.Fatalf("expected total 3, got %d", got)
	}
	if got := l.Offset(); got != 0 {
		t.Fatalf("expected offset clamped to 0 after shrink, got %v", got)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
