package xscroll

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
)

// indicator is the thin bar showing the scroll position along the trailing
// edge. It appears while the list moves and fades away shortly after rest.
type indicator struct {
	rect      *canvas.Rectangle
	hideTimer *time.Timer
}

func newIndicator() *indicator {
	r := canvas.NewRectangle(theme.Color(theme.ColorNameScrollBar))
	r.CornerRadius = scrollBarWidth / 2
	r.Hide()
	return &indicator{rect: r}
}

func (ind *indicator) object() fyne.CanvasObject {
	return ind.rect
}

// update positions the bar for the given scroll state and shows it. Content
// that fits the viewport needs no indicator.
func (ind *indicator) update(viewport fyne.Size, horizontal, reverse bool, offset, maxOffset, content float32) {
	primary := viewport.Height
	if horizontal {
		primary = viewport.Width
	}
	if content <= primary || maxOffset <= 0 || primary <= 0 {
		ind.rect.Hide()
		return
	}

	length := primary * primary / content
	if length < minBarLength {
		length = minBarLength
	}
	frac := offset / maxOffset
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	if reverse {
		frac = 1 - frac
	}
	pos := frac * (primary - length)

	if horizontal {
		ind.rect.Move(fyne.NewPos(pos, viewport.Height-scrollBarWidth-scrollBarPad))
		ind.rect.Resize(fyne.NewSize(length, scrollBarWidth))
	} else {
		ind.rect.Move(fyne.NewPos(viewport.Width-scrollBarWidth-scrollBarPad, pos))
		ind.rect.Resize(fyne.NewSize(scrollBarWidth, length))
	}

	if ind.hideTimer != nil {
		ind.hideTimer.Stop()
		ind.hideTimer = nil
	}
	ind.rect.Show()
	ind.rect.Refresh()
}

// fadeOut hides the bar after a short linger, on the UI thread.
func (ind *indicator) fadeOut() {
	if !ind.rect.Visible() {
		return
	}
	if ind.hideTimer != nil {
		ind.hideTimer.Stop()
	}
	ind.hideTimer = time.AfterFunc(indicatorLinger, func() {
		fyne.Do(func() {
			ind.rect.Hide()
			ind.rect.Refresh()
		})
	})
}

func (ind *indicator) dispose() {
	if ind.hideTimer != nil {
		ind.hideTimer.Stop()
		ind.hideTimer = nil
	}
}
