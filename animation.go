package xscroll

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// animateAppear plays the configured entrance animation on a freshly bound
// cell, after it has been placed at its final position. A previous animation
// still running on the same cell is stopped first; cancellation never leaks
// past the owning cell.
func (l *List) animateAppear(o fyne.CanvasObject, pos fyne.Position, size fyne.Size) {
	l.stopAppear(o)

	var anim *fyne.Animation
	switch l.appear {
	case AppearSlide:
		shift := appearSlideDistance
		if l.reverse {
			shift = -shift
		}
		from := fyne.NewPos(pos.X, pos.Y+shift)
		if l.horizontal {
			from = fyne.NewPos(pos.X+shift, pos.Y)
		}
		anim = canvas.NewPositionAnimation(from, pos, canvas.DurationShort, o.Move)
	case AppearGrow:
		from := fyne.NewSize(size.Width*0.85, size.Height*0.85)
		anim = canvas.NewSizeAnimation(from, size, canvas.DurationShort, o.Resize)
	default:
		return
	}

	anim.Curve = fyne.AnimationEaseOut
	l.anims[o] = anim
	anim.Start()
}

func (l *List) stopAppear(o fyne.CanvasObject) {
	if anim, ok := l.anims[o]; ok {
		anim.Stop()
		delete(l.anims, o)
	}
}

func (l *List) stopAllAppear() {
	for o, anim := range l.anims {
		anim.Stop()
		delete(l.anims, o)
	}
}
