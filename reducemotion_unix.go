//go:build (linux || freebsd || openbsd || netbsd) && !android

package xscroll

import (
	"sync"

	"github.com/rymdport/portal/settings"
)

var animPref struct {
	once    sync.Once
	enabled bool
}

// animationsEnabled reads the desktop's animation preference through the XDG
// settings portal. Without a reachable portal (or outside a desktop session)
// it fails open: animations stay enabled.
func animationsEnabled() bool {
	animPref.once.Do(func() {
		animPref.enabled = true
		value, err := settings.ReadOne("org.gnome.desktop.interface", "enable-animations")
		if err != nil {
			return
		}
		if enabled, ok := value.(bool); ok {
			animPref.enabled = enabled
		}
	})
	return animPref.enabled
}
