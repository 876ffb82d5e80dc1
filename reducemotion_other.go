//go:build !linux && !freebsd && !openbsd && !netbsd || android

package xscroll

// animationsEnabled reports whether scroll and appear animations should run.
// Platforms without an XDG settings portal have no portable reduced-motion
// query, so animations stay enabled.
func animationsEnabled() bool {
	return true
}
