//go:build linux

package capture

import (
	"os/exec"
	"strings"
)

// ActiveWindowTitle returns the title of the focused window, or "Unknown".
// Uses xdotool when available; Wayland compositors without it fall back to
// the placeholder, matching the recorder's optional window lookup.
func ActiveWindowTitle() string {
	out, err := exec.Command("xdotool", "getactivewindow", "getwindowname").Output()
	if err != nil {
		return "Unknown"
	}
	title := strings.TrimSpace(string(out))
	if title == "" {
		return "Unknown"
	}
	return title
}
