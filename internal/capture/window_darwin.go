//go:build darwin

package capture

import (
	"os/exec"
	"strings"
)

// ActiveWindowTitle returns the name of the frontmost application, or
// "Unknown".
func ActiveWindowTitle() string {
	script := `tell application "System Events" to get name of first application process whose frontmost is true`
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "Unknown"
	}
	title := strings.TrimSpace(string(out))
	if title == "" {
		return "Unknown"
	}
	return title
}
