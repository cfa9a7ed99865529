//go:build windows

package capture

import (
	"syscall"
	"unsafe"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	procGetForegroundWnd = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW   = user32.NewProc("GetWindowTextW")
)

// ActiveWindowTitle returns the title of the foreground window, or "Unknown".
func ActiveWindowTitle() string {
	hwnd, _, _ := procGetForegroundWnd.Call()
	if hwnd == 0 {
		return "Unknown"
	}
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "Unknown"
	}
	return syscall.UTF16ToString(buf[:n])
}
