// Package capture wraps OS screen capture and active-window lookup.
package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

// Capturer grabs the contents of a display.
type Capturer interface {
	// Capture returns the current contents of the given display index.
	Capture(display int) (image.Image, error)
}

// New returns the platform screen capturer.
func New() Capturer {
	return &displayCapturer{}
}

type displayCapturer struct{}

func (displayCapturer) Capture(display int) (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if display < 0 || display >= n {
		display = 0
	}
	img, err := screenshot.CaptureDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("capturing display %d: %w", display, err)
	}
	return img, nil
}

// SavePNG writes img to path, creating parent directories as needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("writing screenshot %s: %w", path, err)
	}
	return nil
}
