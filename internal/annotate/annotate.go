// Package annotate applies annotations to step screenshots. Highlights,
// freehand strokes and crops are vector objects composited at flatten time;
// redaction rewrites the source pixels immediately and is irreversible.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"regexp"

	"github.com/disintegration/imaging"

	"github.com/stepcap/stepcap/internal/session"
)

// Redaction fill and border, dark enough to destroy the covered pixels
// while staying visible against most screenshots.
var (
	redactFill   = color.NRGBA{16, 16, 16, 255}
	redactBorder = color.NRGBA{70, 70, 70, 255}
)

// highlightTintAlpha is the translucent interior of a highlight box.
const highlightTintAlpha = 28

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseHex parses a #rrggbb color. Anything shorter, longer or non-hex is
// rejected; Sscanf alone would accept truncated and padded forms.
func ParseHex(s string) (color.NRGBA, error) {
	if !hexColor.MatchString(s) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	var r, g, b uint8
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return color.NRGBA{r, g, b, 255}, nil
}

// ClampRect normalizes r and clips it to a w×h image, keeping at least one
// pixel of extent in each dimension.
func ClampRect(r session.Rect, w, h int) image.Rectangle {
	r = r.Canon()
	x1 := min(max(r.X1, 0), w)
	y1 := min(max(r.Y1, 0), h)
	x2 := min(max(r.X2, x1+1), w)
	y2 := min(max(r.Y2, y1+1), h)
	if x2 <= x1 {
		x1 = max(x2-1, 0)
		x2 = x1 + 1
	}
	if y2 <= y1 {
		y1 = max(y2-1, 0)
		y2 = y1 + 1
	}
	return image.Rect(x1, y1, x2, y2)
}

// Redact blacks out rect in the image file at path, in place. The covered
// pixels are destroyed; there is no way back once the file is rewritten.
func Redact(path string, rect session.Rect) error {
	src, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("opening screenshot: %w", err)
	}
	img := imaging.Clone(src)
	b := img.Bounds()

	r := ClampRect(rect, b.Dx(), b.Dy())
	fillRect(img, r, redactFill)
	outlineRect(img, r, redactBorder, 2)

	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("saving redacted screenshot: %w", err)
	}
	return nil
}

// Flatten composites a step's crop and vector objects onto its screenshot
// and returns the flat image. Returns (nil, nil) for text-only steps.
func Flatten(dir string, st *session.Step) (image.Image, error) {
	if st.Screenshot == "" {
		return nil, nil
	}
	src, err := imaging.Open(filepath.Join(dir, st.Screenshot))
	if err != nil {
		return nil, fmt.Errorf("opening screenshot for step %d: %w", st.Index, err)
	}
	b := src.Bounds()

	// Non-destructive crop first; object coordinates then shift by the
	// crop origin.
	var ox, oy int
	img := imaging.Clone(src)
	if st.Crop != nil {
		cr := ClampRect(*st.Crop, b.Dx(), b.Dy())
		img = imaging.Crop(src, cr)
		ox, oy = cr.Min.X, cr.Min.Y
	}

	for _, obj := range st.Objects {
		col, err := ParseHex(obj.Color)
		if err != nil {
			col = color.NRGBA{231, 76, 60, 255}
		}
		switch obj.Kind {
		case session.KindHighlight:
			if obj.Rect == nil {
				continue
			}
			r := obj.Rect.Canon()
			rr := image.Rect(r.X1-ox, r.Y1-oy, r.X2-ox, r.Y2-oy).
				Intersect(img.Bounds())
			if rr.Empty() {
				continue
			}
			// Tapered outline plus a faint interior tint.
			for w := 5; w >= 1; w-- {
				outlineRect(img, rr, col, w)
			}
			tint := col
			tint.A = highlightTintAlpha
			blendRect(img, rr, tint)
		case session.KindDraw:
			w := obj.Width
			if w < 1 {
				w = 1
			}
			var prev *image.Point
			for _, p := range obj.Points {
				pt := image.Pt(p[0]-ox, p[1]-oy)
				if prev != nil {
					stampLine(img, *prev, pt, w, col)
				}
				fillDisc(img, pt, w/2, col)
				prev = &pt
			}
		}
	}
	return img, nil
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func blendRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// outlineRect draws a w-pixel border just inside r.
func outlineRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, w int) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, min(r.Min.Y+w, r.Max.Y)), c)
	fillRect(img, image.Rect(r.Min.X, max(r.Max.Y-w, r.Min.Y), r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, min(r.Min.X+w, r.Max.X), r.Max.Y), c)
	fillRect(img, image.Rect(max(r.Max.X-w, r.Min.X), r.Min.Y, r.Max.X, r.Max.Y), c)
}

// stampLine draws a thick segment by stamping discs along a Bresenham walk,
// which also rounds the joints between segments.
func stampLine(img *image.NRGBA, a, b image.Point, width int, c color.NRGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		fillDisc(img, image.Pt(x, y), width/2, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func fillDisc(img *image.NRGBA, center image.Point, r int, c color.NRGBA) {
	if r < 0 {
		r = 0
	}
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y > r*r {
				continue
			}
			p := image.Pt(center.X+x, center.Y+y)
			if p.In(img.Bounds()) {
				img.SetNRGBA(p.X, p.Y, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
