package annotate_test

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/stepcap/stepcap/internal/annotate"
	"github.com/stepcap/stepcap/internal/session"
)

// writeTestShot writes a solid white 100x80 PNG and returns its path.
func writeTestShot(t *testing.T, dir, name string) string {
	t.Helper()
	img := imaging.New(100, 80, color.NRGBA{255, 255, 255, 255})
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("saving test image: %v", err)
	}
	return path
}

func TestParseHex(t *testing.T) {
	c, err := annotate.ParseHex("#e74c3c")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c != (color.NRGBA{231, 76, 60, 255}) {
		t.Errorf("ParseHex = %+v", c)
	}

	bad := []string{
		"", "e74c3c", "#12345", "#gggggg",
		// Sscanf's widths are maxima, not exact, so these only fail with
		// strict validation.
		"#aabbccdd", "#12 34 56", "#12 345", "#abc",
	}
	for _, s := range bad {
		if _, err := annotate.ParseHex(s); err == nil {
			t.Errorf("ParseHex(%q): expected error", s)
		}
	}
}

func TestClampRect(t *testing.T) {
	cases := []struct {
		name string
		in   session.Rect
		want image.Rectangle
	}{
		{"inside", session.Rect{X1: 10, Y1: 10, X2: 50, Y2: 40}, image.Rect(10, 10, 50, 40)},
		{"swapped corners", session.Rect{X1: 50, Y1: 40, X2: 10, Y2: 10}, image.Rect(10, 10, 50, 40)},
		{"overflow", session.Rect{X1: -20, Y1: -20, X2: 500, Y2: 500}, image.Rect(0, 0, 100, 80)},
		{"degenerate", session.Rect{X1: 30, Y1: 30, X2: 30, Y2: 30}, image.Rect(30, 30, 31, 31)},
		{"past right edge", session.Rect{X1: 100, Y1: 0, X2: 120, Y2: 10}, image.Rect(99, 0, 100, 10)},
	}
	for _, c := range cases {
		if got := annotate.ClampRect(c.in, 100, 80); got != c.want {
			t.Errorf("%s: ClampRect = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRedactDestroysPixels(t *testing.T) {
	dir := t.TempDir()
	path := writeTestShot(t, dir, "step_1.png")

	rect := session.Rect{X1: 20, Y1: 20, X2: 60, Y2: 50}
	if err := annotate.Redact(path, rect); err != nil {
		t.Fatalf("Redact: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	nrgba := imaging.Clone(img)

	// Interior pixels are the redaction fill, not white.
	center := nrgba.NRGBAAt(40, 35)
	if center != (color.NRGBA{16, 16, 16, 255}) {
		t.Errorf("center pixel = %+v, want redaction fill", center)
	}
	// Border ring pixels take the border color.
	border := nrgba.NRGBAAt(21, 35)
	if border != (color.NRGBA{70, 70, 70, 255}) {
		t.Errorf("border pixel = %+v, want border color", border)
	}
	// Pixels outside the region are untouched.
	outside := nrgba.NRGBAAt(5, 5)
	if outside != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("outside pixel = %+v, want white", outside)
	}
}

func TestFlattenTextOnlyStep(t *testing.T) {
	st := &session.Step{Index: 1, Description: "no screenshot"}
	img, err := annotate.Flatten(t.TempDir(), st)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if img != nil {
		t.Error("expected nil image for a text-only step")
	}
}

func TestFlattenAppliesCrop(t *testing.T) {
	dir := t.TempDir()
	writeTestShot(t, dir, "step_1.png")

	crop := session.Rect{X1: 10, Y1: 10, X2: 60, Y2: 50}
	st := &session.Step{Index: 1, Screenshot: "step_1.png", Crop: &crop}

	img, err := annotate.Flatten(dir, st)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("flattened size = %dx%d, want 50x40", b.Dx(), b.Dy())
	}
}

func TestFlattenHighlightLeavesSourceUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeTestShot(t, dir, "step_1.png")

	r := session.Rect{X1: 10, Y1: 10, X2: 90, Y2: 70}
	st := &session.Step{
		Index:      1,
		Screenshot: "step_1.png",
		Objects: []session.Object{
			{Kind: session.KindHighlight, Color: "#ff0000", Rect: &r},
		},
	}

	img, err := annotate.Flatten(dir, st)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	flat := imaging.Clone(img)

	// Outline pixels carry the highlight color.
	if got := flat.NRGBAAt(10, 10); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("outline pixel = %+v, want pure red", got)
	}
	// Interior pixels are tinted toward the color but not replaced.
	inside := flat.NRGBAAt(50, 40)
	if inside == (color.NRGBA{255, 255, 255, 255}) {
		t.Error("interior pixel untinted")
	}
	if inside == (color.NRGBA{255, 0, 0, 255}) {
		t.Error("interior pixel fully opaque, want translucent tint")
	}

	// Flattening is non-destructive: the file on disk stays white.
	src, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("reopening source: %v", err)
	}
	if got := imaging.Clone(src).NRGBAAt(10, 10); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("source pixel = %+v after Flatten, want white", got)
	}
}

func TestFlattenDrawStroke(t *testing.T) {
	dir := t.TempDir()
	writeTestShot(t, dir, "step_1.png")

	st := &session.Step{
		Index:      1,
		Screenshot: "step_1.png",
		Objects: []session.Object{
			{
				Kind:   session.KindDraw,
				Color:  "#0000ff",
				Width:  4,
				Points: [][2]int{{10, 40}, {90, 40}},
			},
		},
	}

	img, err := annotate.Flatten(dir, st)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	flat := imaging.Clone(img)

	for _, x := range []int{10, 50, 90} {
		if got := flat.NRGBAAt(x, 40); got != (color.NRGBA{0, 0, 255, 255}) {
			t.Errorf("stroke pixel at (%d, 40) = %+v, want blue", x, got)
		}
	}
	if got := flat.NRGBAAt(50, 10); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel off the stroke = %+v, want white", got)
	}
}

func TestFlattenShiftsObjectsByCropOrigin(t *testing.T) {
	dir := t.TempDir()
	writeTestShot(t, dir, "step_1.png")

	crop := session.Rect{X1: 20, Y1: 20, X2: 80, Y2: 70}
	hl := session.Rect{X1: 30, Y1: 30, X2: 60, Y2: 50}
	st := &session.Step{
		Index:      1,
		Screenshot: "step_1.png",
		Crop:       &crop,
		Objects: []session.Object{
			{Kind: session.KindHighlight, Color: "#ff0000", Rect: &hl},
		},
	}

	img, err := annotate.Flatten(dir, st)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	flat := imaging.Clone(img)

	// The highlight at original (30,30) lands at (10,10) in crop space.
	if got := flat.NRGBAAt(10, 10); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("shifted outline pixel = %+v, want pure red", got)
	}
}
