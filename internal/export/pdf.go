package export

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/stepcap/stepcap/internal/session"
)

// Page geometry in millimetres, landscape A4.
const (
	pageW = 297.0
	pageH = 210.0
	// Largest box a step image may occupy below the header band.
	imgBoxW = 265.0
	imgBoxH = 176.0
)

// PDFRenderer renders a landscape-A4 PDF: a dark cover page with the title,
// step count and generation date, then one page per step with a header band
// and the flattened screenshot scaled to fit and centered.
type PDFRenderer struct {
	Author string
}

func (r *PDFRenderer) Ext() string { return "pdf" }

func (r *PDFRenderer) Render(sess *session.Session) ([]byte, error) {
	views, err := flattenSteps(sess)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	// Built-in fonts are latin-1 only; translate smart quotes and friends.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 16)
	pdf.SetMargins(16, 16, 16)

	// Cover page.
	pdf.AddPage()
	pdf.SetFillColor(17, 17, 17)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetTextColor(61, 142, 240)
	pdf.SetY(72)
	pdf.CellFormat(0, 12, tr(sess.Title()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(130, 130, 130)
	pdf.Ln(6)
	subtitle := fmt.Sprintf("%d steps  -  Generated %s", len(views), generatedStamp(time.Now()))
	pdf.CellFormat(0, 7, tr(subtitle), "", 1, "C", false, 0, "")
	if r.Author != "" {
		pdf.Ln(2)
		pdf.CellFormat(0, 7, tr("Recorded by "+r.Author), "", 1, "C", false, 0, "")
	}

	for _, v := range views {
		pdf.AddPage()
		pdf.SetFillColor(26, 26, 26)
		pdf.Rect(0, 0, pageW, 22, "F")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(61, 142, 240)
		pdf.SetXY(16, 6)
		pdf.CellFormat(26, 9, fmt.Sprintf("STEP %02d", v.Index), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(210, 210, 210)
		pdf.CellFormat(0, 9, tr(truncate(v.Description, 120)), "", 1, "L", false, 0, "")

		if v.Image == nil {
			pdf.SetFont("Helvetica", "", 14)
			pdf.SetTextColor(226, 226, 226)
			pdf.SetXY(40, 90)
			pdf.MultiCell(pageW-80, 8, tr(v.Description), "", "C", false)
			continue
		}

		// Downscale and re-encode as JPEG; full-resolution PNGs bloat the
		// document without a visible gain at A4 size.
		scaled := imaging.Fit(v.Image, 2600, 1300, imaging.Lanczos)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(88)); err != nil {
			return nil, fmt.Errorf("encoding step %d image: %w", v.Index, err)
		}

		name := fmt.Sprintf("step-%d", v.Index)
		opts := fpdf.ImageOptions{ImageType: "JPEG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)

		iw := float64(scaled.Bounds().Dx())
		ih := float64(scaled.Bounds().Dy())
		ratio := imgBoxW / iw
		if h := imgBoxH / ih; h < ratio {
			ratio = h
		}
		fw, fh := iw*ratio, ih*ratio
		pdf.ImageOptions(name, (pageW-fw)/2, 24, fw, fh, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("rendering PDF report: %w", err)
	}
	return out.Bytes(), nil
}

// truncate cuts s to at most n runes, never mid-rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
