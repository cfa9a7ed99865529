// Package export renders a recorded session as a shareable report. The HTML
// renderer produces a single self-contained dark-theme file with every
// screenshot inlined as base64; the PDF renderer produces a landscape-A4
// document with a cover page; the JSON renderer dumps the session document.
package export

import (
	"fmt"
	"image"
	"time"

	"github.com/stepcap/stepcap/internal/annotate"
	"github.com/stepcap/stepcap/internal/session"
)

// Renderer serializes a session to report bytes.
type Renderer interface {
	Render(sess *session.Session) ([]byte, error)
	// Ext is the output file extension without the dot.
	Ext() string
}

// ForFormat returns the renderer for a format name.
func ForFormat(format, author string) (Renderer, error) {
	switch format {
	case "html":
		return &HTMLRenderer{Author: author}, nil
	case "pdf":
		return &PDFRenderer{Author: author}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want html, pdf or json)", format)
	}
}

// stepView is one flattened step ready for templating.
type stepView struct {
	Index       int
	Description string
	Image       image.Image // nil for text-only steps
}

// flattenSteps applies crop and vector annotations to every step.
func flattenSteps(sess *session.Session) ([]stepView, error) {
	views := make([]stepView, 0, len(sess.Steps))
	for i := range sess.Steps {
		st := &sess.Steps[i]
		img, err := annotate.Flatten(sess.Dir, st)
		if err != nil {
			return nil, err
		}
		views = append(views, stepView{
			Index:       st.Index,
			Description: st.Description,
			Image:       img,
		})
	}
	return views, nil
}

// Filename returns the default report file name for a session,
// "<safe project name>.<ext>" or "report.<ext>" when unnamed.
func Filename(sess *session.Session, ext string) string {
	name := session.SafeName(sess.Project)
	if name == "" {
		name = "report"
	}
	return name + "." + ext
}

func generatedStamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
