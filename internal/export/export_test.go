package export_test

import (
	"encoding/json"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/stepcap/stepcap/internal/export"
	"github.com/stepcap/stepcap/internal/session"
)

// fixtureSession builds a two-step session on disk: one screenshot step with
// a highlight, one text-only step.
func fixtureSession(t *testing.T) *session.Session {
	t.Helper()
	dir := t.TempDir()

	img := imaging.New(120, 90, color.NRGBA{40, 40, 40, 255})
	if err := imaging.Save(img, filepath.Join(dir, "step_1.png")); err != nil {
		t.Fatalf("saving fixture image: %v", err)
	}

	r := session.Rect{X1: 10, Y1: 10, X2: 60, Y2: 40}
	sess := &session.Session{
		ID:        "fixture",
		Project:   "Expense Approval",
		StartTime: time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC),
		Steps:     []session.Step{},
		Dir:       dir,
	}
	sess.AppendStep(session.Step{
		Timestamp:   sess.StartTime,
		Description: "In 'Browser', released left mouse button at (200, 140)",
		Screenshot:  "step_1.png",
		Objects: []session.Object{
			{Kind: session.KindHighlight, Color: "#e74c3c", Rect: &r},
		},
	})
	sess.AppendStep(session.Step{
		Timestamp:   sess.StartTime.Add(5 * time.Second),
		Description: "Review the approval dialog",
	})
	return sess
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"html", "pdf", "json"} {
		r, err := export.ForFormat(format, "")
		if err != nil {
			t.Errorf("ForFormat(%q): %v", format, err)
			continue
		}
		if r.Ext() != format {
			t.Errorf("ForFormat(%q).Ext() = %q", format, r.Ext())
		}
	}
	if _, err := export.ForFormat("docx", ""); err == nil {
		t.Error("ForFormat(docx): expected error")
	}
}

func TestHTMLReportIsSelfContained(t *testing.T) {
	sess := fixtureSession(t)
	r, err := export.ForFormat("html", "Jordan")
	if err != nil {
		t.Fatalf("ForFormat: %v", err)
	}

	data, err := r.Render(sess)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "<title>Expense Approval</title>") {
		t.Error("report missing project title")
	}
	if !strings.Contains(out, "data:image/png;base64,") {
		t.Error("report has no inlined screenshot")
	}
	if strings.Contains(out, "ZgotmplZ") {
		t.Error("data URI was escaped by the template engine")
	}
	// Single file: no external references.
	for _, needle := range []string{`src="http`, `href="http`, `url(http`} {
		if strings.Contains(out, needle) {
			t.Errorf("report references an external resource: %s", needle)
		}
	}
	if !strings.Contains(out, "Review the approval dialog") {
		t.Error("text-only step missing from report")
	}
	if !strings.Contains(out, "Jordan") {
		t.Error("author missing from report")
	}
}

func TestPDFReportStructure(t *testing.T) {
	sess := fixtureSession(t)
	r, err := export.ForFormat("pdf", "Jordan")
	if err != nil {
		t.Fatalf("ForFormat: %v", err)
	}

	data, err := r.Render(sess)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("output does not start with %%PDF, got %q", string(data[:8]))
	}
	if len(data) < 1000 {
		t.Errorf("PDF suspiciously small: %d bytes", len(data))
	}
}

func TestJSONReportIsLossless(t *testing.T) {
	sess := fixtureSession(t)
	r, err := export.ForFormat("json", "")
	if err != nil {
		t.Fatalf("ForFormat: %v", err)
	}

	data, err := r.Render(sess)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var got session.Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Project != sess.Project {
		t.Errorf("Project = %q, want %q", got.Project, sess.Project)
	}
	if len(got.Steps) != len(sess.Steps) {
		t.Fatalf("Steps = %d, want %d", len(got.Steps), len(sess.Steps))
	}
	if got.Steps[0].Objects[0].Rect == nil {
		t.Error("annotation rect lost in JSON export")
	}
}

func TestFilename(t *testing.T) {
	sess := &session.Session{Project: "Demo: Flow"}
	if got := export.Filename(sess, "html"); got != "Demo_ Flow.html" {
		t.Errorf("Filename = %q", got)
	}
	if got := export.Filename(&session.Session{}, "pdf"); got != "report.pdf" {
		t.Errorf("Filename for unnamed session = %q", got)
	}
}
