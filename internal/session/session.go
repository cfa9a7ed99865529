// Package session defines the on-disk model of a recording: an ordered list
// of steps, each with a screenshot, an editable description and a vector
// annotation layer. A session is a directory under the recordings root
// containing steps.json, the screenshot PNGs and an inbox/ drop directory.
package session

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Rect is an axis-aligned rectangle in original image coordinates.
// Corners are stored as given; callers normalize with Canon before use.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Canon returns r with X1<=X2 and Y1<=Y2.
func (r Rect) Canon() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Annotation kinds. Redaction is deliberately not a kind: it is applied to
// the screenshot pixels immediately and cannot be represented as an object.
const (
	KindHighlight = "highlight"
	KindDraw      = "draw"
)

// Object is one non-destructive annotation on a step's screenshot.
// Highlight objects use Rect; draw objects use Points.
type Object struct {
	Kind   string   `json:"kind"`
	Color  string   `json:"color"`
	Width  int      `json:"width,omitempty"`
	Rect   *Rect    `json:"rect,omitempty"`
	Points [][2]int `json:"points,omitempty"`
}

// Step is one recorded user action.
type Step struct {
	Index       int       `json:"step"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	// Screenshot is the image filename within the session directory.
	// Empty for text-only steps.
	Screenshot string   `json:"screenshot,omitempty"`
	Objects    []Object `json:"objects"`
	Crop       *Rect    `json:"crop,omitempty"`
	// Undo holds JSON snapshots of {objects, crop}, newest last.
	Undo []string `json:"undo,omitempty"`
}

// Session is one recording run.
type Session struct {
	ID        string     `json:"id"`
	Project   string     `json:"project_name"`
	StartTime time.Time  `json:"start_time"`
	StopTime  *time.Time `json:"stop_time,omitempty"`
	Steps     []Step     `json:"steps"`

	// Dir is the session directory on disk. Set by the store, not persisted.
	Dir string `json:"-"`
}

// Title returns the project name, or a fallback for unnamed sessions.
func (s *Session) Title() string {
	if s.Project != "" {
		return s.Project
	}
	return "Untitled recording"
}

// Step returns the step with the given 1-based index.
func (s *Session) Step(n int) (*Step, error) {
	if n < 1 || n > len(s.Steps) {
		return nil, fmt.Errorf("no step %d (session has %d steps)", n, len(s.Steps))
	}
	return &s.Steps[n-1], nil
}

// AppendStep adds a step at the end and assigns its index.
func (s *Session) AppendStep(st Step) {
	st.Index = len(s.Steps) + 1
	if st.Objects == nil {
		st.Objects = []Object{}
	}
	s.Steps = append(s.Steps, st)
}

// InsertStep inserts a step at 1-based position pos, shifting later steps
// down. pos may be len(steps)+1 to append. Indices stay contiguous.
func (s *Session) InsertStep(pos int, st Step) error {
	if pos < 1 || pos > len(s.Steps)+1 {
		return fmt.Errorf("insert position %d out of range 1..%d", pos, len(s.Steps)+1)
	}
	if st.Objects == nil {
		st.Objects = []Object{}
	}
	s.Steps = append(s.Steps, Step{})
	copy(s.Steps[pos:], s.Steps[pos-1:])
	s.Steps[pos-1] = st
	s.renumber()
	return nil
}

// DeleteStep removes the step with 1-based index n. Remaining steps close
// the gap and keep ascending, contiguous indices. The removed step's
// screenshot filename is returned so the caller can delete the file.
func (s *Session) DeleteStep(n int) (screenshot string, err error) {
	st, err := s.Step(n)
	if err != nil {
		return "", err
	}
	screenshot = st.Screenshot
	s.Steps = append(s.Steps[:n-1], s.Steps[n:]...)
	s.renumber()
	return screenshot, nil
}

// MoveStep moves the step at src to position dst (both 1-based).
func (s *Session) MoveStep(src, dst int) error {
	if src < 1 || src > len(s.Steps) {
		return fmt.Errorf("no step %d (session has %d steps)", src, len(s.Steps))
	}
	if dst < 1 || dst > len(s.Steps) {
		return fmt.Errorf("move target %d out of range 1..%d", dst, len(s.Steps))
	}
	if src == dst {
		return nil
	}
	st := s.Steps[src-1]
	s.Steps = append(s.Steps[:src-1], s.Steps[src:]...)
	s.Steps = append(s.Steps, Step{})
	copy(s.Steps[dst:], s.Steps[dst-1:])
	s.Steps[dst-1] = st
	s.renumber()
	return nil
}

func (s *Session) renumber() {
	for i := range s.Steps {
		s.Steps[i].Index = i + 1
	}
}

// undoState is the per-step snapshot pushed before each vector mutation.
type undoState struct {
	Objects []Object `json:"objects"`
	Crop    *Rect    `json:"crop"`
}

// PushUndo snapshots the step's objects and crop onto its undo stack.
// Called before every vector or crop mutation. Redaction is destructive and
// must not be preceded by a push.
func (st *Step) PushUndo() {
	snap, err := json.Marshal(undoState{Objects: st.Objects, Crop: st.Crop})
	if err != nil {
		return
	}
	st.Undo = append(st.Undo, string(snap))
}

// PopUndo restores the most recent snapshot. Returns false when the stack
// is empty.
func (st *Step) PopUndo() bool {
	if len(st.Undo) == 0 {
		return false
	}
	raw := st.Undo[len(st.Undo)-1]
	st.Undo = st.Undo[:len(st.Undo)-1]
	var state undoState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return false
	}
	if state.Objects == nil {
		state.Objects = []Object{}
	}
	st.Objects = state.Objects
	st.Crop = state.Crop
	return true
}

// ClearUndo drops the step's undo history. Used after redaction, which
// invalidates every earlier snapshot's pixel context.
func (st *Step) ClearUndo() {
	st.Undo = nil
}

var unsafeFolderChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SafeName sanitizes a project name for use as a directory or file name.
// Returns "" when nothing usable remains.
func SafeName(name string) string {
	name = unsafeFolderChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, ". ")
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
