// Package tui provides a Bubble Tea TUI for browsing and editing a recorded
// session: step list with inline description editing and deletion, an
// annotation overview and a timeline.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stepcap/stepcap/internal/session"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	stepNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	kindHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	kindDrawStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	kindTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabSteps
	tabAnnotations
	tabTimeline
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Steps", "Annotations", "Timeline"}

// ── Model ────────────────────

// Saver persists edits made in the TUI.
type Saver interface {
	Save(s *session.Session) error
}

// Model is the root Bubble Tea model for the session browser.
type Model struct {
	sess      *session.Session
	saver     Saver
	dirName   string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool

	// Steps tab state.
	cursor   int
	expanded map[int]bool
	editing  bool
	input    textinput.Model
	saveErr  error
	dirty    bool
}

// New creates a TUI model for sess; edits are written through saver.
func New(sess *session.Session, saver Saver) Model {
	ti := textinput.New()
	ti.CharLimit = 4000
	return Model{
		sess:     sess,
		saver:    saver,
		dirName:  filepath.Base(sess.Dir),
		expanded: make(map[int]bool),
		input:    ti,
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(sess *session.Session, saver Saver) error {
	p := tea.NewProgram(New(sess, saver), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabTimeline {
				m.sortAsc = !m.sortAsc
				m.viewports[tabTimeline].SetContent(m.renderTimeline())
				m.viewports[tabTimeline].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabSteps && m.cursor > 0 {
				m.cursor--
				m.rebuildSteps()
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabSteps && m.cursor < len(m.sess.Steps)-1 {
				m.cursor++
				m.rebuildSteps()
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabSteps && len(m.sess.Steps) > 0 {
				if m.expanded[m.cursor] {
					delete(m.expanded, m.cursor)
				} else {
					m.expanded[m.cursor] = true
				}
				m.rebuildSteps()
				return m, nil
			}
		case "e":
			if m.activeTab == tabSteps && len(m.sess.Steps) > 0 {
				m.editing = true
				m.input.SetValue(m.sess.Steps[m.cursor].Description)
				m.input.Focus()
				m.input.Width = m.width - 8
				return m, textinput.Blink
			}
		case "d":
			if m.activeTab == tabSteps && len(m.sess.Steps) > 0 {
				// Deleting closes the gap: later steps renumber contiguously.
				m.sess.DeleteStep(m.cursor + 1)
				if m.cursor >= len(m.sess.Steps) && m.cursor > 0 {
					m.cursor--
				}
				m.persist()
				m.rebuildAll()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.sess.Steps[m.cursor].Description = m.input.Value()
		m.editing = false
		m.input.Blur()
		m.persist()
		m.rebuildAll()
		return m, nil
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) persist() {
	m.saveErr = m.saver.Save(m.sess)
	m.dirty = m.saveErr == nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  stepcap  " + m.dirName)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	var statusBar string
	if m.editing {
		statusBar = statusBarStyle.Width(m.width).Render(
			"  edit: " + m.input.View() + "   enter save · esc cancel")
	} else {
		hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit"
		if m.activeTab == tabSteps {
			hint = "  ↑/↓ select  enter expand  e edit  d delete  q quit"
		}
		if m.activeTab == tabTimeline {
			dir := "newest first"
			if m.sortAsc {
				dir = "oldest first"
			}
			hint += "  s sort (" + dir + ")"
		}
		right := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
		if m.saveErr != nil {
			right = "save failed: " + m.saveErr.Error()
		} else if m.dirty {
			right = "saved · " + right
		}
		pad := m.width - lipgloss.Width(hint) - lipgloss.Width(right) - 2
		if pad < 1 {
			pad = 1
		}
		statusBar = statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + right)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuildSteps() {
	m.viewports[tabSteps].SetContent(m.renderSteps())
}

func (m *Model) rebuildAll() {
	for i := tabID(0); i < tabCount; i++ {
		m.viewports[i].SetContent(m.renderTab(i))
	}
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabSteps:
		return m.renderSteps()
	case tabAnnotations:
		return m.renderAnnotations()
	case tabTimeline:
		return m.renderTimeline()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderSummary() string {
	s := m.sess
	var sb strings.Builder
	sb.WriteString(heading("Session Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Project:", s.Title())
	row("Directory:", s.Dir)
	row("Started:", s.StartTime.Format("2006-01-02 15:04:05 MST"))
	if s.StopTime != nil {
		row("Stopped:", s.StopTime.Format("2006-01-02 15:04:05 MST"))
		row("Duration:", s.StopTime.Sub(s.StartTime).Round(time.Second).String())
	} else {
		row("Stopped:", dimStyle.Render("(still recording)"))
	}
	row("Steps:", fmt.Sprintf("%d", len(s.Steps)))

	var objects, redactable int
	for _, st := range s.Steps {
		objects += len(st.Objects)
		if st.Screenshot != "" {
			redactable++
		}
	}
	sb.WriteString("\n")
	sb.WriteString(heading("Counts"))
	row("Screenshots:", fmt.Sprintf("%d", redactable))
	row("Text-only:", fmt.Sprintf("%d", len(s.Steps)-redactable))
	row("Annotations:", fmt.Sprintf("%d", objects))
	return sb.String()
}

func (m *Model) renderSteps() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Steps (%d)", len(m.sess.Steps))))
	if len(m.sess.Steps) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, st := range m.sess.Steps {
		ts := timeStyle.Render(st.Timestamp.Format("15:04:05"))
		num := stepNumStyle.Render(fmt.Sprintf("%3d", st.Index))

		var icon string
		if st.Screenshot == "" {
			icon = kindTextStyle.Render("txt")
		} else if len(st.Objects) > 0 || st.Crop != nil {
			icon = kindHighlightStyle.Render("ann")
		} else {
			icon = dimStyle.Render("img")
		}

		toggle := dimStyle.Render("  ▶ ")
		if m.expanded[i] {
			toggle = dimStyle.Render("  ▼ ")
		}

		row := fmt.Sprintf("%s%s %s %s  %s", toggle, num, icon, ts, oneLine(st.Description))
		if i == m.cursor {
			row = selectedRowStyle.Width(m.width - 2).Render(row)
		}
		sb.WriteString(row + "\n")

		if m.expanded[i] {
			if st.Screenshot != "" {
				sb.WriteString(dimStyle.Render("        screenshot: "+st.Screenshot) + "\n")
			}
			if st.Crop != nil {
				c := st.Crop.Canon()
				sb.WriteString(dimStyle.Render(fmt.Sprintf("        crop: (%d,%d)-(%d,%d)", c.X1, c.Y1, c.X2, c.Y2)) + "\n")
			}
			for _, obj := range st.Objects {
				sb.WriteString("        " + describeObject(obj) + "\n")
			}
			if len(st.Undo) > 0 {
				sb.WriteString(dimStyle.Render(fmt.Sprintf("        undo history: %d", len(st.Undo))) + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderAnnotations() string {
	var sb strings.Builder
	total := 0
	for _, st := range m.sess.Steps {
		total += len(st.Objects)
	}
	sb.WriteString(heading(fmt.Sprintf("Annotations (%d)", total)))
	if total == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, st := range m.sess.Steps {
		if len(st.Objects) == 0 && st.Crop == nil {
			continue
		}
		sb.WriteString(stepNumStyle.Render(fmt.Sprintf("  Step %d", st.Index)) + "\n")
		if st.Crop != nil {
			c := st.Crop.Canon()
			sb.WriteString(dimStyle.Render(fmt.Sprintf("    crop (%d,%d)-(%d,%d)", c.X1, c.Y1, c.X2, c.Y2)) + "\n")
		}
		for _, obj := range st.Objects {
			sb.WriteString("    " + describeObject(obj) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderTimeline() string {
	var sb strings.Builder
	sb.WriteString(heading("Timeline"))
	if len(m.sess.Steps) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	steps := make([]session.Step, len(m.sess.Steps))
	copy(steps, m.sess.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		if m.sortAsc {
			return steps[i].Timestamp.Before(steps[j].Timestamp)
		}
		return steps[j].Timestamp.Before(steps[i].Timestamp)
	})
	for _, st := range steps {
		ts := timeStyle.Render(st.Timestamp.Format("2006-01-02 15:04:05"))
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			ts, stepNumStyle.Render(fmt.Sprintf("#%d", st.Index)), oneLine(st.Description)))
	}
	return sb.String()
}

func describeObject(obj session.Object) string {
	switch obj.Kind {
	case session.KindHighlight:
		r := obj.Rect
		if r == nil {
			return kindHighlightStyle.Render("[HIGHLIGHT]")
		}
		c := r.Canon()
		return kindHighlightStyle.Render("[HIGHLIGHT]") +
			dimStyle.Render(fmt.Sprintf(" (%d,%d)-(%d,%d) %s", c.X1, c.Y1, c.X2, c.Y2, obj.Color))
	case session.KindDraw:
		return kindDrawStyle.Render("[DRAW]") +
			dimStyle.Render(fmt.Sprintf(" %d points, width %d, %s", len(obj.Points), obj.Width, obj.Color))
	default:
		return dimStyle.Render("[" + strings.ToUpper(obj.Kind) + "]")
	}
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) > 90 {
		s = string([]rune(s)[:90]) + "…"
	}
	return s
}
