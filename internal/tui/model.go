// Package tui is the interactive route editor.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/climbr/internal/export"
	"github.com/Veraticus/climbr/internal/grade"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/session"
	"github.com/Veraticus/climbr/internal/tui/themes"
)

// Saver writes an export document and reports where it went.
type Saver interface {
	Write(doc model.ExportDocument) (string, error)
}

// Config wires the editor to a session.
type Config struct {
	Context    context.Context
	Controller *session.Controller
	Saver      Saver
	Clipboard  export.Clipboard
	Theme      themes.Theme
	Source     string
}

// Model holds the editor state.
type Model struct {
	ctx       context.Context
	ctrl      *session.Controller
	saver     Saver
	clipboard export.Clipboard
	theme     themes.Theme
	source    string
	status    string
	snap      session.Snapshot
	keymap    KeyMap
	help      help.Model
	notes     textinput.Model
	spinner   spinner.Model
	cursor    int
	width     int
	height    int
	statusErr bool
	editing   bool
	quitting  bool
}

// New creates an editor for cfg.Controller.
func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	notes := textinput.New()
	notes.Placeholder = "setter notes"
	notes.CharLimit = 200
	notes.Prompt = "notes › "

	return Model{
		ctx:       ctx,
		ctrl:      cfg.Controller,
		saver:     cfg.Saver,
		clipboard: cfg.Clipboard,
		theme:     cfg.Theme,
		source:    cfg.Source,
		snap:      cfg.Controller.Snapshot(),
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		notes:     notes,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.setSnapshot(msg.snapshot)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case savedMsg:
		if msg.err != nil {
			m.setStatus("Export failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Exported to "+msg.path, false)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Copied routes as JSON", false)
		}
		return m, nil

	case retryMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		}
		m.setSnapshot(m.ctrl.Snapshot())
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateNotes(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.snap.State {
	case session.StateError:
		if key.Matches(msg, m.keymap.Retry) {
			return m, m.retry()
		}
	case session.StateDone:
		return m.handleEditorKey(msg)
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec, ok := m.current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.snap.Records)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.GradeUp):
		m.applyPatch(vGradePatch(grade.StepV(rec.GradeV, 1)))
	case key.Matches(msg, m.keymap.GradeDown):
		m.applyPatch(vGradePatch(grade.StepV(rec.GradeV, -1)))
	case key.Matches(msg, m.keymap.FontUp):
		m.applyPatch(model.SetGradeFont(grade.StepFont(rec.GradeFont, 1)))
	case key.Matches(msg, m.keymap.FontDown):
		m.applyPatch(model.SetGradeFont(grade.StepFont(rec.GradeFont, -1)))
	case key.Matches(msg, m.keymap.Clear):
		m.applyPatch(model.ClearGrades())
	case key.Matches(msg, m.keymap.Notes):
		m.editing = true
		m.notes.SetValue(rec.SetterNotes)
		m.notes.CursorEnd()
		return m, m.notes.Focus()
	case key.Matches(msg, m.keymap.Save):
		return m, m.save()
	case key.Matches(msg, m.keymap.Copy):
		return m, m.copy()
	}
	return m, nil
}

// vGradePatch clears both grades when the V grade is stepped off the scale.
func vGradePatch(v string) model.Patch {
	if v == "" {
		return model.ClearGrades()
	}
	return model.SetGradeV(v)
}

func (m Model) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Commit):
		m.editing = false
		m.notes.Blur()
		m.applyPatch(model.SetNotes(m.notes.Value()))
		return m, nil
	case key.Matches(msg, m.keymap.Cancel):
		m.editing = false
		m.notes.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m *Model) applyPatch(p model.Patch) {
	if _, err := m.ctrl.Patch(m.cursor, p); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.status = ""
	m.setSnapshot(m.ctrl.Snapshot())
}

func (m *Model) setSnapshot(s session.Snapshot) {
	if s.Generation < m.snap.Generation {
		return
	}
	m.snap = s
	if m.cursor >= len(s.Records) {
		m.cursor = max(len(s.Records)-1, 0)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) current() (model.RouteRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Records) {
		return model.RouteRecord{}, false
	}
	return m.snap.Records[m.cursor], true
}

func (m Model) save() tea.Cmd {
	saver := m.saver
	doc := m.ctrl.ExportDocument()
	return func() tea.Msg {
		if saver == nil {
			return savedMsg{err: errNoSaver}
		}
		path, err := saver.Write(doc)
		return savedMsg{path: path, err: err}
	}
}

func (m Model) copy() tea.Cmd {
	cb := m.clipboard
	ctrl := m.ctrl
	return func() tea.Msg {
		if cb == nil {
			return copiedMsg{err: export.ErrClipboardUnavailable}
		}
		return copiedMsg{err: export.Copy(cb, ctrl)}
	}
}

func (m Model) retry() tea.Cmd {
	ctx := m.ctx
	ctrl := m.ctrl
	return func() tea.Msg {
		return retryMsg{err: ctrl.Retry(ctx)}
	}
}
