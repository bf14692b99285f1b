// Package chat is the interactive bubbletea program. The model is a thin
// shell around session.Session: every keypress either edits the input
// widgets or hands a completed action to the session, and the view renders
// whatever the transcript holds.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"quartermaster/cmd/quartermaster/ui"
	"quartermaster/internal/session"
)

// Model is the bubbletea model for a chat session.
type Model struct {
	// ctx is the program context; session calls issued from commands run
	// under it so in-flight work is cancelled when the program exits.
	ctx context.Context

	session *session.Session
	styles  ui.Styles

	input    textarea.Model
	history  viewport.Model
	spinner  spinner.Model
	picker   list.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// busy is true while a session call is in flight; input is ignored
	// until the reply lands.
	busy bool

	err error
}

// resultItem adapts a search result to the list widget.
type resultItem struct {
	name string
	id   string
}

func (i resultItem) Title() string       { return i.name }
func (i resultItem) Description() string { return i.id }
func (i resultItem) FilterValue() string { return i.name }

// New creates the chat model around an existing session.
func New(ctx context.Context, sess *session.Session, styles ui.Styles) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask Quartermaster to find or install a package..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(1)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	delegate := list.NewDefaultDelegate()
	picker := list.New(nil, delegate, 0, 0)
	picker.Title = "Select a package"
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)
	picker.SetShowHelp(false)

	return Model{
		ctx:     ctx,
		session: sess,
		styles:  styles,
		input:   ta,
		spinner: sp,
		picker:  picker,
	}
}

// Init starts the spinner and the input blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// setSize lays out the widgets for a terminal size.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height

	historyHeight := height - inputAreaHeight - headerHeight - footerHeight
	if historyHeight < 1 {
		historyHeight = 1
	}

	if !m.ready {
		m.history = viewport.New(width, historyHeight)
		m.ready = true
	} else {
		m.history.Width = width
		m.history.Height = historyHeight
	}

	m.input.SetWidth(width - 4)
	m.picker.SetSize(width, historyHeight)

	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-6),
	); err == nil {
		m.renderer = r
	}

	m.refreshHistory()
}

// showResults loads search results into the picker.
func (m *Model) showResults() {
	results := m.session.Results()
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{name: r.Name, id: r.ID}
	}
	m.picker.SetItems(items)
	m.picker.ResetSelected()
}

// Run starts the chat program and blocks until it exits.
func Run(ctx context.Context, sess *session.Session) error {
	m := New(ctx, sess, ui.DefaultStyles())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
