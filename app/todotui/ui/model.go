// Package ui is the terminal front end for the task list. It renders the
// state of a tasksync engine and turns key presses into engine events.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jrazmi/todolist/client/session"
	"github.com/jrazmi/todolist/client/taskapi"
	"github.com/jrazmi/todolist/client/tasksync"
	"github.com/jrazmi/todolist/client/toasts"
)

// Engine is the part of tasksync.Engine the UI drives.
type Engine interface {
	Dispatch(ev tasksync.Event) error
	State() tasksync.State
	Updates() <-chan struct{}
	NewTemporaryID() tasksync.ID
}

// Toasts is the part of the toast queue the UI renders and closes.
type Toasts interface {
	State() toasts.State
	Close(id string, withAction bool) bool
	Updates() <-chan struct{}
}

// Accounts signs users up and in.
type Accounts interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (taskapi.Token, error)
}

const requestTimeout = 10 * time.Second

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSignIn
)

type stateMsg struct{}

type toastMsg struct{}

type signedInMsg struct {
	token taskapi.Token
}

type signInFailedMsg struct {
	err error
}

// Model is the root Bubble Tea model.
type Model struct {
	engine   Engine
	toasts   Toasts
	accounts Accounts
	tokens   session.Store
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model

	mode     mode
	input    textinput.Model
	email    textinput.Model
	password textinput.Model
	focus    int
	editing  tasksync.Record
	formErr  string

	state    tasksync.State
	rows     []tasksync.Record
	cursor   int
	signedIn bool

	width  int
	height int
}

func New(engine Engine, ts Toasts, accounts Accounts, tokens session.Store) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 1000

	email := textinput.New()
	email.Prompt = "email:    "

	password := textinput.New()
	password.Prompt = "password: "
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	_, signedIn, _ := tokens.Load()

	m := Model{
		engine:   engine,
		toasts:   ts,
		accounts: accounts,
		tokens:   tokens,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		input:    input,
		email:    email,
		password: password,
		signedIn: signedIn,
		height:   24,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dispatchCmd(tasksync.NextPageRequested{}),
		listen(m.engine.Updates(), stateMsg{}),
		listen(m.toasts.Updates(), toastMsg{}),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 6
		return m, nil

	case stateMsg:
		m.refresh()
		m.loadMoreIfAtEnd()
		return m, listen(m.engine.Updates(), stateMsg{})

	case toastMsg:
		return m, listen(m.toasts.Updates(), toastMsg{})

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case signedInMsg:
		if err := m.tokens.Save(session.Token{Value: msg.token.Token, ExpiresAt: msg.token.ExpiresAt}); err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		m.signedIn = true
		m.mode = modeList
		m.formErr = ""
		m.password.Reset()
		m.dispatch(tasksync.ReloadRequested{})
		return m, nil

	case signInFailedMsg:
		m.formErr = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeSignIn:
			return m.updateSignIn(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.loadMoreIfAtEnd()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.input.SetValue(m.state.NewText)
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Toggle):
		if rec, ok := m.selected(); ok {
			done := !rec.IsComplete
			m.dispatch(tasksync.EditRequested{
				ID:       rec.ID,
				Changes:  tasksync.Changes{IsComplete: &done},
				Original: tasksync.Fields{Text: rec.Text, IsComplete: rec.IsComplete},
			})
		}

	case key.Matches(msg, m.keys.Edit):
		if rec, ok := m.selected(); ok && !rec.ID.IsTemporary() {
			m.mode = modeEdit
			m.editing = rec
			m.input.SetValue(rec.Text)
			cmd := m.input.Focus()
			return m, cmd
		}

	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.selected(); ok {
			m.dispatch(tasksync.DeleteRequested{ID: rec.ID})
		}

	case key.Matches(msg, m.keys.Undo):
		if s := m.toasts.State(); s.Live != nil && s.Live.ButtonText != "" && !s.Closing {
			m.toasts.Close(s.Live.ID, true)
		}

	case key.Matches(msg, m.keys.Reload):
		m.dispatch(tasksync.ReloadRequested{})

	case key.Matches(msg, m.keys.SignIn):
		m.mode = modeSignIn
		m.focus = 0
		m.formErr = ""
		m.password.Blur()
		cmd := m.email.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.SignOut):
		m.signedIn = false
		m.dispatch(tasksync.SignedOut{})
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeList
		return m, nil

	case tea.KeyEnter:
		text := m.input.Value()
		if m.mode == modeAdd {
			m.dispatch(tasksync.NewTextChanged{Text: text})
			m.dispatch(tasksync.CreateRequested{TempID: m.engine.NewTemporaryID()})
			m.cursor = 0
		} else if text != "" && text != m.editing.Text {
			m.dispatch(tasksync.EditRequested{
				ID:       m.editing.ID,
				Changes:  tasksync.Changes{Text: &text},
				Original: tasksync.Fields{Text: m.editing.Text, IsComplete: m.editing.IsComplete},
			})
		}
		m.input.Reset()
		m.input.Blur()
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeAdd {
		m.dispatch(tasksync.NewTextChanged{Text: m.input.Value()})
	}
	return m, cmd
}

func (m Model) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.email.Blur()
		m.password.Blur()
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.password.Blur()
			cmd := m.email.Focus()
			return m, cmd
		}
		m.email.Blur()
		cmd := m.password.Focus()
		return m, cmd

	case tea.KeyEnter, tea.KeyCtrlN:
		email := strings.TrimSpace(m.email.Value())
		password := m.password.Value()
		if email == "" || password == "" {
			m.formErr = "Email and password are required."
			return m, nil
		}
		m.formErr = ""
		return m, m.signIn(email, password, msg.Type == tea.KeyCtrlN)
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) signIn(email, password string, signUp bool) tea.Cmd {
	accounts := m.accounts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if signUp {
			if err := accounts.SignUp(ctx, email, password); err != nil {
				return signInFailedMsg{err: err}
			}
		}
		tok, err := accounts.SignIn(ctx, email, password)
		if err != nil {
			return signInFailedMsg{err: err}
		}
		return signedInMsg{token: tok}
	}
}

func (m *Model) refresh() {
	m.state = m.engine.State()
	m.rows = m.state.Ordered()
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

// loadMoreIfAtEnd asks for the next page once the cursor sits on the last row.
func (m *Model) loadMoreIfAtEnd() {
	if m.state.Status != tasksync.Loaded || !m.state.HasMore() {
		return
	}
	if len(m.rows) == 0 || m.cursor >= len(m.rows)-1 {
		m.dispatch(tasksync.NextPageRequested{})
	}
}

func (m Model) selected() (tasksync.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tasksync.Record{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) dispatch(ev tasksync.Event) {
	_ = m.engine.Dispatch(ev)
}

func (m Model) dispatchCmd(ev tasksync.Event) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		_ = engine.Dispatch(ev)
		return nil
	}
}

func listen(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return msg
	}
}

func (m Model) View() string {
	if m.mode == modeSignIn {
		return m.signInView()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Tasks"))
	b.WriteString(" ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.mode == modeAdd || m.mode == modeEdit {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.listView())

	if line := m.toastLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	switch m.state.Status {
	case tasksync.Loading:
		return m.spinner.View() + " loading"
	case tasksync.Error:
		return errorStyle.Render(m.state.Err)
	case tasksync.Loaded:
		if !m.signedIn {
			return pendingStyle.Render("not signed in, press s")
		}
		return fmt.Sprintf("%d shown", len(m.rows))
	default:
		return ""
	}
}

func (m Model) listView() string {
	if len(m.rows) == 0 {
		return pendingStyle.Render("  nothing to do") + "\n"
	}

	visible := max(m.height-8, 3)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.rows))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.rowView(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}
	if m.state.HasMore() {
		b.WriteString(pendingStyle.Render("  more…"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) rowView(rec tasksync.Record, selected bool) string {
	box := "[ ]"
	if rec.IsComplete {
		box = "[x]"
	}
	text := rec.Text
	switch {
	case rec.ID.IsTemporary():
		text = pendingStyle.Render(text)
	case rec.IsComplete:
		text = doneStyle.Render(text)
	}

	line := box + " " + text
	if selected {
		return selectedStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) toastLine() string {
	s := m.toasts.State()
	live := s.Live
	if live == nil {
		return ""
	}
	parts := []string{live.Message}
	if live.UseSpinner && !s.Closing {
		parts = append([]string{m.spinner.View()}, parts...)
	}
	if live.ButtonText != "" && !s.Closing {
		parts = append(parts, toastButtonStyle.Render("["+live.ButtonText+": u]"))
	}
	return toastStyle.Render(strings.Join(parts, " "))
}

func (m Model) signInView() string {
	lines := []string{
		headerStyle.Render("Sign in"),
		"",
		m.email.View(),
		m.password.View(),
		"",
		pendingStyle.Render("enter: sign in  ctrl+n: create account  tab: switch  esc: back"),
	}
	if m.formErr != "" {
		lines = append(lines, "", errorStyle.Render(m.formErr))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
