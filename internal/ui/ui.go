// Package ui provides the terminal chat interface using Bubble Tea.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Engine is the assistant surface the chat drives.
type Engine interface {
	RunStream(ctx context.Context, question string) <-chan string
	ListTools() []string
}

// Model is the Bubble Tea model for the research chat.
type Model struct {
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles

	engine   Engine
	messages []chatMessage
	stream   <-chan string
	partial  strings.Builder
	busy     bool

	width    int
	height   int
	ready    bool
	quitting bool
}

// chatMessage represents a message in the chat history.
type chatMessage struct {
	role    string // "user", "assistant", "system"
	content string
}

// NewModel creates a new UI model over the assistant engine.
func NewModel(engine Engine) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about the market... (e.g., 'BTC short-term outlook?')"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7931A"))

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.DefaultKeyMap()

	return Model{
		textInput: ti,
		spinner:   s,
		viewport:  vp,
		styles:    DefaultStyles(),
		engine:    engine,
		messages:  make([]chatMessage, 0),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

// Stream lifecycle messages.
type streamStartedMsg struct{ ch <-chan string }
type chunkMsg string
type streamDoneMsg struct{}

// startQuery launches the assistant pipeline for one question.
func (m Model) startQuery(question string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return streamStartedMsg{ch: engine.RunStream(context.Background(), question)}
	}
}

// waitForChunk blocks on the next stream chunk.
func waitForChunk(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-ch
		if !ok {
			return streamDoneMsg{}
		}
		return chunkMsg(chunk)
	}
}

// headerHeight returns the number of terminal lines occupied by the banner.
func (m Model) headerHeight() int {
	banner := m.styles.BannerTitle.Render(Banner())
	return lipgloss.Height(banner) + 2
}

// footerHeight returns the number of terminal lines for input + help bar.
func (m Model) footerHeight() int {
	return 4
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.busy {
		if m.partial.Len() > 0 {
			b.WriteString(m.styles.AssistantMessage.Render("Assistant: " + m.partial.String()))
		} else {
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
			b.WriteString(m.styles.StatusText.Render("collecting market data..."))
		}
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			question := strings.TrimSpace(m.textInput.Value())
			if question == "" {
				return m, nil
			}
			if handled, cmd := m.handleCommand(question); handled {
				m.updateViewport()
				return m, cmd
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: question})
			m.textInput.SetValue("")
			m.busy = true
			m.partial.Reset()
			m.updateViewport()
			return m, tea.Batch(m.startQuery(question), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpWidth := msg.Width
		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.viewport.KeyMap = viewport.DefaultKeyMap()
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		m.ready = true
		m.updateViewport()

	case streamStartedMsg:
		m.stream = msg.ch
		return m, waitForChunk(m.stream)

	case chunkMsg:
		m.partial.WriteString(string(msg))
		m.updateViewport()
		return m, waitForChunk(m.stream)

	case streamDoneMsg:
		answer := strings.TrimSpace(m.partial.String())
		if answer == "" {
			answer = "(no answer)"
		}
		m.messages = append(m.messages, chatMessage{role: "assistant", content: answer})
		m.partial.Reset()
		m.busy = false
		m.stream = nil
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.busy {
			m.updateViewport()
		}
	}

	if !m.busy {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// handleCommand processes special chat commands, reporting whether the input
// was consumed.
func (m *Model) handleCommand(input string) (bool, tea.Cmd) {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		m.quitting = true
		return true, tea.Quit

	case "clear":
		m.messages = make([]chatMessage, 0)
		m.textInput.SetValue("")
		return true, nil

	case "help", "?":
		m.messages = append(m.messages, chatMessage{
			role: "system",
			content: `Available commands:
  help, ?     Show this help
  clear       Clear chat history
  tools       List research tools
  exit, quit  Exit

Example questions:
  "BTC short-term outlook?"
  "Is ETH oversold on the 4h chart?"
  "Current fear & greed index?"
  "Worth buying this dip?"`,
		})
		m.textInput.SetValue("")
		return true, nil

	case "tools":
		m.messages = append(m.messages, chatMessage{
			role:    "system",
			content: "Available tools:\n  " + strings.Join(m.engine.ListTools(), "\n  "),
		})
		m.textInput.SetValue("")
		return true, nil
	}
	return false, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.SystemMessage.Render("Goodbye!\n")
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.styles.BannerTitle.Render(Banner()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Prompt.Render("> "))
	if m.busy {
		b.WriteString(m.styles.StatusText.Render("(analyzing...)"))
	} else {
		b.WriteString(m.textInput.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// renderMessage renders a single chat message.
func (m Model) renderMessage(msg chatMessage) string {
	switch msg.role {
	case "user":
		return m.styles.UserMessage.Render("You: " + msg.content)
	case "assistant":
		return m.styles.AssistantMessage.Render("Assistant: " + msg.content)
	case "system":
		return m.styles.SystemMessage.Render(msg.content)
	}
	return ""
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
		m.styles.HelpKey.Render("tools") + m.styles.HelpValue.Render(" list tools"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}
