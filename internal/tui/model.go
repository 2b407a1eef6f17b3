package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"caregate/internal/pipeline"
)

// answerMsg carries a finished pipeline response back into the update loop.
type answerMsg struct {
	resp pipeline.QueryResponse
}

// Model is the chat UI over an in-process orchestrator.
type Model struct {
	orchestrator *pipeline.Orchestrator
	styles       Styles

	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	history   []string
	thinking  bool
	width     int
	height    int
	indexSize int
	ready     bool
}

// ModelConfig configures a new TUI model.
type ModelConfig struct {
	Orchestrator *pipeline.Orchestrator
	Styles       Styles
	IndexSize    int
}

// NewModel creates the chat model.
func NewModel(cfg ModelConfig) Model {
	input := textinput.New()
	input.Placeholder = "Ask a health question..."
	input.Focus()
	input.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		orchestrator: cfg.Orchestrator,
		styles:       cfg.Styles,
		input:        input,
		spinner:      sp,
		indexSize:    cfg.IndexSize,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 4 // status bar + input rows
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.thinking {
				break
			}
			if question == "/quit" || question == "/exit" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.history = append(m.history, m.renderUser(question))
			m.thinking = true
			m.refreshViewport()
			cmds = append(cmds, m.ask(question), m.spinner.Tick)
		}

	case answerMsg:
		m.thinking = false
		m.history = append(m.history, m.renderAnswer(msg.resp))
		m.refreshViewport()

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// ask runs the pipeline off the update loop.
func (m Model) ask(question string) tea.Cmd {
	orch := m.orchestrator
	return func() tea.Msg {
		return answerMsg{resp: orch.HandleQuery(context.Background(), question)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	status := fmt.Sprintf("caregate | %d chunks indexed | ctrl+c to quit", m.indexSize)
	if m.thinking {
		status = m.spinner.View() + " thinking..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.styles.StatusBar.Width(m.width).Render(status),
		m.styles.InputBorder.Width(m.width).Render(m.input.View()),
	)
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.history, "\n\n"))
	m.viewport.GotoBottom()
}

func (m Model) renderUser(question string) string {
	return m.styles.UserLabel.Render("You") + "\n" + m.styles.UserBubble.Render(question)
}

func (m Model) renderAnswer(resp pipeline.QueryResponse) string {
	var b strings.Builder

	label := m.styles.AssistantLabel.Render("Assistant") + " " + m.renderConfidence(resp.Confidence)
	b.WriteString(label + "\n")

	if !resp.IsSafe {
		b.WriteString(m.styles.Refusal.Render(resp.Answer) + "\n")
		b.WriteString(m.styles.AssistantText.Render(resp.RefusalReason) + "\n")
	} else {
		b.WriteString(m.styles.AssistantText.Render(resp.Answer) + "\n")
		if resp.Explanation != "" {
			b.WriteString(m.styles.AssistantText.Render(resp.Explanation) + "\n")
		}
	}

	if len(resp.Evidence) > 0 {
		sources := make([]string, 0, len(resp.Evidence))
		seen := make(map[string]bool)
		for _, e := range resp.Evidence {
			if !seen[e.Source] {
				seen[e.Source] = true
				sources = append(sources, e.Source)
			}
		}
		b.WriteString(m.styles.Evidence.Render("Sources: "+strings.Join(sources, ", ")) + "\n")
	}

	if resp.Disclaimer != "" {
		b.WriteString(m.styles.Disclaimer.Render(resp.Disclaimer))
	}
	return b.String()
}

func (m Model) renderConfidence(c pipeline.Confidence) string {
	switch c {
	case pipeline.ConfidenceHigh:
		return m.styles.ConfHigh.Render("[High]")
	case pipeline.ConfidenceMedium:
		return m.styles.ConfMedium.Render("[Medium]")
	default:
		return m.styles.ConfLow.Render("[Low]")
	}
}
