package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/qmuntal/stateless"

	"news-chat/internal/chat"
	"news-chat/internal/logging"
	"news-chat/internal/transport"
)

const (
	titleHeight    = 4
	textareaHeight = 5
	helpHeight     = 2
	padding        = 2
)

type ChatViewModel struct {
	controller   *chat.Controller
	transport    transport.Transport
	mode         string
	snapshot     chat.Snapshot
	viewport     viewport.Model
	textarea     textarea.Model
	spinner      spinner.Model
	resetConfirm ResetConfirmOverlayModel
	width        int
	height       int
	ctx          context.Context
	cancelFunc   context.CancelFunc
	mdRenderer   *glamour.TermRenderer
}

// StateUpdated signals that the conversation state changed and the view
// should pull a fresh snapshot.
type StateUpdated struct{}

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	// Try auto style first
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-10),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with auto style: %v, trying fallback", err)

	// Try basic style as fallback
	renderer, err = glamour.NewTermRenderer(
		glamour.WithWordWrap(width - 10),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with basic style: %v, using no style", err)

	// Last resort: try with no options (should never fail)
	renderer, err = glamour.NewTermRenderer()
	if err != nil {
		logging.Error("Critical: Failed to create basic markdown renderer: %v", err)
		return nil
	}

	return renderer
}

// safeRenderMarkdown safely renders markdown with panic recovery and fallback
func (m *ChatViewModel) safeRenderMarkdown(content string) string {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in markdown rendering: %v", r)
		}
	}()

	// Fallback to plain text if no renderer
	if m.mdRenderer == nil {
		logging.Error("Markdown renderer is nil, falling back to plain text")
		return content
	}

	// Empty content returns as-is
	if content == "" {
		return content
	}

	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

func NewChatViewModel(controller *chat.Controller, tr transport.Transport, mode string, width, height int) ChatViewModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about the news..."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	// Configure textarea key bindings - keep only essential editing keys
	ta.KeyMap.CharacterForward = key.NewBinding(key.WithKeys("right"))
	ta.KeyMap.CharacterBackward = key.NewBinding(key.WithKeys("left"))
	ta.KeyMap.LineStart = key.NewBinding(key.WithKeys("home"))
	ta.KeyMap.LineEnd = key.NewBinding(key.WithKeys("end"))
	ta.KeyMap.DeleteCharacterBackward = key.NewBinding(key.WithKeys("backspace"))
	ta.KeyMap.DeleteCharacterForward = key.NewBinding(key.WithKeys("delete"))
	ta.KeyMap.LineNext = key.NewBinding()
	ta.KeyMap.LinePrevious = key.NewBinding()
	ta.KeyMap.WordForward = key.NewBinding()
	ta.KeyMap.WordBackward = key.NewBinding()
	ta.KeyMap.DeleteWordBackward = key.NewBinding()
	ta.KeyMap.DeleteWordForward = key.NewBinding()
	ta.KeyMap.DeleteAfterCursor = key.NewBinding()
	ta.KeyMap.DeleteBeforeCursor = key.NewBinding()
	ta.KeyMap.InsertNewline = key.NewBinding()
	ta.KeyMap.Paste = key.NewBinding()

	viewportHeight := height - titleHeight - textareaHeight - helpHeight - padding
	vp := viewport.New(width-6, viewportHeight)
	vp.SetContent("")
	vp.MouseWheelDelta = 2

	// Configure viewport key bindings - keep arrows and page up/down
	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	rc := NewResetConfirmOverlayModel()
	rc.UpdateSize(width, height)

	mdRenderer := createMarkdownRenderer(width)

	return ChatViewModel{
		controller:   controller,
		transport:    tr,
		mode:         mode,
		viewport:     vp,
		textarea:     ta,
		spinner:      sp,
		resetConfirm: rc,
		width:        width,
		height:       height,
		ctx:          ctx,
		cancelFunc:   cancel,
		mdRenderer:   mdRenderer,
	}
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.initialize(),
		waitForUpdate(m.controller.Updates()),
	)
}

func (m ChatViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle confirmation dialog outcomes first
	switch msg.(type) {
	case ResetConfirmed:
		m.resetConfirm.Hide()
		m.textarea.Focus()
		return m, m.resetSession()

	case ResetCancelled:
		m.resetConfirm.Hide()
		m.textarea.Focus()
		return m, nil
	}

	// Route input to the confirmation dialog while it is visible
	if m.resetConfirm.IsVisible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			cmd := m.resetConfirm.UpdateConfirm(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - titleHeight - textareaHeight - helpHeight - padding
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = viewportHeight
		m.textarea.SetWidth(msg.Width - 4)
		m.resetConfirm.UpdateSize(msg.Width, msg.Height)

		// Update markdown renderer word wrap width
		m.mdRenderer = createMarkdownRenderer(msg.Width)
		m.renderMessages()

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+x", "ctrl+c":
			m.cancelFunc()
			m.controller.Close()
			return m, tea.Quit

		case "ctrl+r":
			if !m.snapshot.IsResetting {
				m.resetConfirm.Show()
				m.textarea.Blur()
			}
			return m, nil

		case "enter":
			if m.busy() {
				return m, nil
			}
			content := m.textarea.Value()
			if strings.TrimSpace(content) == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.send(content)
		}

	case StateUpdated:
		wasAtBottom := m.viewport.AtBottom()
		m.snapshot = m.controller.Snapshot()
		m.renderMessages()
		if wasAtBottom || m.snapshot.IsStreaming || m.snapshot.IsLoading {
			m.viewport.GotoBottom()
		}
		return m, waitForUpdate(m.controller.Updates())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.busy() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatViewModel) View() string {
	var b strings.Builder

	title := TitleWithPaddingStyle.Render("News Chat")
	b.WriteString(title + "\n")

	// Line 1: transport mode, connection state, session
	statusLine := fmt.Sprintf("Mode: %s | Connection: %s | Session: %s",
		m.mode,
		m.connectionLabel(),
		shortSessionID(m.snapshot.SessionID),
	)
	b.WriteString(statusBarStyle.Render(statusLine) + "\n")

	// Line 2: activity
	var activityLine string
	switch {
	case m.snapshot.IsResetting:
		activityLine = m.spinner.View() + " Starting new conversation..."
	case m.snapshot.IsStreaming:
		activityLine = m.spinner.View() + " Receiving answer..."
	case m.snapshot.IsLoading:
		activityLine = m.spinner.View() + " Waiting for response..."
	default:
		activityLine = fmt.Sprintf("Messages: %d", len(m.snapshot.Messages))
	}
	b.WriteString(statusBarStyle.Render(activityLine) + "\n")

	if m.snapshot.Err != "" {
		b.WriteString(RenderError(m.snapshot.Err) + "\n")
	} else {
		b.WriteString("\n")
	}

	viewportWithBorder := RenderViewportWithBorder(m.viewport.View())
	b.WriteString(viewportWithBorder)
	b.WriteString("\n")

	scrollInfo := m.renderScrollIndicator()
	if scrollInfo != "" {
		b.WriteString(scrollInfo)
	}
	b.WriteString("\n\n")

	b.WriteString(m.textarea.View() + "\n")

	helpText := "Enter: Send • Ctrl+R: New Conversation • ↑/↓: Scroll • PgUp/PgDn: Page Scroll • Ctrl+X: Exit"
	b.WriteString(helpStyle.Render(helpText))

	baseView := b.String()

	return m.resetConfirm.RenderOverlay(baseView)
}

func (m ChatViewModel) busy() bool {
	return m.snapshot.IsLoading || m.snapshot.IsStreaming || m.snapshot.IsResetting
}

func (m ChatViewModel) connectionLabel() string {
	if stater, ok := m.transport.(interface{ ConnectionState() stateless.State }); ok {
		return fmt.Sprint(stater.ConnectionState())
	}
	if m.transport.IsConnected() {
		return "ready"
	}
	return "offline"
}

func shortSessionID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 16 {
		return id[:16] + "…"
	}
	return id
}

func (m ChatViewModel) initialize() tea.Cmd {
	return func() tea.Msg {
		m.controller.Initialize(m.ctx)
		return StateUpdated{}
	}
}

func (m ChatViewModel) send(content string) tea.Cmd {
	return func() tea.Msg {
		m.controller.SendMessage(m.ctx, content)
		return StateUpdated{}
	}
}

func (m ChatViewModel) resetSession() tea.Cmd {
	return func() tea.Msg {
		m.controller.ResetSession(m.ctx)
		return StateUpdated{}
	}
}

// waitForUpdate creates a command that waits for the next state change
func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return StateUpdated{}
	}
}

func (m *ChatViewModel) renderMessages() {
	var b strings.Builder

	for _, msg := range m.snapshot.Messages {
		switch msg.Role {
		case chat.RoleUser:
			label := UserMessageLabelStyle.Render("You:")
			timestamp := TimestampStyle.Render(msg.Timestamp.Format("15:04"))

			renderedContent := m.safeRenderMarkdown(msg.Content)

			b.WriteString(GetUserMessageContentStyle(m.width).Render(label + " " + timestamp + "\n" + renderedContent))
			b.WriteString("\n\n")

		default:
			label := AssistantMessageLabelStyle.Render("Assistant:")
			timestamp := TimestampStyle.Render(msg.Timestamp.Format("15:04"))

			if msg.Status == chat.StatusError {
				content := msg.Content
				if msg.Error != "" {
					content += "\n" + msg.Error
				}
				b.WriteString(GetErrorMessageContentStyle(m.width).Render(label + " " + timestamp + "\n" + content))
				b.WriteString("\n\n")
				continue
			}

			content := msg.Content
			if msg.IsStreaming {
				// Plain text while streaming, cursor marks the live message
				b.WriteString(GetAssistantMessageContentStyle(m.width).Render(label + " " + timestamp + "\n" + content + "▌"))
				b.WriteString("\n\n")
				continue
			}

			renderedContent := m.safeRenderMarkdown(content)
			block := label + " " + timestamp + "\n" + renderedContent

			if len(msg.Sources) > 0 {
				block += "\n" + SourcesStyle.Render("Sources: "+strings.Join(msg.Sources, ", "))
			}

			b.WriteString(GetAssistantMessageContentStyle(m.width).Render(block))
			b.WriteString("\n\n")
		}
	}

	m.viewport.SetContent(b.String())
}

func (m ChatViewModel) renderScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}

	scrollPercent := int(m.viewport.ScrollPercent() * 100)
	indicator := fmt.Sprintf("Scroll: %d%% ↕", scrollPercent)

	return ScrollIndicatorStyle.Render(indicator)
}
