package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// ResetConfirmModel is the foreground of the reset confirmation overlay
type ResetConfirmModel struct {
	confirmActive bool
	width         int
	height        int
}

// ResetConfirmed is sent when the user confirms clearing the conversation
type ResetConfirmed struct{}

// ResetCancelled is sent when the confirmation dialog is dismissed
type ResetCancelled struct{}

func NewResetConfirmModel() ResetConfirmModel {
	return ResetConfirmModel{
		confirmActive: false,
	}
}

func (m ResetConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ResetConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "right", "tab"))):
			m.confirmActive = !m.confirmActive
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("y"))):
			return m, func() tea.Msg {
				return ResetConfirmed{}
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("n", "esc"))):
			return m, func() tea.Msg {
				return ResetCancelled{}
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if m.confirmActive {
				return m, func() tea.Msg {
					return ResetConfirmed{}
				}
			}
			return m, func() tea.Msg {
				return ResetCancelled{}
			}
		}
	}

	return m, nil
}

func (m ResetConfirmModel) View() string {
	var content strings.Builder

	content.WriteString(ConfirmTitleStyle.Render("Start a new conversation?"))
	content.WriteString("\n\n")
	content.WriteString(ConfirmMessageStyle.Render("This clears the current chat history."))
	content.WriteString("\n\n")

	buttons := RenderConfirmButton("Yes", m.confirmActive) + "   " + RenderConfirmButton("No", !m.confirmActive)
	content.WriteString(buttons)
	content.WriteString("\n\n")
	content.WriteString(HelpTextSimpleStyle.Render("←/→: Switch • Enter: Select • Esc: Cancel"))

	return ConfirmBorderStyle.Render(content.String())
}

// ResetConfirmOverlayModel wraps the confirmation dialog with the overlay library
type ResetConfirmOverlayModel struct {
	confirm ResetConfirmModel
	visible bool
}

func NewResetConfirmOverlayModel() ResetConfirmOverlayModel {
	return ResetConfirmOverlayModel{
		confirm: NewResetConfirmModel(),
		visible: false,
	}
}

func (m *ResetConfirmOverlayModel) Show() {
	m.confirm.confirmActive = false
	m.visible = true
}

func (m *ResetConfirmOverlayModel) Hide() {
	m.visible = false
}

func (m *ResetConfirmOverlayModel) IsVisible() bool {
	return m.visible
}

func (m *ResetConfirmOverlayModel) UpdateSize(width, height int) {
	m.confirm.width = width
	m.confirm.height = height
}

func (m *ResetConfirmOverlayModel) UpdateConfirm(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}

	var cmd tea.Cmd
	var mdl tea.Model
	mdl, cmd = m.confirm.Update(msg)
	m.confirm = mdl.(ResetConfirmModel)
	return cmd
}

func (m ResetConfirmOverlayModel) RenderOverlay(backgroundView string) string {
	if !m.visible {
		return backgroundView
	}

	overlayModel := overlay.New(
		m.confirm,
		&staticViewModel{content: backgroundView},
		overlay.Center, // horizontal position
		overlay.Center, // vertical position
		0,              // x offset
		0,              // y offset
	)

	return overlayModel.View()
}

// staticViewModel is a simple model that renders static content (background)
type staticViewModel struct {
	content string
}

func (m staticViewModel) Init() tea.Cmd {
	return nil
}

func (m staticViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m staticViewModel) View() string {
	return m.content
}
