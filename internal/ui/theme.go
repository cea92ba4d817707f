package ui

import (
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Theme registry for the application
var Theme *tint.Registry

// Common style elements used across the chat view
var (
	TitleStyle            lipgloss.Style
	TitleWithPaddingStyle lipgloss.Style
	errorStyle            lipgloss.Style
	ErrorBannerStyle      lipgloss.Style
	statusBarStyle        lipgloss.Style
	helpStyle             lipgloss.Style
	HelpTextSimpleStyle   lipgloss.Style

	UserMessageLabelStyle        lipgloss.Style
	AssistantMessageLabelStyle   lipgloss.Style
	UserMessageContentStyle      lipgloss.Style
	AssistantMessageContentStyle lipgloss.Style
	ErrorMessageContentStyle     lipgloss.Style
	SourcesStyle                 lipgloss.Style
	TimestampStyle               lipgloss.Style
	MetadataStyle                lipgloss.Style
	SpinnerStyle                 lipgloss.Style
	ViewportBorderStyle          lipgloss.Style
	ScrollIndicatorStyle         lipgloss.Style

	// Reset confirmation overlay styles
	ConfirmBorderStyle       lipgloss.Style
	ConfirmTitleStyle        lipgloss.Style
	ConfirmMessageStyle      lipgloss.Style
	ConfirmActiveButtonStyle lipgloss.Style
	ConfirmButtonStyle       lipgloss.Style
)

func init() {
	// Initialize with Tint theme
	tint.NewDefaultRegistry()
	tint.SetTint(tint.TintChalk)
	Theme = tint.DefaultRegistry

	// Initialize styles after tint is set up
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple())

	TitleWithPaddingStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple()).
		Padding(0, 1)

	// Error styles
	errorStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Bold(true).
		Padding(1)

	ErrorBannerStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Bold(true).
		Padding(0, 1)

	// Status bar styles
	statusBarStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 1)

	// Help text styles
	helpStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(1, 0, 0, 1)

	HelpTextSimpleStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	// Message styles (for chat messages)
	UserMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.White()).
		Bold(true)

	AssistantMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Bold(true)

	UserMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	AssistantMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	ErrorMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Padding(0, 1).
		MarginBottom(1)

	SourcesStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Italic(true)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	// Metadata/info styles
	MetadataStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	// Spinner styles
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(tint.Purple())

	// Border styles
	ViewportBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.White()).
		Padding(0, 1)

	// Scroll indicator style
	ScrollIndicatorStyle = lipgloss.NewStyle().
		Foreground(tint.White()).
		Bold(false)

	// Reset confirmation overlay styles
	ConfirmBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Yellow()).
		Padding(1, 2)

	ConfirmTitleStyle = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		Bold(true)

	ConfirmMessageStyle = lipgloss.NewStyle().
		Foreground(tint.Fg())

	ConfirmActiveButtonStyle = lipgloss.NewStyle().
		Foreground(tint.Bg()).
		Background(tint.Purple()).
		Bold(true)

	ConfirmButtonStyle = lipgloss.NewStyle().
		Foreground(tint.Purple())
}

// RenderError renders an error message
func RenderError(msg string) string {
	return ErrorBannerStyle.Render("✗ " + msg)
}

// RenderViewportWithBorder renders content with a viewport border style
func RenderViewportWithBorder(content string) string {
	return ViewportBorderStyle.Render(content)
}

// GetUserMessageContentStyle returns a style for user message content with given width
func GetUserMessageContentStyle(width int) lipgloss.Style {
	return UserMessageContentStyle.
		Width(width - 10)
}

// GetAssistantMessageContentStyle returns a style for assistant message content with given width
func GetAssistantMessageContentStyle(width int) lipgloss.Style {
	return AssistantMessageContentStyle.
		Width(width - 10)
}

// GetErrorMessageContentStyle returns a style for failed-turn content with given width
func GetErrorMessageContentStyle(width int) lipgloss.Style {
	return ErrorMessageContentStyle.
		Width(width - 10)
}

// RenderConfirmButton renders a confirmation dialog button
func RenderConfirmButton(label string, isActive bool) string {
	if isActive {
		return ConfirmActiveButtonStyle.Render(" " + label + " ")
	}
	return ConfirmButtonStyle.Render("[ " + label + " ]")
}
