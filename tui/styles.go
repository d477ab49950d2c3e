package tui

import "github.com/charmbracelet/lipgloss"

const (
	cyan     = lipgloss.Color("#79c3ee")
	black    = lipgloss.Color("#101419")
	green    = lipgloss.Color("#78dba9")
	hotPink  = lipgloss.Color("#FF06B7")
	darkGray = lipgloss.Color("#767676")
	red      = lipgloss.Color("#e05f65")
	yellow   = lipgloss.Color("#f1cf8a")
)

var (
	selectedStyle = lipgloss.NewStyle().
			Background(cyan).
			Foreground(black)

	unSelectedStyle = lipgloss.NewStyle().UnsetBackground().UnsetForeground()
	inputStyle      = lipgloss.NewStyle().Foreground(cyan)
	labelStyle      = lipgloss.NewStyle().Foreground(darkGray)
	markerStyle     = lipgloss.NewStyle().Foreground(yellow).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(hotPink).
			Padding(1, 2, 1, 3).
			Align(lipgloss.Left).
			Width(100)

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(darkGray).
			PaddingRight(2).
			Width(28)

	detailStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Width(62)

	buttonStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(green)).Bold(true)
	buttonFocusedStyle = lipgloss.NewStyle().UnsetBold().Background(lipgloss.Color(green)).Foreground(lipgloss.Color(black)).Bold(true)
	successStyle       = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(red).Bold(true)
	helpStyle          = lipgloss.NewStyle().Foreground(darkGray)
)
