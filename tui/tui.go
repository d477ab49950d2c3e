package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	optionBlocks = iota
	optionHistory
	optionCheckout
)

// Main model
type model struct {
	backend       Backend
	selectedIndex int
	options       []string
}

func newModel(backend Backend) model {
	return model{
		backend: backend,
		options: []string{"Browse blocks", "Customer history", "Record a checkout"},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			return m, tea.Quit
		case "down", "j":
			if m.selectedIndex < len(m.options)-1 {
				m.selectedIndex++
			}
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
		case "enter":
			var next tea.Model
			switch m.selectedIndex {
			case optionBlocks:
				next = newBlocksMdl(m.backend, m)
			case optionHistory:
				next = newHistoryMdl(m.backend, m)
			case optionCheckout:
				next = newCheckoutMdl(m.backend, m)
			}
			return next, next.Init()
		}

	case tea.WindowSizeMsg:
		winWidth = msg.Width
		winHeight = msg.Height
	}

	return m, nil
}

func (m model) View() string {
	content := "~~ shopledger explorer ~~\n\n"
	for i, option := range m.options {
		if i == m.selectedIndex {
			content += "=> " + selectedStyle.Render(option) + "\n\n"
		} else {
			content += "=> " + unSelectedStyle.Render(option) + "\n\n"
		}
	}
	content += helpStyle.Render("\nEnter to open, Esc to quit.")

	return Centered(content, winWidth, winHeight)
}

// Run starts the explorer and blocks until the user quits or ctx ends.
func Run(ctx context.Context, backend Backend) error {
	p := tea.NewProgram(newModel(backend), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
