package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shu8h0-null/shopledger/core/explorer"
)

// historyMdl filters the ledger by customer name.
type historyMdl struct {
	backend Backend
	back    tea.Model
	filter  textinput.Model
	sender  string
	rows    []explorer.HistoryRow
	loading bool
	err     error
}

func newHistoryMdl(backend Backend, back tea.Model) historyMdl {
	filter := textinput.New()
	filter.Prompt = "-> "
	filter.Placeholder = "Customer name"
	filter.CharLimit = 64
	filter.Width = 40
	filter.Validate = senderValidator
	filter.Focus()

	return historyMdl{backend: backend, back: back, filter: filter}
}

func (h historyMdl) Init() tea.Cmd {
	return textinput.Blink
}

func (h historyMdl) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		// Ignore answers to an older query.
		if msg.sender != h.sender {
			return h, nil
		}
		h.loading = false
		h.err = msg.err
		h.rows = msg.rows
		return h, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return h, tea.Quit
		case "esc":
			return h.back, nil
		case "enter":
			sender := strings.TrimSpace(h.filter.Value())
			if err := senderValidator(sender); err != nil {
				h.err = err
				return h, nil
			}
			h.sender = sender
			h.loading = true
			h.err = nil
			return h, loadHistory(h.backend, sender)
		}

	case tea.WindowSizeMsg:
		winWidth = msg.Width
		winHeight = msg.Height
	}

	h.filter, cmd = h.filter.Update(msg)
	return h, cmd
}

func (h historyMdl) View() string {
	var sb strings.Builder
	sb.WriteString("~~ Customer history ~~\n\n")
	sb.WriteString(inputStyle.Render("Customer") + "\n")
	sb.WriteString(h.filter.View() + "\n\n")

	switch {
	case h.err != nil:
		sb.WriteString(errorStyle.Render(h.err.Error()))
	case h.loading:
		sb.WriteString("Loading...")
	case h.sender == "":
	case len(h.rows) == 0:
		sb.WriteString(fmt.Sprintf("No purchases by %s.", h.sender))
	default:
		var total int64
		for _, row := range h.rows {
			total += row.Total
			fmt.Fprintf(&sb, "%s  %s  %d\n  %s\n",
				labelStyle.Render(fmt.Sprintf("#%d", row.BlockIndex)),
				formatTime(row.Timestamp), row.Total, formatItems(row.Items))
		}
		fmt.Fprintf(&sb, "\n%d purchase(s), %d total", len(h.rows), total)
	}

	sb.WriteString("\n\n" + helpStyle.Render("Enter to search, Esc back."))
	return Centered(sb.String(), winWidth, winHeight)
}
