package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shu8h0-null/shopledger/core/explorer"
)

const visibleBlocks = 15

type blocksMdl struct {
	backend Backend
	back    tea.Model
	blocks  []explorer.BlockView
	cursor  int
	loading bool
	err     error
}

func newBlocksMdl(backend Backend, back tea.Model) blocksMdl {
	return blocksMdl{backend: backend, back: back, loading: true}
}

func (b blocksMdl) Init() tea.Cmd {
	return loadBlocks(b.backend)
}

func (b blocksMdl) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case blocksLoadedMsg:
		b.loading = false
		b.err = msg.err
		if msg.err == nil {
			b.blocks = msg.blocks
			// Newest block first.
			b.cursor = len(b.blocks) - 1
			if b.cursor < 0 {
				b.cursor = 0
			}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return b, tea.Quit
		case "esc":
			return b.back, nil
		case "up", "k":
			if b.cursor < len(b.blocks)-1 {
				b.cursor++
			}
		case "down", "j":
			if b.cursor > 0 {
				b.cursor--
			}
		case "r":
			b.loading = true
			return b, loadBlocks(b.backend)
		}

	case tea.WindowSizeMsg:
		winWidth = msg.Width
		winHeight = msg.Height
	}

	return b, nil
}

func (b blocksMdl) View() string {
	var content string
	switch {
	case b.loading:
		content = "Loading blocks..."
	case b.err != nil:
		content = errorStyle.Render(b.err.Error())
	case len(b.blocks) == 0:
		content = "The ledger has no blocks."
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			listStyle.Render(b.listView()),
			detailStyle.Render(blockDetail(b.blocks[b.cursor])),
		)
	}

	content = "~~ Blocks ~~\n\n" + content + "\n\n" +
		helpStyle.Render("↑/↓ select, r reload, Esc back.")
	return Centered(content, winWidth, winHeight)
}

// listView shows a window of blocks around the cursor, newest on top.
func (b blocksMdl) listView() string {
	top := b.cursor + visibleBlocks/2
	if top > len(b.blocks)-1 {
		top = len(b.blocks) - 1
	}
	bottom := top - visibleBlocks + 1
	if bottom < 0 {
		bottom = 0
	}

	var sb strings.Builder
	for i := top; i >= bottom; i-- {
		blk := b.blocks[i]
		line := fmt.Sprintf("#%-4d %2d tx  %s", blk.Index, len(blk.Transactions), prefix(blk.Hash, 8))
		if i == b.cursor {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func blockDetail(blk explorer.BlockView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d\n", labelStyle.Render("Block"), blk.Index)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Sealed"), formatTime(blk.Time))
	fmt.Fprintf(&sb, "%s %d\n", labelStyle.Render("Proof"), blk.Proof)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Hash"), short(blk.Hash))
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Previous"), short(blk.PreviousHash))
	fmt.Fprintf(&sb, "%s %s\n\n", labelStyle.Render("Signature"), short(blk.Signature))

	if len(blk.Transactions) == 0 {
		sb.WriteString(labelStyle.Render("No transactions"))
		return sb.String()
	}
	for _, tx := range blk.Transactions {
		fmt.Fprintf(&sb, "%s  %s  %d\n", inputStyle.Render(tx.Sender), formatTime(tx.Timestamp), tx.Total)
		fmt.Fprintf(&sb, "  %s\n", formatItems(tx.Items))
	}
	return sb.String()
}
