package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/explorer"
	"github.com/shu8h0-null/shopledger/core/rpc"
)

const requestTimeout = 10 * time.Second

var (
	winWidth  int
	winHeight int
)

// Backend is what the explorer screens read from and write to.
type Backend interface {
	Blocks(ctx context.Context) ([]explorer.BlockView, error)
	History(ctx context.Context, sender string) ([]explorer.HistoryRow, error)
	Checkout(ctx context.Context, req rpc.CheckoutRequest) (explorer.BlockView, error)
}

type rpcBackend struct {
	client *rpc.Client
}

// NewRPCBackend adapts a ledger RPC client to Backend.
func NewRPCBackend(c *rpc.Client) Backend {
	return rpcBackend{client: c}
}

func (b rpcBackend) Blocks(ctx context.Context) ([]explorer.BlockView, error) {
	return b.client.Blocks(ctx)
}

func (b rpcBackend) History(ctx context.Context, sender string) ([]explorer.HistoryRow, error) {
	return b.client.History(ctx, sender)
}

func (b rpcBackend) Checkout(ctx context.Context, req rpc.CheckoutRequest) (explorer.BlockView, error) {
	return b.client.Checkout(ctx, req)
}

type blocksLoadedMsg struct {
	blocks []explorer.BlockView
	err    error
}

type historyLoadedMsg struct {
	sender string
	rows   []explorer.HistoryRow
	err    error
}

type checkoutDoneMsg struct {
	block explorer.BlockView
	err   error
}

func loadBlocks(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		blocks, err := b.Blocks(ctx)
		return blocksLoadedMsg{blocks: blocks, err: err}
	}
}

func loadHistory(b Backend, sender string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		rows, err := b.History(ctx, sender)
		return historyLoadedMsg{sender: sender, rows: rows, err: err}
	}
}

func submitCheckout(b Backend, req rpc.CheckoutRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		block, err := b.Checkout(ctx, req)
		return checkoutDoneMsg{block: block, err: err}
	}
}

func Centered(content string, w, h int) string {
	centeredContent := lipgloss.Place(
		w, h,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content),
		lipgloss.WithWhitespaceChars(" "),
	)
	return centeredContent
}

func senderValidator(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("Invalid customer: name cannot be empty!")
	}
	return nil
}

func totalValidator(input string) error {
	if _, err := blockchain.ParseTotal(input); err != nil {
		return errors.New("Invalid total: whole, non-negative amount in the smallest currency unit!")
	}
	return nil
}

// splitItems turns "Laptop, Mouse" into a list; a blank field means no items.
func splitItems(input string) []string {
	items := []string{}
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func formatItems(items []string) string {
	var parts []string
	for _, it := range items {
		if it == blockchain.CorruptedItemMarker {
			parts = append(parts, markerStyle.Render(it))
		} else {
			parts = append(parts, it)
		}
	}
	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return fmt.Sprintf("%s…%s", hash[:8], hash[len(hash)-6:])
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
