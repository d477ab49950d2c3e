package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shu8h0-null/shopledger/core/explorer"
	"github.com/shu8h0-null/shopledger/core/rpc"
)

const (
	inputSender = iota
	inputItems
	inputTotal
	send
)

// checkoutMdl records a purchase by hand, mostly for demos and smoke tests.
type checkoutMdl struct {
	backend    Backend
	back       tea.Model
	txtInputs  []textinput.Model
	focusIndex int
	submitting bool
	sealed     *explorer.BlockView
	err        error
}

func newCheckoutMdl(backend Backend, back tea.Model) checkoutMdl {
	inputs := make([]textinput.Model, 3)

	inputs[inputSender] = textinput.New()
	inputs[inputSender].CharLimit = 64
	inputs[inputSender].Prompt = "-> "
	inputs[inputSender].Placeholder = "Customer name"
	inputs[inputSender].Width = 40
	inputs[inputSender].Validate = senderValidator
	inputs[inputSender].Focus()

	inputs[inputItems] = textinput.New()
	inputs[inputItems].Prompt = "-> "
	inputs[inputItems].Placeholder = "Items, comma separated"
	inputs[inputItems].Width = 60

	inputs[inputTotal] = textinput.New()
	inputs[inputTotal].Width = 30
	inputs[inputTotal].Prompt = "-> "
	inputs[inputTotal].Placeholder = "Total in the smallest currency unit"
	inputs[inputTotal].Validate = totalValidator

	return checkoutMdl{backend: backend, back: back, txtInputs: inputs}
}

func (c checkoutMdl) Init() tea.Cmd {
	return textinput.Blink
}

func (c checkoutMdl) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case checkoutDoneMsg:
		c.submitting = false
		c.err = msg.err
		if msg.err == nil {
			block := msg.block
			c.sealed = &block
		}
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return c, tea.Quit
		case "esc":
			return c.back, nil
		case "down", "tab":
			if c.focusIndex < len(c.txtInputs) { // Allow focus to move to "Send"
				c.focusIndex++
			}
		case "up", "shift+tab":
			if c.focusIndex > 0 {
				c.focusIndex--
			}
		case "enter":
			if c.focusIndex == send && !c.submitting {
				return c.submit()
			}
		}

		for i := 0; i < len(c.txtInputs); i++ {
			if i == c.focusIndex {
				cmds = append(cmds, c.txtInputs[i].Focus())
			} else {
				c.txtInputs[i].Blur()
			}
			c.txtInputs[i], cmd = c.txtInputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		winWidth = msg.Width
		winHeight = msg.Height
	}

	return c, tea.Batch(cmds...)
}

func (c checkoutMdl) submit() (tea.Model, tea.Cmd) {
	sender := c.txtInputs[inputSender].Value()
	total := c.txtInputs[inputTotal].Value()
	if err := senderValidator(sender); err != nil {
		c.err = err
		return c, nil
	}
	if err := totalValidator(total); err != nil {
		c.err = err
		return c, nil
	}

	c.err = nil
	c.sealed = nil
	c.submitting = true
	return c, submitCheckout(c.backend, rpc.CheckoutRequest{
		Sender: strings.TrimSpace(sender),
		Items:  splitItems(c.txtInputs[inputItems].Value()),
		Total:  strings.TrimSpace(total),
	})
}

func (c checkoutMdl) View() string {
	sendButton := " Seal "
	if c.focusIndex == send {
		sendButton = buttonFocusedStyle.Render(sendButton)
	} else {
		sendButton = buttonStyle.Render(sendButton)
	}

	status := ""
	switch {
	case c.err != nil:
		status = errorStyle.Render(c.err.Error())
	case c.submitting:
		status = "Sealing..."
	case c.sealed != nil:
		status = successStyle.Render(fmt.Sprintf("Block #%d sealed (%s)", c.sealed.Index, short(c.sealed.Hash)))
	}

	content := fmt.Sprintf(
		`~~ Record a checkout ~~
%s

%s
%s

%s
%s

%s
%s

%s

%s
`,
		status,
		inputStyle.Render("Customer"),
		c.txtInputs[inputSender].View(),
		inputStyle.Render("Items"),
		c.txtInputs[inputItems].View(),
		inputStyle.Render("Total"),
		c.txtInputs[inputTotal].View(),
		sendButton,
		helpStyle.Render("Tab/↓ next field, Enter on Seal to submit, Esc back."),
	)

	return Centered(content, winWidth, winHeight)
}
