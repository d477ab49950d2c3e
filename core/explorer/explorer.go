// Package explorer projects the ledger into the read-only views the
// storefront and operator tools display: per-customer history, the
// transaction report and block details.
package explorer

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/mr-tron/base58/base58"
	blkchn "github.com/shu8h0-null/shopledger/core/blockchain"
)

// Source is the read side of a ledger. *blockchain.Ledger satisfies it.
type Source interface {
	AllTransactions() iter.Seq[blkchn.Entry]
	TransactionsFor(sender string) iter.Seq[blkchn.Entry]
	Blocks() []blkchn.Block
}

type HistoryRow struct {
	BlockIndex int       `json:"block_index"`
	Timestamp  time.Time `json:"timestamp"`
	Items      []string  `json:"items"`
	Total      int64     `json:"total"`
}

type Row struct {
	HistoryRow
	Sender string `json:"sender"`
}

type Report struct {
	Rows    []Row `json:"rows"`
	Count   int   `json:"count"`
	Revenue int64 `json:"revenue"`
}

type TxView struct {
	Sender    string    `json:"sender"`
	Items     []string  `json:"items"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

type BlockView struct {
	Index        int       `json:"index"`
	Time         time.Time `json:"time"`
	Proof        int64     `json:"proof"`
	PreviousHash string    `json:"previous_hash"`
	Signature    string    `json:"signature"`
	Hash         string    `json:"hash"`
	Transactions []TxView  `json:"transactions"`
}

type Explorer struct {
	source Source
}

func New(source Source) *Explorer {
	return &Explorer{source: source}
}

// History returns every sealed purchase by sender in chain order.
func (e *Explorer) History(sender string) []HistoryRow {
	rows := []HistoryRow{}
	for entry := range e.source.TransactionsFor(sender) {
		rows = append(rows, historyRow(entry))
	}
	return rows
}

// Transactions returns every sealed transaction with count and revenue.
func (e *Explorer) Transactions() Report {
	report := Report{Rows: []Row{}}
	for entry := range e.source.AllTransactions() {
		report.Rows = append(report.Rows, Row{HistoryRow: historyRow(entry), Sender: entry.Sender})
		report.Count++
		report.Revenue += entry.Total
	}
	return report
}

func (e *Explorer) Blocks() []BlockView {
	blocks := e.source.Blocks()
	views := make([]BlockView, len(blocks))
	for i, b := range blocks {
		views[i] = View(b)
	}
	return views
}

func (e *Explorer) Latest() BlockView {
	blocks := e.source.Blocks()
	if len(blocks) == 0 {
		return BlockView{}
	}
	return View(blocks[len(blocks)-1])
}

// Anchor condenses the tip into a short base58 string. Two chains with the
// same anchor share the same tip block, so operators can note it and notice
// a wholesale replacement later.
func (e *Explorer) Anchor() string {
	blocks := e.source.Blocks()
	if len(blocks) == 0 {
		return ""
	}
	tip := blocks[len(blocks)-1]
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", tip.Hash(), tip.Index)))
	return base58.Encode(sum[:])
}

// DecodeItems splits a stored item summary into display lines. A JSON string
// is unquoted and decoded again, JSON arrays yield their elements, JSON
// objects yield sorted "key: value" lines and anything else is split on
// commas.
func DecodeItems(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	if s == blkchn.CorruptedItemMarker {
		return []string{s}
	}

	var text string
	if err := json.Unmarshal([]byte(s), &text); err == nil {
		return DecodeItems(text)
	}

	var list []any
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, display(v))
		}
		return out
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, k+": "+display(fields[k]))
		}
		return out
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func display(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func historyRow(entry blkchn.Entry) HistoryRow {
	return HistoryRow{
		BlockIndex: entry.BlockIndex,
		Timestamp:  toTime(entry.Timestamp),
		Items:      DecodeItems(entry.Items),
		Total:      entry.Total,
	}
}

// View projects a single block.
func View(b blkchn.Block) BlockView {
	txs := make([]TxView, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = TxView{
			Sender:    tx.Sender,
			Items:     DecodeItems(tx.Items),
			Total:     tx.Total,
			Timestamp: toTime(tx.Timestamp),
		}
	}
	return BlockView{
		Index:        b.Index,
		Time:         toTime(b.Timestamp),
		Proof:        b.Proof,
		PreviousHash: b.PreviousHash,
		Signature:    b.Signature,
		Hash:         b.Hash(),
		Transactions: txs,
	}
}

func toTime(seconds float64) time.Time {
	return time.UnixMicro(int64(seconds * 1e6)).UTC()
}
