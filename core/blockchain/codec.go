package blockchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// canonicalBytes serializes b as a JSON object with lexicographically sorted
// keys at every level. The signature field is included only when withSig is
// set. encoding/json orders map keys, so building maps is enough.
func canonicalBytes(b Block, withSig bool) []byte {
	txs := make([]map[string]any, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = map[string]any{
			"sender":    tx.Sender,
			"items":     tx.Items,
			"total":     tx.Total,
			"timestamp": tx.Timestamp,
		}
	}

	fields := map[string]any{
		"index":         b.Index,
		"timestamp":     b.Timestamp,
		"transactions":  txs,
		"proof":         b.Proof,
		"previous_hash": b.PreviousHash,
	}
	if withSig {
		fields["signature"] = b.Signature
	}

	// Only strings, integers and finite floats go in, none of which can fail.
	data, _ := json.Marshal(fields)
	return data
}

// MarshalChain encodes blocks in the on-disk format: an indented JSON array.
func MarshalChain(blocks []Block) ([]byte, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode chain: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseChain decodes data as a non-empty JSON array of blocks. It checks shape
// only; ValidateChain checks linkage and signatures.
func ParseChain(data []byte) ([]Block, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &CorruptionError{Reason: "empty file"}
	}
	if trimmed[0] != '[' {
		return nil, &CorruptionError{Reason: "not a JSON array of blocks"}
	}

	var blocks []Block
	if err := json.Unmarshal(trimmed, &blocks); err != nil {
		return nil, &CorruptionError{Reason: fmt.Sprintf("unparsable chain: %v", err)}
	}
	if len(blocks) == 0 {
		return nil, &CorruptionError{Reason: "chain has no blocks"}
	}
	return blocks, nil
}

// looseBlock and looseTransaction accept the field shapes the original shop
// app wrote: items as a raw list or object, totals and timestamps as strings.
type looseBlock struct {
	Index        int                `json:"index"`
	Timestamp    json.RawMessage    `json:"timestamp"`
	Transactions []looseTransaction `json:"transactions"`
	Proof        int64              `json:"proof"`
	PreviousHash string             `json:"previous_hash"`
	Signature    string             `json:"signature"`
}

type looseTransaction struct {
	Sender    string          `json:"sender"`
	Items     json.RawMessage `json:"items"`
	Total     json.RawMessage `json:"total"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// ParseLenientChain decodes data like ParseChain but also accepts chains in
// the original app's format. Non-string items are stored as their JSON
// encoding and then sanitized, textual or integral float totals go through
// ParseTotal. Repair and backup recovery read through here; load, import and
// restore stay on ParseChain.
func ParseLenientChain(data []byte) ([]Block, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &CorruptionError{Reason: "empty file"}
	}
	if trimmed[0] != '[' {
		return nil, &CorruptionError{Reason: "not a JSON array of blocks"}
	}

	var loose []looseBlock
	if err := json.Unmarshal(trimmed, &loose); err != nil {
		return nil, &CorruptionError{Reason: fmt.Sprintf("unparsable chain: %v", err)}
	}
	if len(loose) == 0 {
		return nil, &CorruptionError{Reason: "chain has no blocks"}
	}

	blocks := make([]Block, len(loose))
	for i, lb := range loose {
		pos := i + 1
		ts, err := looseSeconds(lb.Timestamp)
		if err != nil {
			return nil, &CorruptionError{Index: pos, Reason: fmt.Sprintf("bad block timestamp: %v", err)}
		}

		txs := make([]Transaction, len(lb.Transactions))
		for j, lt := range lb.Transactions {
			tx, err := lt.normalize()
			if err != nil {
				return nil, &CorruptionError{Index: pos, Reason: fmt.Sprintf("transaction %d: %v", j+1, err)}
			}
			txs[j] = tx
		}

		blocks[i] = Block{
			Index:        lb.Index,
			Timestamp:    ts,
			Transactions: txs,
			Proof:        lb.Proof,
			PreviousHash: lb.PreviousHash,
			Signature:    lb.Signature,
		}
	}
	return blocks, nil
}

func (lt looseTransaction) normalize() (Transaction, error) {
	tx := Transaction{Sender: lt.Sender}

	if raw := bytes.TrimSpace(lt.Items); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			tx.Items = text
		} else {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return Transaction{}, fmt.Errorf("bad items: %w", err)
			}
			tx.Items = encodeItems(v)
		}
	}
	tx.Items = SanitizeItems(tx.Items)

	if raw := bytes.TrimSpace(lt.Total); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		text := string(raw)
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &text); err != nil {
				return Transaction{}, fmt.Errorf("bad total: %w", err)
			}
		}
		total, err := ParseTotal(text)
		if err != nil {
			return Transaction{}, err
		}
		tx.Total = total
	}

	ts, err := looseSeconds(lt.Timestamp)
	if err != nil {
		return Transaction{}, fmt.Errorf("bad timestamp: %w", err)
	}
	tx.Timestamp = ts
	return tx, nil
}

// looseSeconds reads a Unix timestamp written as a number or a numeric
// string. Missing values are zero.
func looseSeconds(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(text, 64)
	}
	var f float64
	err := json.Unmarshal(raw, &f)
	return f, err
}

// ValidateChain checks that blocks form the chain a Ledger would have
// produced under signer: contiguous 1-based indices, genesis sentinel,
// previous_hash links and a valid signature on every block.
func ValidateChain(blocks []Block, signer *Signer) error {
	if len(blocks) == 0 {
		return &CorruptionError{Reason: "chain has no blocks"}
	}

	for i, b := range blocks {
		pos := i + 1
		if b.Index != pos {
			return &CorruptionError{Index: pos, Reason: fmt.Sprintf("index mismatch: expected %d, got %d", pos, b.Index)}
		}

		if i == 0 {
			if b.PreviousHash != GenesisPreviousHash {
				return &CorruptionError{Index: pos, Reason: "genesis previous_hash is not the sentinel"}
			}
		} else if want := blocks[i-1].Hash(); b.PreviousHash != want {
			return &CorruptionError{Index: pos, Reason: fmt.Sprintf("previous_hash mismatch: expected %s, got %s", want, b.PreviousHash)}
		}

		if !signer.Verify(b) {
			return &CorruptionError{Index: pos, Reason: "signature verification failed"}
		}
	}
	return nil
}
