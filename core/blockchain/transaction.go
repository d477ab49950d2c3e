package blockchain

import (
	"math"
	"strconv"
	"strings"
)

type Transaction struct {
	Sender    string  `json:"sender"`
	Items     string  `json:"items"`
	Total     int64   `json:"total"`
	Timestamp float64 `json:"timestamp"`
}

// Entry is a transaction copy annotated with the index of the block that
// sealed it.
type Entry struct {
	Transaction
	BlockIndex int `json:"block_index"`
}

// ParseTotal converts a textual amount in the smallest currency unit. Integral
// decimals such as "15000.0" are accepted, fractions and negatives are not.
func ParseTotal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "total", Reason: "empty amount"}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &ValidationError{Field: "total", Reason: "not a number: " + strconv.Quote(s)}
		}
		if f != math.Trunc(f) {
			return 0, &ValidationError{Field: "total", Reason: "fractional amount " + strconv.Quote(s)}
		}
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, &ValidationError{Field: "total", Reason: "amount out of range"}
		}
		n = int64(f)
	}

	if n < 0 {
		return 0, &ValidationError{Field: "total", Reason: "negative amount"}
	}
	return n, nil
}

func copyTransactions(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}
