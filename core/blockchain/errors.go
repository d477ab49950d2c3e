package blockchain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the primary ledger file does not exist.
var ErrNotFound = errors.New("ledger file not found")

// ErrBackupNotFound reports a backup name that resolves to no file.
var ErrBackupNotFound = errors.New("backup not found")

// CorruptionError reports a structural or signature violation. Index is the
// 1-based position of the offending block, 0 when the file as a whole is
// unusable.
type CorruptionError struct {
	Index  int
	Reason string
}

func (e *CorruptionError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("corrupt ledger: %s", e.Reason)
	}
	return fmt.Sprintf("corrupt ledger at block %d: %s", e.Index, e.Reason)
}

// PersistenceError reports a failed write, rename or remove.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ValidationError rejects caller input without touching ledger state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
