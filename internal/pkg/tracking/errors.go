package tracking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexOutOfRange indicates a mutation addressed a position outside the live sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrConfiguration indicates an unusable column or key mapping. It is a programmer
	// error and must not be retried.
	ErrConfiguration = errors.New("invalid sync configuration")

	// ErrTransactionFailed indicates the persistence port rejected the flush.
	// Nothing was accepted; the same plan can be retried.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrDuplicateItem indicates an attempt to place a record that is already live
	// in the same collection.
	ErrDuplicateItem = errors.New("record already in collection")

	// ErrFlushInProgress indicates Flush was called while another flush on the
	// same Flusher had not finished.
	ErrFlushInProgress = errors.New("flush already in progress")
)

// ConfigurationError reports which column names could not be resolved.
type ConfigurationError struct {
	Table   string
	Columns []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if e.Table != "" {
		fmt.Fprintf(&b, " for table %q", e.Table)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Columns, ", "))
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// TransactionError wraps the persistence failure that aborted a flush.
// errors.Is matches both ErrTransactionFailed and the underlying cause.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransactionFailed, e.Err)
}

func (e *TransactionError) Unwrap() []error {
	return []error{ErrTransactionFailed, e.Err}
}

func indexError(op string, index, length int) error {
	return fmt.Errorf("%s at %d (len %d): %w", op, index, length, ErrIndexOutOfRange)
}
