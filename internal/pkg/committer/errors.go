package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

var (
	// ErrNilStore is returned when a Committer has no store to apply to.
	ErrNilStore = errors.New("committer: store is nil")

	// ErrNoRowsAffected is returned for an update or delete that matched no row
	// when the Committer requires affected rows.
	ErrNoRowsAffected = errors.New("committer: no rows affected")
)

// OpError reports the operation that stopped a plan. Operations after Index
// were not attempted.
type OpError struct {
	Index int
	Op    Operation
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("committer: operation %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient store failure worth retrying
// by the caller. The committer itself never retries.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch spanner.ErrCode(err) {
	case codes.Aborted, codes.Unavailable, codes.ResourceExhausted:
		return true
	}
	return false
}
