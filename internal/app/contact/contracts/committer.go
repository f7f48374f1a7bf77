package contracts

import (
	"context"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// Committer applies a plan atomically. Usecases depend on this interface
// rather than on a concrete store.
type Committer interface {
	Apply(ctx context.Context, plan *committer.Plan) error
}
