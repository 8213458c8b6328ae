// README: Durable storage for state dumps. The engine runs from memory; a
// snapshot is written after every mutation and loaded once at boot.
package snapshot

import (
	"context"
	"errors"
)

var ErrNoSnapshot = errors.New("no snapshot stored")

// Store persists opaque state dumps. Load returns the most recent dump or
// ErrNoSnapshot on a fresh backend.
type Store interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}
