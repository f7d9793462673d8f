// Package store persists sessions between turns. Hosts load a session
// by ID, dispatch one command, and save the result back, so state
// survives the process and a session can outlive its host.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/garyblankenship/cursorrules-game/types"
)

// Store is the session persistence contract.
type Store interface {
	// Health and lifecycle.
	Ping(ctx context.Context) error
	Close() error

	// Session operations. Save stamps the session's UpdatedAt.
	// Load returns (nil, nil) when the ID is unknown.
	Save(ctx context.Context, s *types.Session) error
	Load(ctx context.Context, id uuid.UUID) (*types.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
