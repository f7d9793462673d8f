package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyblankenship/cursorrules-game/engine/save"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// MemoryStore implements Store in process memory. It is the fallback
// when no Redis address is configured, and doubles as the test double.
// Sessions are kept serialized so Save and Load have the same snapshot
// semantics as the Redis store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]byte
	game     string
	version  string
	pingErr  error
}

// Ensure MemoryStore implements the Store interface.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(defs *state.Defs) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID][]byte),
		game:     defs.Game.Title,
		version:  defs.Game.Version,
	}
}

// SetPingError makes Ping fail with err until reset to nil.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, s *types.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(save.SaveData{
		Version: m.version,
		Game:    m.game,
		Session: s,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	sd, err := save.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sd.Session, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
