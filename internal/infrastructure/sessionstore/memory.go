package sessionstore

import (
	"context"
	"sync"

	"github.com/jhoicas/supermarket-console/internal/application/session"
)

var _ session.Store = (*MemoryStore)(nil)

// MemoryStore sesión solo en memoria (dura lo que el proceso).
type MemoryStore struct {
	mu    sync.RWMutex
	state session.State
}

// NewMemoryStore crea un store vacío.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (session.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st, nil
}

func (m *MemoryStore) Save(_ context.Context, s session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	m.state = s
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = session.State{}
	return nil
}
