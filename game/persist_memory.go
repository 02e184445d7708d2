package game

import (
	"sync"

	"github.com/pkg/errors"
)

type MemoryGameStateTracker struct {
	mu     sync.Mutex
	tables map[string][]byte
}

func NewMemoryGameStateTracker() *MemoryGameStateTracker {
	return &MemoryGameStateTracker{
		tables: make(map[string][]byte),
	}
}

func (m *MemoryGameStateTracker) Load(table string) (*SavedState, error) {
	m.mu.Lock()
	data, ok := m.tables[table]
	m.mu.Unlock()
	if !ok {
		return nil, errors.Wrapf(ErrStateNotFound, "table %s", table)
	}
	state := &SavedState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.Wrapf(err, "decoding state of table %s", table)
	}
	return state, nil
}

func (m *MemoryGameStateTracker) Save(table string, state *SavedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrapf(err, "encoding state of table %s", table)
	}
	m.mu.Lock()
	m.tables[table] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryGameStateTracker) Remove(table string) error {
	m.mu.Lock()
	delete(m.tables, table)
	m.mu.Unlock()
	return nil
}
