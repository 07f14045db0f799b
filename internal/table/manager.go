package table

import (
	"sync"

	"github.com/google/uuid"
)

// Manager manages multiple tables.
type Manager struct {
	mu     sync.Mutex
	tables map[string]*Table
}

func NewManager() *Manager {
	return &Manager{tables: make(map[string]*Table)}
}

// Create creates a new table and returns its ID.
func (m *Manager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.tables[id] = New(id)
	return id
}

// Get returns a table by ID, or nil.
func (m *Manager) Get(id string) *Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id]
}

// Remove forgets a table.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
}
