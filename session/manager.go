package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/shreyapandey07/game/motion"
	"github.com/shreyapandey07/game/telemetry"
)

// Info is returned by the API for the session list.
type Info struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Broken bool   `json:"broken"`
}

// Manager holds the live sessions by ID. Each websocket connection gets
// its own session (the game is single-player), created on connect and
// removed on disconnect.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      motion.Config
	pub      telemetry.Publisher
}

func NewManager(cfg motion.Config, pub telemetry.Publisher) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		pub:      pub,
	}
}

// Create starts a fresh session and its actor goroutine.
func (m *Manager) Create(name string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	s := New(id, m.cfg, m.pub)
	if name == "" {
		name = "player"
	}
	s.PlayerName = name
	s.OnEmpty = func(id string) {
		m.remove(id)
	}
	m.sessions[id] = s
	go s.Run()
	return s
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Stop()
		delete(m.sessions, id)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns all live sessions for the API.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for id, s := range m.sessions {
		out = append(out, Info{ID: id, Name: s.PlayerName, Broken: s.Broken()})
	}
	return out
}
