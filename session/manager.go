package session

import (
	"sync"

	"github.com/jsphweid/harmonseq/track"
	"github.com/sirupsen/logrus"
)

type Manager struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	return &Manager{opts: opts, sessions: make(map[string]*Session)}
}

func (m *Manager) Create() *Session {
	return m.add(New(m.opts))
}

// Open hosts song in a new session.
func (m *Manager) Open(song *track.Song) *Session {
	return m.add(NewWithSong(song, m.opts))
}

func (m *Manager) add(s *Session) *Session {
	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()
	logrus.WithFields(logrus.Fields{"session": s.ID, "open": n}).Info("session created")
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
		logrus.WithField("session", id).Info("session closed")
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
