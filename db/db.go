package db

import (
	"errors"
	"sync"

	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/util"
)

var (
	ErrNotFound     = errors.New("progression not found")
	ErrInvalidName  = errors.New("progression name must not be empty")
	ErrTooManyNames = errors.New("too many progression names in one request")
)

// Store keeps named chord progressions that can be used as transpose
// targets.
type Store interface {
	GetProgression(name string) (model.Progression, error)
	GetProgressions(names []string) (map[string]model.Progression, error)
	PutProgression(p model.Progression) error
}

type MemoryStore struct {
	mu           sync.RWMutex
	progressions map[string]model.Progression
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{progressions: make(map[string]model.Progression)}
}

func (m *MemoryStore) GetProgression(name string) (model.Progression, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progressions[name]
	if !ok {
		return model.Progression{}, ErrNotFound
	}
	return copyProgression(p), nil
}

// GetProgressions leaves unknown names out of the result.
func (m *MemoryStore) GetProgressions(names []string) (map[string]model.Progression, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make(map[string]model.Progression)
	for _, name := range names {
		if p, ok := m.progressions[name]; ok {
			res[name] = copyProgression(p)
		}
	}
	return res, nil
}

func (m *MemoryStore) PutProgression(p model.Progression) error {
	if p.Name == "" {
		return ErrInvalidName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progressions[p.Name] = copyProgression(p)
	return nil
}

func (m *MemoryStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return util.GetSortedKeys(m.progressions)
}

func copyProgression(p model.Progression) model.Progression {
	return model.Progression{Name: p.Name, Chords: append([]string(nil), p.Chords...)}
}
