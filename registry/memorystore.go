package registry

import (
	"context"
	"sync"

	"github.com/SocAIty/fastsdk-go/model"
)

// MemoryStore is the no-persistence Store: Registry already keeps
// everything in memory, so this is a second copy that exists purely so
// Registry can be built with the same Store-shaped code path whether or
// not persistence is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*model.ServiceDefinition
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*model.ServiceDefinition)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*model.ServiceDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.data[id]
	if !ok {
		return nil, ErrStoreMiss
	}
	return svc, nil
}

func (s *MemoryStore) Save(ctx context.Context, svc *model.ServiceDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[svc.ID] = svc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*model.ServiceDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.ServiceDefinition, 0, len(s.data))
	for _, svc := range s.data {
		out = append(out, svc)
	}
	return out, nil
}

func (s *MemoryStore) VersionIndex(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for id, svc := range s.data {
		out[id] = svc.Version
	}
	return out, nil
}
