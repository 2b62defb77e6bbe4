package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SocAIty/fastsdk-go/address"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
	"github.com/SocAIty/fastsdk-go/pkg/logger"
)

// Attrs carries the subset of a ServiceDefinition Update may override.
// Zero-value fields are left unchanged; set ServiceAddress to re-resolve
// it through the address Resolver.
type Attrs struct {
	DisplayName    *string
	Description    *string
	ServiceAddress *string
	AddressHint    address.Hint
	Category       []string
	FamilyID       *string
}

// Registry is the indexed catalog of registered services: an id index
// and a normalized-name index, both in memory, with an optional Store
// consulted on an in-memory miss (spec.md §4.4).
type Registry struct {
	mu        sync.RWMutex
	byID      map[string]*model.ServiceDefinition
	nameIndex map[string]string // normalized name -> id
	store     Store
}

// New builds a Registry. A nil store means no persistence: Add/Update/
// Remove only ever touch the in-memory indexes.
func New(store Store) *Registry {
	return &Registry{
		byID:      make(map[string]*model.ServiceDefinition),
		nameIndex: make(map[string]string),
		store:     store,
	}
}

// Add indexes svc by id and by its display name's normalized form,
// persisting to the backing store if one is configured. It fails
// CodeDuplicateId on an id collision; a name collision with a different
// id is tolerated (a warning is logged and the name index is
// overwritten), since human-authored display names repeat.
func (r *Registry) Add(ctx context.Context, svc *model.ServiceDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[svc.ID]; exists {
		return apperror.New(apperror.CodeDuplicateId, "service id already registered").WithField("id")
	}

	normalized := model.NormalizeName(svc.DisplayName)
	if existingID, ok := r.nameIndex[normalized]; ok && existingID != svc.ID {
		logger.Log.Warn("service name collides with an existing entry under a different id",
			slog.String("name", svc.DisplayName), slog.String("new_id", svc.ID), slog.String("existing_id", existingID))
	}

	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = time.Now()
	}

	r.byID[svc.ID] = svc
	r.nameIndex[normalized] = svc.ID

	if r.store != nil {
		if err := r.store.Save(ctx, svc); err != nil {
			delete(r.byID, svc.ID)
			delete(r.nameIndex, normalized)
			return err
		}
	}
	return nil
}

// Get looks up a service by id, then by normalized name. On an
// in-memory miss it queries the backing store (if configured) and
// hydrates the result into memory.
func (r *Registry) Get(ctx context.Context, idOrName string) (*model.ServiceDefinition, error) {
	r.mu.RLock()
	svc, ok := r.byID[idOrName]
	if !ok {
		if id, ok2 := r.nameIndex[model.NormalizeName(idOrName)]; ok2 {
			svc, ok = r.byID[id]
		}
	}
	r.mu.RUnlock()
	if ok {
		return svc, nil
	}

	if r.store == nil {
		return nil, apperror.New(apperror.CodeNotFound, "no service registered with that id or name")
	}

	loaded, err := r.store.Load(ctx, idOrName)
	if err != nil {
		return nil, apperror.New(apperror.CodeNotFound, "no service registered with that id or name")
	}

	r.mu.Lock()
	r.byID[loaded.ID] = loaded
	r.nameIndex[model.NormalizeName(loaded.DisplayName)] = loaded.ID
	r.mu.Unlock()

	return loaded, nil
}

// Update applies attrs to the service identified by idOrName. A
// non-nil ServiceAddress is re-resolved through the address Resolver
// before being stored. A DisplayName change updates both the record and
// the name index atomically.
func (r *Registry) Update(ctx context.Context, idOrName string, attrs Attrs) (*model.ServiceDefinition, error) {
	svc, err := r.Get(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	oldNormalized := model.NormalizeName(svc.DisplayName)

	if attrs.DisplayName != nil {
		delete(r.nameIndex, oldNormalized)
		svc.DisplayName = *attrs.DisplayName
		r.nameIndex[model.NormalizeName(svc.DisplayName)] = svc.ID
	}
	if attrs.Description != nil {
		svc.Description = *attrs.Description
	}
	if attrs.ServiceAddress != nil {
		resolved, err := address.Resolve(*attrs.ServiceAddress, attrs.AddressHint)
		if err != nil {
			return nil, err
		}
		svc.ServiceAddress = resolved
	}
	if attrs.Category != nil {
		svc.Category = attrs.Category
	}
	if attrs.FamilyID != nil {
		svc.FamilyID = *attrs.FamilyID
	}

	if r.store != nil {
		if err := r.store.Save(ctx, svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Remove purges all index entries for id and, if a backing store is
// configured, the persisted record too.
func (r *Registry) Remove(ctx context.Context, idOrName string) error {
	svc, err := r.Get(ctx, idOrName)
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.byID, svc.ID)
	delete(r.nameIndex, model.NormalizeName(svc.DisplayName))
	r.mu.Unlock()

	if r.store != nil {
		return r.store.Delete(ctx, svc.ID)
	}
	return nil
}

// List returns every service currently indexed in memory.
func (r *Registry) List() []*model.ServiceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ServiceDefinition, 0, len(r.byID))
	for _, svc := range r.byID {
		out = append(out, svc)
	}
	return out
}

// Filter returns services for which pred returns true.
func (r *Registry) Filter(pred func(*model.ServiceDefinition) bool) []*model.ServiceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.ServiceDefinition
	for _, svc := range r.byID {
		if pred(svc) {
			out = append(out, svc)
		}
	}
	return out
}

// Group buckets every indexed service by the result of key, e.g.
// func(s *model.ServiceDefinition) string { return s.FamilyID }.
func (r *Registry) Group(key func(*model.ServiceDefinition) string) map[string][]*model.ServiceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make(map[string][]*model.ServiceDefinition)
	for _, svc := range r.byID {
		k := key(svc)
		groups[k] = append(groups[k], svc)
	}
	return groups
}

// LoadAll hydrates every record from the backing store into memory,
// meant to be called once at startup when persistence is configured.
func (r *Registry) LoadAll(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	services, err := r.store.List(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, svc := range services {
		r.byID[svc.ID] = svc
		r.nameIndex[model.NormalizeName(svc.DisplayName)] = svc.ID
	}
	return nil
}
