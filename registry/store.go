// Package registry is the indexed catalog of registered services: lookup
// by id or normalized display name, list/filter/group, and an optional
// persistent backing store (spec.md §4.4, SPEC_FULL.md §8).
package registry

import (
	"context"
	"errors"

	"github.com/SocAIty/fastsdk-go/model"
)

// ErrStoreMiss is returned by Store.Load when the id is not present in
// the backing store. It is not itself an application error - the
// Registry translates a miss into CodeNotFound only after also missing
// in memory.
var ErrStoreMiss = errors.New("registry: not found in backing store")

// Store is the persistence contract behind a Registry. The in-memory
// indexes are always authoritative for reads that hit; Store is only
// consulted on an in-memory miss, and only written to from Add/Update/
// Remove (spec.md §4.4).
type Store interface {
	Load(ctx context.Context, id string) (*model.ServiceDefinition, error)
	Save(ctx context.Context, svc *model.ServiceDefinition) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.ServiceDefinition, error)
	// VersionIndex returns id -> Version for every stored service,
	// without deserializing the full record. Registry does not call it.
	VersionIndex(ctx context.Context) (map[string]string, error)
}
