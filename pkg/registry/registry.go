package registry

import (
	"log/slog"
	"sync"
	"time"
)

// Registry holds the current catalog snapshot.
//
// Registry is thread-safe. Snapshot returns a deep copy, so a sweep run that
// captured a snapshot at its start is never affected by a concurrent Replace.
type Registry struct {
	mu       sync.RWMutex
	catalog  *Catalog
	loadedAt time.Time
	logger   *slog.Logger
}

// NewRegistry creates a registry holding the given catalog.
func NewRegistry(catalog *Catalog) *Registry {
	return &Registry{
		catalog:  catalog,
		loadedAt: time.Now(),
		logger:   slog.Default().With("component", "registry"),
	}
}

// Snapshot returns a deep copy of the current catalog.
func (r *Registry) Snapshot() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return copyCatalog(r.catalog)
}

// Replace swaps in a new catalog. In-flight snapshots are unaffected.
func (r *Registry) Replace(catalog *Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = catalog
	r.loadedAt = time.Now()

	r.logger.Info("catalog replaced",
		"providers", len(catalog.Providers),
		"agents", catalog.AgentCount(),
	)
}

// LoadedAt returns when the current catalog was installed.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadedAt
}

func copyCatalog(catalog *Catalog) *Catalog {
	out := &Catalog{Providers: make([]Provider, len(catalog.Providers))}
	for i, provider := range catalog.Providers {
		p := Provider{Name: provider.Name, Agents: make([]Agent, len(provider.Agents))}
		for j, agent := range provider.Agents {
			a := Agent{
				Type:      agent.Type,
				Caching:   agent.Caching,
				DataTypes: append([]DataTypeSpec(nil), agent.DataTypes...),
			}
			p.Agents[j] = a
		}
		out.Providers[i] = p
	}
	return out
}
