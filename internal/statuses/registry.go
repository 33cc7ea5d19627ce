package statuses

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the execution statuses and priorities the API accepts.
// Loaded once from the embedded YAML catalog; read-only afterwards.
type Registry struct {
	catalog *Catalog
	mu      sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded catalog
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	data, err := configFiles.ReadFile("config/statuses.yaml")
	if err != nil {
		return nil, fmt.Errorf("read statuses catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshal statuses catalog: %w", err)
	}

	if len(catalog.Statuses) == 0 {
		return nil, fmt.Errorf("statuses catalog is empty")
	}

	r.mu.Lock()
	r.catalog = &catalog
	r.mu.Unlock()

	return r, nil
}

// Catalog returns the full catalog (statuses, priorities, defaults)
func (r *Registry) Catalog() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

// ValidStatus reports whether id is a known execution status
func (r *Registry) ValidStatus(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.catalog.Statuses {
		if s.ID == id {
			return true
		}
	}
	return false
}

// ValidPriority reports whether id is a known priority
func (r *Registry) ValidPriority(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.catalog.Priorities {
		if p.ID == id {
			return true
		}
	}
	return false
}

// DefaultStatus returns the status assigned to fresh run entries
func (r *Registry) DefaultStatus() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Default.Status
}

// DefaultPriority returns the priority assigned when a case omits one
func (r *Registry) DefaultPriority() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Default.Priority
}
