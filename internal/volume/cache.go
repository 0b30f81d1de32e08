package volume

import (
	"sync"

	"github.com/piatra-institute/morviq/pkg/core"
)

// FieldCache memoizes the most recently loaded VolumeField per dataset/
// timestep/bioParams key so Load isn't re-run every frame when the control
// state hasn't changed. Keyed lookups are read-heavy and cheap; Set
// replaces whatever was cached for that key.
type FieldCache struct {
	mu     sync.RWMutex
	fields map[string]*core.VolumeField
}

// NewFieldCache creates an empty FieldCache.
func NewFieldCache() *FieldCache {
	return &FieldCache{fields: make(map[string]*core.VolumeField)}
}

// Get retrieves the field cached under key.
func (c *FieldCache) Get(key string) (*core.VolumeField, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.fields[key]
	return v, ok
}

// Set stores field under key.
func (c *FieldCache) Set(key string, field *core.VolumeField) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[key] = field
}

// Reset clears every cached field.
func (c *FieldCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = make(map[string]*core.VolumeField)
}

// Len reports how many keys are currently cached.
func (c *FieldCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}
