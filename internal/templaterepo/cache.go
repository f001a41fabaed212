package templaterepo

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/template"
)

// Cache keeps resolved templates in memory keyed by (owner, repo, branch).
// Nothing is written to disk; entries live for the lifetime of the process.
type Cache struct {
	logger  *zerolog.Logger
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	template  template.Template
	lastCheck time.Time
}

// NewCache creates a Cache whose entries expire after ttl.
func NewCache(logger *zerolog.Logger, ttl time.Duration) *Cache {
	return &Cache{
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns a copy of the cached template for source if it is still fresh.
func (c *Cache) Load(source RepoSource) (template.Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[source.Key()]
	if !ok {
		c.logger.Debug().Msgf("No resolution cache for %s", source)
		return template.Template{}, false
	}

	if c.now().Sub(entry.lastCheck) > c.ttl {
		c.logger.Debug().Msgf("Resolution cache expired for %s", source)
		delete(c.entries, source.Key())
		return template.Template{}, false
	}

	c.logger.Debug().Msgf("Using cached resolution for %s (%d files)", source, len(entry.template.OtherFiles)+1)
	return entry.template.Clone(), true
}

// Save stores a copy of t for source.
func (c *Cache) Save(source RepoSource, t template.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[source.Key()] = cacheEntry{
		template:  t.Clone(),
		lastCheck: c.now(),
	}
	c.logger.Debug().Msgf("Saved resolution cache for %s", source)
}

// Invalidate drops the entry for source.
func (c *Cache) Invalidate(source RepoSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, source.Key())
	c.logger.Debug().Msgf("Invalidated resolution cache for %s", source)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
