package ragapi

import (
	"sync"
	"time"
)

type assistantCache struct {
	mu       sync.RWMutex
	records  []AssistantRecord
	cachedAt time.Time
	ttl      time.Duration
}

func newAssistantCache(ttl time.Duration) *assistantCache {
	return &assistantCache{ttl: ttl}
}

func (c *assistantCache) Get() []AssistantRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.records == nil || time.Since(c.cachedAt) > c.ttl {
		return nil
	}
	return c.records
}

func (c *assistantCache) Set(records []AssistantRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.cachedAt = time.Now()
}
