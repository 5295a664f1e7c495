package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// NewARC creates an adaptive replacement cache holding up to size entries.
func NewARC(size int) (*ARC, error) {
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create arc cache: %w", err)
	}

	return &ARC{cache: c}, nil
}

var _ Cache = (*ARC)(nil)

// ARC wraps the hashicorp ARC cache.
type ARC struct {
	cache *lru.ARCCache
}

func (c *ARC) Get(key interface{}) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *ARC) Add(key, value interface{}) {
	c.cache.Add(key, value)
}

func (c *ARC) Delete(key interface{}) {
	c.cache.Remove(key)
}

func (c *ARC) Purge() {
	c.cache.Purge()
}

func (c *ARC) Len() int {
	return c.cache.Len()
}
