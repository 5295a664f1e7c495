// Package cache keeps decoded values in memory in front of the local store.
package cache

// Cache is a bounded in-memory key/value cache.
type Cache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key, value interface{})
	Delete(key interface{})
	Purge()
	Len() int
}
