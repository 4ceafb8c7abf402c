package convert

import (
	"container/list"

	"github.com/levindixon/WebMD/internal/doctree"
)

// fragmentCache is a call-scoped LRU of rendered fragments keyed by
// structural fingerprint. It satisfies markdown.Memo. No locking: the
// cache lives and dies inside a single conversion, which is sequential.
type fragmentCache struct {
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List // front = most recently used

	hits   int
	misses int
}

type cacheEntry struct {
	key      uint64
	fragment string
}

func newFragmentCache(capacity int) *fragmentCache {
	return &fragmentCache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *fragmentCache) Lookup(n *doctree.Node) (string, bool) {
	el, ok := c.entries[fingerprint(n)]
	if !ok {
		c.misses++
		return "", false
	}
	c.order.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry).fragment, true
}

func (c *fragmentCache) Store(n *doctree.Node, fragment string) {
	key := fingerprint(n)
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).fragment = fragment
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, fragment: fragment})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
