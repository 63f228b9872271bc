package zonemap

import (
	"container/list"
	"sync"
	"time"
)

// Process-local LRU on quantized coordinates. Hot spots (people checking one
// address repeatedly) skip the polygon walk; TTL keeps results honest across
// snapshot reloads even without explicit invalidation.
type lru struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type lruItem struct {
	k     string
	sigla string
	found bool
	exp   time.Time
}

func newLRU(capacity int, ttlSec int) *lru {
	return &lru{cap: capacity, ttl: time.Duration(ttlSec) * time.Second, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *lru) get(k string) (string, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(lruItem)
		if time.Now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.sigla, it.found, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return "", false, false
}

func (c *lru) set(k, sigla string, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		e.Value = lruItem{k: k, sigla: sigla, found: found, exp: time.Now().Add(c.ttl)}
		c.lst.MoveToFront(e)
		return
	}
	e := c.lst.PushFront(lruItem{k: k, sigla: sigla, found: found, exp: time.Now().Add(c.ttl)})
	c.dict[k] = e
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back != nil {
			it := back.Value.(lruItem)
			delete(c.dict, it.k)
			c.lst.Remove(back)
		}
	}
}
