package peer

import (
	"container/list"
	"sync"
	"time"

	"github.com/zunkfs/zunkdb-go/pkg/constants"
)

// AcquireResult classifies the outcome of Cache.Acquire.
type AcquireResult int

const (
	// Hit means an idle node for the address was found and is now
	// removed from the idle list, owned by the caller.
	Hit AcquireResult = iota
	// Dead means the address is currently in the dead set; the caller
	// must not attempt to connect.
	Dead
	// Miss means neither the idle list nor the dead set has an entry;
	// the caller must create a new Node and dial it.
	Miss
)

// Cache is the process-wide node cache described in spec §3/§4.2: a
// bounded LRU of idle connected peers (MRU at head, evicted from the
// tail) plus a short-TTL deny-list of peers that recently failed to
// connect. One Cache instance is shared by every concurrent request
// issued through the same Backend.
type Cache struct {
	mu sync.Mutex

	idle      *list.List // of *Node, front = MRU
	idleCount int

	dead map[Address]time.Time // expiry stamp
}

// NewCache creates an empty node cache.
func NewCache() *Cache {
	return &Cache{
		idle: list.New(),
		dead: make(map[Address]time.Time),
	}
}

// Acquire looks up addr in the idle list, then the dead set, per §4.2.
// A Hit node is unlinked from the idle list and returned ready for reuse;
// the caller becomes responsible for calling Release or Destroy on it.
//
// An idle node's readLoop keeps running with no sink attached, so a peer
// that closes the connection (or errors out) while the node sits idle dies
// silently: readLoop stores StateDoomed and returns, but nothing walks the
// idle list to notice. Acquire is where that staleness is finally observed:
// a matching entry that is no longer Live is evicted and treated as a Miss
// so the caller dials fresh instead of sending into a dead socket.
func (c *Cache) Acquire(addr Address) (*Node, AcquireResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.idle.Front(); e != nil; e = e.Next() {
		n := e.Value.(*Node)
		if n.Addr != addr {
			continue
		}
		c.idle.Remove(e)
		c.idleCount--
		n.idleElem = nil
		if n.State() != StateLive {
			n.Close()
			break
		}
		return n, Hit
	}

	c.sweepDeadLocked()
	if expiry, found := c.dead[addr]; found && time.Now().Before(expiry) {
		return nil, Dead
	}
	return nil, Miss
}

// Release returns a node to the cache when a request is done with it, per
// §4.2: a node whose connect never completed is dead-listed (it is
// unreachable short-term); otherwise it is detached and pushed to the
// idle list's MRU end, evicting the LRU entry if the cache is now over
// CacheMax.
func (c *Cache) Release(n *Node) {
	n.Detach()

	if n.State() != StateLive {
		n.Close()
		c.mu.Lock()
		c.dead[n.Addr] = time.Now().Add(constants.DeadSetTTL)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n.idleElem = c.idle.PushFront(n)
	c.idleCount++
	if c.idleCount > constants.CacheMax {
		c.evictLRULocked()
	}
}

// Destroy fully removes a node from the cache (if present) and closes its
// socket. Used when a node errors out while attached to a request; the
// cache itself never holds a reference to an attached node, so this is
// mainly a convenience wrapper callers use for a uniform teardown path.
func (c *Cache) Destroy(n *Node) {
	c.mu.Lock()
	if n.idleElem != nil {
		c.idle.Remove(n.idleElem)
		c.idleCount--
		n.idleElem = nil
	}
	c.mu.Unlock()
	n.Detach()
	n.Close()
}

// evictLRULocked removes the least-recently-used idle node (the tail of
// the list) and destroys it. Must be called with c.mu held. Fixes the
// off-by-one eviction-direction bug noted in the original source (spec
// §9's open question): the tail under head-insertion is the oldest entry.
func (c *Cache) evictLRULocked() {
	e := c.idle.Back()
	if e == nil {
		return
	}
	n := e.Value.(*Node)
	c.idle.Remove(e)
	c.idleCount--
	n.idleElem = nil
	n.Close()
}

// sweepDeadLocked drops expired dead-set entries. Must be called with
// c.mu held.
func (c *Cache) sweepDeadLocked() {
	now := time.Now()
	for addr, expiry := range c.dead {
		if now.After(expiry) {
			delete(c.dead, addr)
		}
	}
}

// MarkDead preloads the dead set with addr, expiring at expiry. Exposed
// for tests that script scenario 5 of spec §8 (a pre-dead-listed peer).
func (c *Cache) MarkDead(addr Address, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead[addr] = expiry
}

// IdleCount returns the current size of the idle list, used by tests that
// assert the CacheMax boundary.
func (c *Cache) IdleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idleCount
}
