package cache

import (
	"errors"
	"sync"
)

// Cache is a weight-bounded LRU cache. Each item carries a weight, and the
// cache evicts least recently used items whenever the total weight exceeds
// the budget.
type Cache interface {
	GetWeight() int
	GetBudget() int
	Insert(key string, value interface{}, weight int) error
	Retrieve(key string) (interface{}, bool)
	Clear()
}

// cacheNode is a node in the doubly-linked recency list.
type cacheNode struct {
	next   *cacheNode
	prev   *cacheNode
	key    string
	value  interface{}
	weight int
}

type cache struct {
	head   *cacheNode
	tail   *cacheNode
	lookup map[string]*cacheNode
	weight int
	budget int
	mutex  sync.Mutex
}

// NewCache initializes and returns a new cache with a given weight budget.
func NewCache(budget int) Cache {
	return &cache{
		lookup: make(map[string]*cacheNode),
		budget: budget,
	}
}

// GetWeight returns the current total weight of items in the cache.
func (c *cache) GetWeight() int {
	return c.weight
}

// GetBudget returns the weight budget of the cache.
func (c *cache) GetBudget() int {
	return c.budget
}

// Insert adds a new item to the cache. If the key already exists, it returns
// an error. Least recently used items are evicted as needed to keep the total
// weight within the budget.
func (c *cache) Insert(key string, value interface{}, weight int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, found := c.lookup[key]; found {
		return errors.New("key already exists in cache")
	}

	node := &cacheNode{
		key:    key,
		value:  value,
		weight: weight,
		next:   c.head,
	}

	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}

	c.lookup[key] = node
	c.weight += weight

	for c.weight > c.budget && c.tail != nil {
		evictNode := c.tail
		if c.tail.prev != nil {
			c.tail.prev.next = nil
		} else {
			c.head = nil // The cache will be empty after this node is evicted
		}
		c.tail = c.tail.prev
		c.weight -= evictNode.weight
		delete(c.lookup, evictNode.key)
	}

	return nil
}

// Retrieve fetches an item from the cache by its key, if it exists, and marks
// it as the most recently used item.
func (c *cache) Retrieve(key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, found := c.lookup[key]
	if !found {
		return nil, false
	}

	if node != c.head {
		if node.next != nil {
			node.next.prev = node.prev
		}
		if node.prev != nil {
			node.prev.next = node.next
		}
		if node == c.tail {
			c.tail = node.prev
		}

		node.next = c.head
		node.prev = nil
		if c.head != nil {
			c.head.prev = node
		}
		c.head = node
	}

	return node.value, true
}

// Clear removes all items from the cache, resetting it to an empty state.
func (c *cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[string]*cacheNode)
	c.weight = 0
}
