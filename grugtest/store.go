package grugtest

import (
	"bytes"

	"github.com/google/btree"
)

// Store is an ordered in-memory key value store. Keys are compared
// byte-wise.
type Store struct {
	bt *btree.BTree
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{bt: btree.New(2)}
}

type kvItem struct {
	key   []byte
	value []byte
}

var _ btree.Item = kvItem{}

// Less implements btree.Item.
func (a kvItem) Less(b btree.Item) bool {
	return bytes.Compare(a.key, b.(kvItem).key) < 0
}

// Get returns the value stored under key or nil.
func (s *Store) Get(key []byte) []byte {
	res := s.bt.Get(kvItem{key: key})
	if res == nil {
		return nil
	}
	return res.(kvItem).value
}

// Has returns true if a value is stored under key.
func (s *Store) Has(key []byte) bool {
	return s.bt.Has(kvItem{key: key})
}

// Set stores a copy of value under key.
func (s *Store) Set(key, value []byte) {
	s.bt.ReplaceOrInsert(kvItem{key: clone(key), value: clone(value)})
}

// Delete removes the key. Deleting a missing key is a no-op.
func (s *Store) Delete(key []byte) {
	s.bt.Delete(kvItem{key: key})
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.bt.Len()
}

// Iterate calls fn in ascending key order for every key with the given
// prefix that sorts after prefix|startAfter. Iteration stops after limit
// items (zero is no limit) or when fn returns false. The key passed to fn
// has the prefix removed.
func (s *Store) Iterate(prefix, startAfter []byte, limit int, fn func(key, value []byte) bool) {
	start := append(clone(prefix), startAfter...)
	var n int
	s.bt.AscendGreaterOrEqual(kvItem{key: start}, func(i btree.Item) bool {
		item := i.(kvItem)
		if !bytes.HasPrefix(item.key, prefix) {
			return false
		}
		if len(startAfter) > 0 && bytes.Equal(item.key, start) {
			return true
		}
		if limit > 0 && n >= limit {
			return false
		}
		n++
		return fn(item.key[len(prefix):], item.value)
	})
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// cache buffers writes on top of a store until they are written or
// dropped. Reads see the buffered writes.
type cache struct {
	back *Store
	ops  []op
	// Last buffered state of every touched key, nil value means deleted.
	dirty map[string]*[]byte
}

type op struct {
	key    []byte
	value  []byte
	delete bool
}

func newCache(back *Store) *cache {
	return &cache{back: back, dirty: make(map[string]*[]byte)}
}

func (c *cache) Get(key []byte) []byte {
	if v, ok := c.dirty[string(key)]; ok {
		if v == nil {
			return nil
		}
		return *v
	}
	return c.back.Get(key)
}

func (c *cache) Set(key, value []byte) {
	v := clone(value)
	c.dirty[string(key)] = &v
	c.ops = append(c.ops, op{key: clone(key), value: v})
}

func (c *cache) Delete(key []byte) {
	c.dirty[string(key)] = nil
	c.ops = append(c.ops, op{key: clone(key), delete: true})
}

// Write applies all buffered operations in order.
func (c *cache) Write() {
	for _, o := range c.ops {
		if o.delete {
			c.back.Delete(o.key)
		} else {
			c.back.Set(o.key, o.value)
		}
	}
	c.Discard()
}

// Discard drops all buffered operations.
func (c *cache) Discard() {
	c.ops = nil
	c.dirty = make(map[string]*[]byte)
}
