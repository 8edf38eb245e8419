package store

import (
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// radixStore keeps entries in an immutable radix tree. Writers serialize on
// mu and publish a new root; readers grab the current root and work on that
// snapshot, which later writes never modify.
type radixStore struct {
	mu      sync.RWMutex
	tree    *iradix.Tree
	maxKeys int
}

// NewRadixStore creates an empty store backed by an immutable radix tree
func NewRadixStore(maxKeys int) Store {
	return &radixStore{
		tree:    iradix.New(),
		maxKeys: maxKeys,
	}
}

func (r *radixStore) snapshot() *iradix.Tree {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

func (r *radixStore) Close() error {
	return nil
}

func (r *radixStore) Get(key []byte) ([]byte, bool) {
	raw, found := r.snapshot().Get(key)
	if !found {
		return nil, false
	}
	return clone(raw.([]byte)), true
}

func (r *radixStore) Set(key, value []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxKeys > 0 && r.tree.Len() >= r.maxKeys {
		if _, exists := r.tree.Get(key); !exists {
			return false, ErrStoreFull
		}
	}

	tree, _, updated := r.tree.Insert(clone(key), clone(value))
	r.tree = tree
	return !updated, nil
}

func (r *radixStore) Delete(key []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree, _, deleted := r.tree.Delete(key)
	if deleted {
		r.tree = tree
	}
	return deleted
}

func (r *radixStore) Keys() [][]byte {
	tree := r.snapshot()

	keys := make([][]byte, 0, tree.Len())
	tree.Root().Walk(func(k []byte, _ interface{}) bool {
		keys = append(keys, clone(k))
		return false
	})
	return keys
}

func (r *radixStore) Len() int {
	return r.snapshot().Len()
}
