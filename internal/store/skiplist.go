package store

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
)

// minCompactSize is the arena size below which the skiplist is never rebuilt
const minCompactSize = 64 << 10

// skipListStore keeps entries in a goleveldb memdb skiplist ordered by the
// default byte-wise comparer.
//
// memdb appends every put to an arena and never reuses space, so the
// skiplist is rebuilt once the arena grows past twice the live key and
// value bytes.
type skipListStore struct {
	mu      sync.RWMutex
	db      *memdb.DB
	maxKeys int
}

// NewSkipListStore creates an empty store backed by a memdb skiplist
func NewSkipListStore(maxKeys int) Store {
	return &skipListStore{
		db:      memdb.New(comparer.DefaultComparer, 0),
		maxKeys: maxKeys,
	}
}

func (s *skipListStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Reset()
	return nil
}

func (s *skipListStore) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.db.Get(key)
	if err != nil {
		return nil, false
	}
	return clone(value), true
}

func (s *skipListStore) Set(key, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := s.db.Contains(key)
	if !exists && s.maxKeys > 0 && s.db.Len() >= s.maxKeys {
		return false, ErrStoreFull
	}
	if err := s.db.Put(key, value); err != nil {
		return false, err
	}
	s.maybeCompact()
	return !exists, nil
}

func (s *skipListStore) Delete(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Delete(key); err != nil {
		return false
	}
	s.maybeCompact()
	return true
}

// maybeCompact copies live entries into a fresh skiplist when replaced and
// deleted data dominates the arena. Callers must hold mu for writing.
func (s *skipListStore) maybeCompact() {
	used, live := s.arenaSize(), s.db.Size()
	if used <= minCompactSize || used <= 2*live {
		return
	}

	fresh := memdb.New(comparer.DefaultComparer, live)
	iter := s.db.NewIterator(nil)
	for iter.Next() {
		// Put copies key and value into the new arena
		_ = fresh.Put(iter.Key(), iter.Value())
	}
	iter.Release()

	s.db = fresh
}

// arenaSize returns the bytes appended to the memdb arena, including data
// of replaced and deleted entries. Size only counts live entries.
func (s *skipListStore) arenaSize() int {
	return s.db.Capacity() - s.db.Free()
}

func (s *skipListStore) Keys() [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([][]byte, 0, s.db.Len())
	iter := s.db.NewIterator(nil)
	defer iter.Release()
	for iter.Next() {
		keys = append(keys, clone(iter.Key()))
	}
	return keys
}

func (s *skipListStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Len()
}
