package store

import (
	"time"

	"github.com/hashicorp/go-metrics"
)

// InstrumentedStore wraps any Store and reports per-operation counters and
// timings to the global go-metrics sink.
type InstrumentedStore struct {
	store Store
}

// Compile-time check to ensure InstrumentedStore implements Store.
var _ Store = (*InstrumentedStore)(nil)

// NewInstrumentedStore wraps a store with instrumentation.
func NewInstrumentedStore(store Store) *InstrumentedStore {
	return &InstrumentedStore{store: store}
}

func (s *InstrumentedStore) Close() error {
	return s.store.Close()
}

func (s *InstrumentedStore) Get(key []byte) ([]byte, bool) {
	defer metrics.MeasureSince([]string{"store", "get"}, time.Now())

	value, found := s.store.Get(key)
	if !found {
		metrics.IncrCounter([]string{"store", "get", "miss"}, 1)
	}
	return value, found
}

func (s *InstrumentedStore) Set(key, value []byte) (bool, error) {
	defer metrics.MeasureSince([]string{"store", "set"}, time.Now())

	added, err := s.store.Set(key, value)
	switch {
	case err != nil:
		metrics.IncrCounter([]string{"store", "set", "error"}, 1)
	case added:
		metrics.IncrCounter([]string{"store", "set", "added"}, 1)
		metrics.SetGauge([]string{"store", "keys"}, float32(s.store.Len()))
	default:
		metrics.IncrCounter([]string{"store", "set", "updated"}, 1)
	}
	return added, err
}

func (s *InstrumentedStore) Delete(key []byte) bool {
	defer metrics.MeasureSince([]string{"store", "delete"}, time.Now())

	deleted := s.store.Delete(key)
	if deleted {
		metrics.SetGauge([]string{"store", "keys"}, float32(s.store.Len()))
	} else {
		metrics.IncrCounter([]string{"store", "delete", "miss"}, 1)
	}
	return deleted
}

func (s *InstrumentedStore) Keys() [][]byte {
	defer metrics.MeasureSince([]string{"store", "list"}, time.Now())

	return s.store.Keys()
}

func (s *InstrumentedStore) Len() int {
	return s.store.Len()
}
