package store

import (
	"errors"
	"fmt"
	"io"
)

// Engine names accepted by New
const (
	EngineRadix    = "radix"
	EngineSkipList = "skiplist"
)

var (
	// ErrStoreFull is returned by Set when adding a key would exceed the
	// configured key limit
	ErrStoreFull = errors.New("store is full")

	// ErrUnknownEngine is returned by New for an unrecognized engine name
	ErrUnknownEngine = errors.New("unknown store engine")
)

// Store defines the interface for an ordered key-value store.
// Keys are ordered byte-wise. Implementations copy everything passed in
// and everything handed back, and serialize all operations.
type Store interface {
	io.Closer

	// Get retrieves a copy of the value for the given key
	// Returns the value and true if found, nil and false otherwise
	Get(key []byte) ([]byte, bool)

	// Set stores a value for the given key
	// Returns true if the key was added, false if an existing value was replaced
	Set(key, value []byte) (bool, error)

	// Delete removes a key from the store
	// Returns true if the key existed
	Delete(key []byte) bool

	// Keys returns copies of all keys in ascending byte order
	Keys() [][]byte

	// Len returns the number of keys in the store
	Len() int
}

// Options configures a Store created by New
type Options struct {
	// Engine selects the ordered structure backing the store
	Engine string
	// MaxKeys caps the number of keys; zero means no limit
	MaxKeys int
}

// New creates an empty store backed by the requested engine
func New(opts Options) (Store, error) {
	switch opts.Engine {
	case "", EngineRadix:
		return NewRadixStore(opts.MaxKeys), nil
	case EngineSkipList:
		return NewSkipListStore(opts.MaxKeys), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
