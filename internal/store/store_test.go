package store

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// StoreFactory is a function that creates a new Store instance for testing
type StoreFactory func(t *testing.T, maxKeys int) Store

// RunStoreTests runs a comprehensive test suite against any Store implementation
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("GetNonExistent", func(t *testing.T) {
			testGetNonExistent(t, factory)
		})
		t.Run("SetAndGet", func(t *testing.T) {
			testSetAndGet(t, factory)
		})
		t.Run("SetOverwrite", func(t *testing.T) {
			testSetOverwrite(t, factory)
		})
		t.Run("DeleteExisting", func(t *testing.T) {
			testDeleteExisting(t, factory)
		})
		t.Run("DeleteNonExistent", func(t *testing.T) {
			testDeleteNonExistent(t, factory)
		})
		t.Run("MultipleKeys", func(t *testing.T) {
			testMultipleKeys(t, factory)
		})
		t.Run("LargeValue", func(t *testing.T) {
			testLargeValue(t, factory)
		})
		t.Run("KeysOrdered", func(t *testing.T) {
			testKeysOrdered(t, factory)
		})
		t.Run("KeysByteWise", func(t *testing.T) {
			testKeysByteWise(t, factory)
		})
		t.Run("NoAliasing", func(t *testing.T) {
			testNoAliasing(t, factory)
		})
		t.Run("MaxKeys", func(t *testing.T) {
			testMaxKeys(t, factory)
		})
		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, factory)
		})
	})
}

func testGetNonExistent(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	value, found := store.Get([]byte("nonexistent"))
	if found {
		t.Error("expected key to not be found")
	}
	if value != nil {
		t.Errorf("expected nil value, got %v", value)
	}
}

func testSetAndGet(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	key := []byte("testkey")
	expectedValue := []byte("testvalue")

	added, err := store.Set(key, expectedValue)
	if err != nil {
		t.Fatalf("expected no error writing key %s, got %v", key, err)
	}
	if !added {
		t.Error("expected new key to be reported as added")
	}

	value, found := store.Get(key)
	if !found {
		t.Error("expected key to be found")
	}
	if !bytes.Equal(value, expectedValue) {
		t.Errorf("expected value %v, got %v", expectedValue, value)
	}
}

func testSetOverwrite(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	key := []byte("testkey")
	value1 := []byte("value1")
	value2 := []byte("value2")

	if _, err := store.Set(key, value1); err != nil {
		t.Fatalf("expected no error writing key %s, got %v", key, err)
	}
	added, err := store.Set(key, value2)
	if err != nil {
		t.Fatalf("expected no error overwriting key %s, got %v", key, err)
	}
	if added {
		t.Error("expected existing key to be reported as updated")
	}

	value, found := store.Get(key)
	if !found {
		t.Error("expected key to be found")
	}
	if !bytes.Equal(value, value2) {
		t.Errorf("expected value %v, got %v", value2, value)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 key, got %d", store.Len())
	}
}

func testDeleteExisting(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	key := []byte("testkey")
	if _, err := store.Set(key, []byte("testvalue")); err != nil {
		t.Fatalf("expected no error writing key %s, got %v", key, err)
	}

	if !store.Delete(key) {
		t.Error("expected first delete to report the key as deleted")
	}
	if store.Delete(key) {
		t.Error("expected second delete to report the key as not found")
	}

	if _, found := store.Get(key); found {
		t.Error("expected key to not be found after deletion")
	}
}

func testDeleteNonExistent(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	if store.Delete([]byte("nonexistent")) {
		t.Error("expected delete of non-existent key to report not found")
	}
}

func testMultipleKeys(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	keys := [][]byte{[]byte("key1"), []byte("key2"), []byte("key3")}
	values := [][]byte{[]byte("value1"), []byte("value2"), []byte("value3")}

	// Set all keys
	for i, key := range keys {
		if _, err := store.Set(key, values[i]); err != nil {
			t.Fatalf("expected no error writing key %s, got %v", key, err)
		}
	}

	// Verify all keys
	for i, key := range keys {
		value, found := store.Get(key)
		if !found {
			t.Errorf("expected key %s to be found", key)
		}
		if !bytes.Equal(value, values[i]) {
			t.Errorf("expected value %v for key %s, got %v", values[i], key, value)
		}
	}

	// Delete one key
	if !store.Delete(keys[1]) {
		t.Errorf("expected key %s to be deleted", keys[1])
	}

	// Verify remaining keys
	value, found := store.Get(keys[0])
	if !found || !bytes.Equal(value, values[0]) {
		t.Error("expected key1 to still exist")
	}

	if _, found = store.Get(keys[1]); found {
		t.Error("expected key2 to be deleted")
	}

	value, found = store.Get(keys[2])
	if !found || !bytes.Equal(value, values[2]) {
		t.Error("expected key3 to still exist")
	}
}

func testLargeValue(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	key := bytes.Repeat([]byte("k"), 1<<16)
	largeValue := make([]byte, 1<<16)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}

	if _, err := store.Set(key, largeValue); err != nil {
		t.Fatalf("expected no error writing large key, got %v", err)
	}

	value, found := store.Get(key)
	if !found {
		t.Error("expected key to be found")
	}
	if !bytes.Equal(value, largeValue) {
		t.Error("large value not stored correctly")
	}
}

func testKeysOrdered(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	for _, key := range []string{"b", "a", "c"} {
		if _, err := store.Set([]byte(key), []byte("v")); err != nil {
			t.Fatalf("expected no error writing key %s, got %v", key, err)
		}
	}

	assertKeys(t, store.Keys(), []string{"a", "b", "c"})
}

func testKeysByteWise(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	for _, key := range []string{"ab", "\xff", "a", "B", "\x00", "aa"} {
		if _, err := store.Set([]byte(key), []byte("v")); err != nil {
			t.Fatalf("expected no error writing key %q, got %v", key, err)
		}
	}

	assertKeys(t, store.Keys(), []string{"\x00", "B", "a", "aa", "ab", "\xff"})
}

func testNoAliasing(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	key := []byte("key")
	value := []byte("value")
	if _, err := store.Set(key, value); err != nil {
		t.Fatalf("expected no error writing key %s, got %v", key, err)
	}

	// Mutating the caller's buffers must not reach the store
	key[0] = 'x'
	value[0] = 'x'

	got, found := store.Get([]byte("key"))
	if !found || !bytes.Equal(got, []byte("value")) {
		t.Fatalf("expected stored value %q, got %q (found=%v)", "value", got, found)
	}

	// Mutating returned buffers must not reach the store either
	got[0] = 'y'
	store.Keys()[0][0] = 'y'

	got, _ = store.Get([]byte("key"))
	if !bytes.Equal(got, []byte("value")) {
		t.Errorf("expected stored value %q, got %q", "value", got)
	}
	assertKeys(t, store.Keys(), []string{"key"})
}

func testMaxKeys(t *testing.T, factory StoreFactory) {
	store := factory(t, 2)

	for _, key := range []string{"a", "b"} {
		if _, err := store.Set([]byte(key), []byte("v")); err != nil {
			t.Fatalf("expected no error writing key %s, got %v", key, err)
		}
	}

	if _, err := store.Set([]byte("c"), []byte("v")); !errors.Is(err, ErrStoreFull) {
		t.Errorf("expected ErrStoreFull, got %v", err)
	}

	// Updates never grow the store
	added, err := store.Set([]byte("a"), []byte("v2"))
	if err != nil || added {
		t.Errorf("expected update to succeed, got added=%v err=%v", added, err)
	}

	store.Delete([]byte("b"))
	if _, err := store.Set([]byte("c"), []byte("v")); err != nil {
		t.Errorf("expected no error after freeing a slot, got %v", err)
	}
}

func testConcurrentAccess(t *testing.T, factory StoreFactory) {
	store := factory(t, 0)

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := []byte(fmt.Sprintf("key-%02d-%03d", w, i))
				if _, err := store.Set(key, key); err != nil {
					t.Errorf("expected no error writing key %s, got %v", key, err)
					return
				}
				store.Get(key)
				store.Keys()
			}
		}(w)
	}
	wg.Wait()

	keys := store.Keys()
	if len(keys) != workers*perWorker {
		t.Fatalf("expected %d keys, got %d", workers*perWorker, len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if bytes.Compare(keys[i-1], keys[i]) >= 0 {
			t.Fatalf("keys out of order at %d: %q >= %q", i, keys[i-1], keys[i])
		}
	}
}

func assertKeys(t *testing.T, got [][]byte, expected []string) {
	t.Helper()

	if len(got) != len(expected) {
		t.Fatalf("expected %d keys, got %d: %q", len(expected), len(got), got)
	}
	for i := range expected {
		if string(got[i]) != expected[i] {
			t.Errorf("expected key %d to be %q, got %q", i, expected[i], got[i])
		}
	}
}
