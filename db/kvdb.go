package db

import (
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has no value.
// Every backend reports a missing key with this same error, so
// callers can tell an absent record from a broken store.
var ErrKeyNotFound = errors.New("db: key not found")

func IsKeyNotFound(err error) bool {
	return err == ErrKeyNotFound
}

type KvDb interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Remove(key []byte) error
	Close()
	NewBatch() KvBatch
}

type KvBatch interface {
	Put(key []byte, value []byte) error
	Write() error	// Write to the backing db
	Reset()		// Reset resets the batch for reuse
	DataSize() int	// amount of data in the batch
}
