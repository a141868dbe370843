package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/boltdb/bolt"
)

// BoltStateStore persists execution state in a bolt db file,
// one bucket per request
type BoltStateStore struct {
	flowName  string
	requestId string
	db        *bolt.DB
	mux       sync.Mutex
}

// NewBoltStateStore opens a file backed state store at the given path
func NewBoltStateStore(path string) (*BoltStateStore, error) {
	ss := &BoltStateStore{}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open file based db, error %v", err)
	}
	ss.db = db
	return ss, nil
}

// Configure the StateStore with flow name and request ID
func (ss *BoltStateStore) Configure(flowName string, requestId string) {
	ss.flowName = flowName
	ss.requestId = requestId
}

// Init initialize the StateStore (called only once in a request span)
func (ss *BoltStateStore) Init() error {
	err := ss.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ss.requestId))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create request bucket, error %v", err)
	}
	return nil
}

// Set a value (override existing, or create one)
func (ss *BoltStateStore) Set(key string, value string) error {
	err := ss.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ss.requestId))
		if b == nil {
			return fmt.Errorf("request bucket doesn't exist")
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set key, error %v", err)
	}
	return nil
}

// Get a value
func (ss *BoltStateStore) Get(key string) (string, error) {
	var value string

	err := ss.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ss.requestId))
		if b == nil {
			return fmt.Errorf("request bucket doesn't exist")
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("key not found")
		}
		value = string(data)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get key, error %v", err)
	}
	return value, nil
}

// Update compare and update a value
func (ss *BoltStateStore) Update(key string, oldValue string, newValue string) error {
	ss.mux.Lock()
	defer ss.mux.Unlock()

	err := ss.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ss.requestId))
		if b == nil {
			return fmt.Errorf("request bucket doesn't exist")
		}
		value := b.Get([]byte(key))
		if string(value) != oldValue {
			return fmt.Errorf("value doesn't match")
		}
		return b.Put([]byte(key), []byte(newValue))
	})
	if err != nil {
		return fmt.Errorf("failed to update key, error %v", err)
	}
	return nil
}

// Cleanup all the resources in the StateStore (called only once in a request span)
func (ss *BoltStateStore) Cleanup() error {
	err := ss.db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(ss.requestId))
	})
	if err != nil {
		return fmt.Errorf("failed to delete request bucket, error %v", err)
	}
	return nil
}

// Close closes the underlying db handle
func (ss *BoltStateStore) Close() error {
	return ss.db.Close()
}
