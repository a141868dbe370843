// Package store provides StateStore implementations for the flow
// executor: an in process store for local runs and a bolt backed
// store when execution state needs to survive the process.
package store

import (
	"fmt"
	"sync"
)

// InMemStateStore keeps execution state in process memory
type InMemStateStore struct {
	keyDecorator func(string) string
	cache        map[string]string
	mux          sync.Mutex
}

func NewInMemStateStore() *InMemStateStore {
	ss := &InMemStateStore{}
	ss.cache = make(map[string]string)
	ss.keyDecorator = func(key string) string { return key }
	return ss
}

// Configure the StateStore with flow name and request ID
func (ss *InMemStateStore) Configure(flowName string, requestId string) {
	ss.keyDecorator = func(key string) string {
		dKey := flowName + "-" + requestId + "-" + key
		return dKey
	}
}

// Init initialize the StateStore (called only once in a request span)
func (ss *InMemStateStore) Init() error {
	return nil
}

// Set a value (override existing, or create one)
func (ss *InMemStateStore) Set(key string, value string) error {
	ss.mux.Lock()
	ss.cache[ss.keyDecorator(key)] = value
	ss.mux.Unlock()
	return nil
}

// Get a value
func (ss *InMemStateStore) Get(key string) (string, error) {
	ss.mux.Lock()
	value, ok := ss.cache[ss.keyDecorator(key)]
	ss.mux.Unlock()
	if !ok {
		return "", fmt.Errorf("key not found")
	}
	return value, nil
}

// Update compare and update a value
func (ss *InMemStateStore) Update(key string, oldValue string, newValue string) error {
	ss.mux.Lock()
	defer ss.mux.Unlock()
	value, ok := ss.cache[ss.keyDecorator(key)]
	if !ok {
		return fmt.Errorf("key not found")
	}
	if value != oldValue {
		return fmt.Errorf("value doesn't match")
	}
	ss.cache[ss.keyDecorator(key)] = newValue
	return nil
}

// Cleanup all the resources in the StateStore (called only once in a request span)
func (ss *InMemStateStore) Cleanup() error {
	return nil
}
