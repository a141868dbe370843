package executor

import (
	"fmt"

	"github.com/dschultz0/protoflow/sdk"
)

// requestEmbedDataStore keeps request data in process memory,
// used when the runtime provides no external DataStore
type requestEmbedDataStore struct {
	store map[string]string
}

// createDataStore creates a new requestEmbedDataStore
func createDataStore() *requestEmbedDataStore {
	rstore := &requestEmbedDataStore{}
	rstore.store = make(map[string]string)
	return rstore
}

// Configure Configure with flow name and request id
func (rstore *requestEmbedDataStore) Configure(flowName string, requestId string) {

}

// Init initialize the data store (called only once in a request span)
func (rstore *requestEmbedDataStore) Init() error {
	return nil
}

// Set sets a value (implement DataStore)
func (rstore *requestEmbedDataStore) Set(key string, value string) error {
	rstore.store[key] = value
	return nil
}

// Get gets a value (implement DataStore)
func (rstore *requestEmbedDataStore) Get(key string) (string, error) {
	value, ok := rstore.store[key]
	if !ok {
		return "", fmt.Errorf("no field name %s", key)
	}
	return value, nil
}

// Del deletes a value (implement DataStore)
func (rstore *requestEmbedDataStore) Del(key string) error {
	if _, ok := rstore.store[key]; ok {
		delete(rstore.store, key)
	}
	return nil
}

// Cleanup
func (rstore *requestEmbedDataStore) Cleanup() error {
	return nil
}

// DefaultDataStore exposes the request embedded data store
func DefaultDataStore() sdk.DataStore {
	return createDataStore()
}
