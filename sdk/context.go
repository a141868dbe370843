package sdk

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Context execution context and execution state
type Context struct {
	requestId string     // the request id
	phase     int        // the execution position
	dataStore DataStore  // underline DataStore
	Query     url.Values // provides request Query
	State     string     // state of the request
	Name      string     // name of the flow
}

// DataStore for storing request data
type DataStore interface {
	// Configure the DataStore with flow name and request ID
	Configure(flowName string, requestId string)
	// Initialize the DataStore (called only once in a request span)
	Init() error
	// Set store a value for key, in failure returns error
	Set(key string, value string) error
	// Get retrives a value by key, if failure returns error
	Get(key string) (string, error)
	// Del delets a value by a key
	Del(key string) error
	// Cleanup all the resources in DataStore
	Cleanup() error
}

// StateStore for saving execution state
type StateStore interface {
	// Configure the StateStore with flow name and request ID
	Configure(flowName string, requestId string)
	// Initialize the StateStore (called only once in a request span)
	Init() error
	// Set a value (override existing, or create one)
	Set(key string, value string) error
	// Get a value
	Get(key string) (string, error)
	// Compare and Update a value
	Update(key string, oldValue string, newValue string) error
	// Cleanup all the resources in StateStore (called only once in a request span)
	Cleanup() error
}

// EventHandler handle flow events
type EventHandler interface {
	// Configure the EventHandler with flow name and request ID
	Configure(flowName string, requestId string)
	// Initialize an EventHandler (called only once in a request span)
	Init() error
	// ReportRequestStart report a start of request
	ReportRequestStart(requestId string)
	// ReportRequestEnd reports an end of request
	ReportRequestEnd(requestId string)
	// ReportRequestFailure reports a failure of a request with error
	ReportRequestFailure(requestId string, err error)
	// ReportPhaseStart report a start of a phase execution
	ReportPhaseStart(phase int, requestId string)
	// ReportPhaseEnd report an end of a phase execution
	ReportPhaseEnd(phase int, requestId string)
	// ReportPhaseFailure report a phase execution failure with error
	ReportPhaseFailure(phase int, requestId string, err error)
	// ReportOperationStart reports start of an operation
	ReportOperationStart(operationId string, phase int, requestId string)
	// ReportOperationEnd reports an end of an operation
	ReportOperationEnd(operationId string, phase int, requestId string)
	// ReportOperationFailure reports failure of an operation with error
	ReportOperationFailure(operationId string, phase int, requestId string, err error)
	// Flush flush the reports
	Flush()
}

// Logger logs the flow logs
type Logger interface {
	// Configure the Logger with flow name and request ID
	Configure(flowName string, requestId string)
	// Initialize the Logger (called only once in a request span)
	Init() error
	// Log logs a flow log
	Log(str string)
}

const (
	// StateSuccess denotes success state
	StateSuccess = "success"
	// StateFailure denotes failure state
	StateFailure = "failure"
	// StateOngoing denotes ongoing state
	StateOngoing = "ongoing"
)

// CreateContext create request context (used by the executor)
func CreateContext(id string, phase int, name string,
	dstore DataStore) *Context {

	context := &Context{}
	context.requestId = id
	context.phase = phase
	context.Name = name
	context.State = StateOngoing
	context.dataStore = dstore

	return context
}

// GetRequestId returns the request id
func (context *Context) GetRequestId() string {
	return context.requestId
}

// GetPhase return the phase no
func (context *Context) GetPhase() int {
	return context.phase
}

// Set put a value in the context using DataStore
func (context *Context) Set(key string, data interface{}) error {
	c := struct {
		Key   string      `json:"key"`
		Value interface{} `json:"value"`
	}{Key: key, Value: data}
	b, err := json.Marshal(&c)
	if err != nil {
		return fmt.Errorf("failed to marshal data, error %v", err)
	}

	return context.dataStore.Set(key, string(b))
}

// Get retrive a value from the context using DataStore
func (context *Context) Get(key string) (interface{}, error) {
	var value interface{}
	err := context.getValue(key, &value)
	return value, err
}

// GetInt retrive a integer value from the context using DataStore
func (context *Context) GetInt(key string) (int, error) {
	var value int
	err := context.getValue(key, &value)
	return value, err
}

// GetString retrive a string value from the context using DataStore
func (context *Context) GetString(key string) (string, error) {
	var value string
	err := context.getValue(key, &value)
	return value, err
}

// GetBytes retrive a byte array from the context using DataStore
func (context *Context) GetBytes(key string) ([]byte, error) {
	var value []byte
	err := context.getValue(key, &value)
	return value, err
}

// GetBool retrive a boolean value from the context using DataStore
func (context *Context) GetBool(key string) (bool, error) {
	var value bool
	err := context.getValue(key, &value)
	return value, err
}

// Del deletes a value from the context using DataStore
func (context *Context) Del(key string) error {
	return context.dataStore.Del(key)
}

func (context *Context) getValue(key string, value interface{}) error {
	data, err := context.dataStore.Get(key)
	if err != nil {
		return err
	}
	c := struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}{}
	err = json.Unmarshal([]byte(data), &c)
	if err != nil {
		return fmt.Errorf("failed to unmarshal data, error %v", err)
	}
	err = json.Unmarshal(c.Value, value)
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s, error %v", key, err)
	}
	return nil
}
