package runtime

import (
	"fmt"

	protoflow "github.com/dschultz0/protoflow"
	"github.com/dschultz0/protoflow/executor"
	"github.com/dschultz0/protoflow/sdk"
	"github.com/dschultz0/protoflow/store"
)

// FlowDefinition builds a pipeline on the given workflow
type FlowDefinition func(flow *protoflow.Workflow, context *protoflow.Context) error

// LocalRuntime runs flows in process, implements executor.Runtime
type LocalRuntime struct {
	FlowName   string
	Definition FlowDefinition
	Invoker    protoflow.FunctionInvoker

	StateStore sdk.StateStore
	DataStore  sdk.DataStore

	ValidateRequest bool
	ValidationKey   string

	EnableTracing bool
	TraceServer   string

	DisableLogging bool
}

// GetFlowName get name of the flow
func (rt *LocalRuntime) GetFlowName() string {
	return rt.FlowName
}

// GetFlowDefinition get definition of the flow
func (rt *LocalRuntime) GetFlowDefinition(flow *protoflow.Workflow, context *protoflow.Context) error {
	if rt.Definition == nil {
		return fmt.Errorf("no flow definition provided")
	}
	return rt.Definition(flow, context)
}

// GetInvoker get the function invoker
func (rt *LocalRuntime) GetInvoker() (protoflow.FunctionInvoker, error) {
	if rt.Invoker == nil {
		return nil, fmt.Errorf("no function invoker provided")
	}
	return rt.Invoker, nil
}

// ReqValidationEnabled check if request validation enabled
func (rt *LocalRuntime) ReqValidationEnabled() bool {
	return rt.ValidateRequest
}

// GetValidationKey get request validation key
func (rt *LocalRuntime) GetValidationKey() (string, error) {
	if rt.ValidationKey == "" {
		return "", fmt.Errorf("no validation key provided")
	}
	return rt.ValidationKey, nil
}

// MonitoringEnabled check if request monitoring enabled
func (rt *LocalRuntime) MonitoringEnabled() bool {
	return rt.EnableTracing
}

// GetEventHandler get the event handler for request monitoring
func (rt *LocalRuntime) GetEventHandler() (sdk.EventHandler, error) {
	return NewTraceHandler(rt.TraceServer), nil
}

// LoggingEnabled check if logging is enabled
func (rt *LocalRuntime) LoggingEnabled() bool {
	return !rt.DisableLogging
}

// GetLogger get the logger
func (rt *LocalRuntime) GetLogger() (sdk.Logger, error) {
	return &FlowLogger{}, nil
}

// GetStateStore get the state store
func (rt *LocalRuntime) GetStateStore() (sdk.StateStore, error) {
	if rt.StateStore == nil {
		return store.NewInMemStateStore(), nil
	}
	return rt.StateStore, nil
}

// GetDataStore get the data store
func (rt *LocalRuntime) GetDataStore() (sdk.DataStore, error) {
	if rt.DataStore == nil {
		return executor.DefaultDataStore(), nil
	}
	return rt.DataStore, nil
}
