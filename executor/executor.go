// Package executor drives a single request through a flow pipeline.
// Operations run in process, execution state is checkpointed in the
// StateStore at every phase boundary.
package executor

import (
	"fmt"
	"net/url"

	hmac "github.com/alexellis/hmac"
	xid "github.com/rs/xid"

	protoflow "github.com/dschultz0/protoflow"
	"github.com/dschultz0/protoflow/sdk"
)

// RawRequest a raw request for the flow
type RawRequest struct {
	Data          []byte
	AuthSignature string
	Query         string
	RequestId     string
}

// Runtime provides the platform pieces a FlowExecutor runs with
type Runtime interface {
	// GetFlowName get name of the flow
	GetFlowName() string
	// GetFlowDefinition get definition of the flow
	GetFlowDefinition(*protoflow.Workflow, *protoflow.Context) error
	// GetInvoker get the function invoker
	GetInvoker() (protoflow.FunctionInvoker, error)
	// ReqValidationEnabled check if request validation enabled
	ReqValidationEnabled() bool
	// GetValidationKey get request validation key
	GetValidationKey() (string, error)
	// MonitoringEnabled check if request monitoring enabled
	MonitoringEnabled() bool
	// GetEventHandler get the event handler for request monitoring
	GetEventHandler() (sdk.EventHandler, error)
	// LoggingEnabled check if logging is enabled
	LoggingEnabled() bool
	// GetLogger get the logger
	GetLogger() (sdk.Logger, error)
	// GetStateStore get the state store
	GetStateStore() (sdk.StateStore, error)
	// GetDataStore get the data store
	GetDataStore() (sdk.DataStore, error)
}

// FlowExecutor executes a flow for one request
type FlowExecutor struct {
	flow *sdk.Pipeline // the pipeline definition

	flowName string // the name of the flow
	id       string // the unique request id
	query    string // the query string to the flow

	eventHandler sdk.EventHandler          // handles flow events
	logger       sdk.Logger                // handles flow logs
	stateStore   sdk.StateStore            // the state store
	dataStore    sdk.DataStore             // the data store
	invoker      protoflow.FunctionInvoker // executes registered functions

	runtime Runtime
}

const (
	// default HMAC key used when the runtime provides none
	defaultHmacKey = "856E71C5BCCE4AEE4FBAEE6898B4CE1A62BFA8E2F3D8FBD40E5D4F2C62A45C10"
)

// CreateFlowExecutor initiate an executor on a runtime
func CreateFlowExecutor(runtime Runtime) *FlowExecutor {
	fexec := &FlowExecutor{}
	fexec.runtime = runtime

	return fexec
}

// log logs using logger if logging enabled
func (fexec *FlowExecutor) log(str string, a ...interface{}) {
	if fexec.runtime.LoggingEnabled() {
		str := fmt.Sprintf(str, a...)
		fexec.logger.Log(str)
	}
}

// setRequestState marks the request as active
func (fexec *FlowExecutor) setRequestState(state bool) error {
	return fexec.stateStore.Set("request-state", fmt.Sprintf("%v", state))
}

// setExecutionState checkpoints the pipeline state and the partial
// result at a phase boundary
func (fexec *FlowExecutor) setExecutionState(result []byte) error {
	if err := fexec.stateStore.Set("state", fexec.flow.GetState()); err != nil {
		return err
	}
	return fexec.stateStore.Set("result", string(result))
}

// resumeExecutionState applies a checkpointed execution state left by
// an earlier partial run of the same request, returns the partial
// result of the last completed phase
func (fexec *FlowExecutor) resumeExecutionState(pipeline *sdk.Pipeline) ([]byte, bool) {
	state, err := fexec.stateStore.Get("state")
	if err != nil || state == "" {
		return nil, false
	}
	partial, err := fexec.stateStore.Get("result")
	if err != nil {
		return nil, false
	}
	pipeline.ApplyState(state)
	if pipeline.ExecutionPosition <= 0 ||
		pipeline.ExecutionPosition >= pipeline.CountPhases() {
		pipeline.ExecutionPosition = 0
		return nil, false
	}
	return []byte(partial), true
}

// init initializes the executor pieces from the runtime
func (fexec *FlowExecutor) init(request *RawRequest) error {
	fexec.flowName = fexec.runtime.GetFlowName()
	if fexec.flowName == "" {
		return fmt.Errorf("failed to initialize executor, flow name must be set")
	}

	fexec.id = request.RequestId
	if fexec.id == "" {
		fexec.id = xid.New().String()
	}
	fexec.query = request.Query

	var err error

	fexec.invoker, err = fexec.runtime.GetInvoker()
	if err != nil {
		return fmt.Errorf("failed to initialize invoker, error %v", err)
	}

	fexec.stateStore, err = fexec.runtime.GetStateStore()
	if err != nil {
		return fmt.Errorf("failed to initialize the StateStore, error %v", err)
	}
	fexec.stateStore.Configure(fexec.flowName, fexec.id)
	if err = fexec.stateStore.Init(); err != nil {
		return fmt.Errorf("failed to initialize the StateStore, error %v", err)
	}

	fexec.dataStore, err = fexec.runtime.GetDataStore()
	if err != nil {
		return fmt.Errorf("failed to initialize the DataStore, error %v", err)
	}
	fexec.dataStore.Configure(fexec.flowName, fexec.id)
	if err = fexec.dataStore.Init(); err != nil {
		return fmt.Errorf("failed to initialize the DataStore, error %v", err)
	}

	if fexec.runtime.LoggingEnabled() {
		fexec.logger, err = fexec.runtime.GetLogger()
		if err != nil {
			return fmt.Errorf("failed to initialize the Logger, error %v", err)
		}
		fexec.logger.Configure(fexec.flowName, fexec.id)
		if err = fexec.logger.Init(); err != nil {
			return fmt.Errorf("failed to initialize the Logger, error %v", err)
		}
	}

	if fexec.runtime.MonitoringEnabled() {
		fexec.eventHandler, err = fexec.runtime.GetEventHandler()
		if err != nil {
			return fmt.Errorf("failed to initialize the EventHandler, error %v", err)
		}
		fexec.eventHandler.Configure(fexec.flowName, fexec.id)
		if err = fexec.eventHandler.Init(); err != nil {
			return fmt.Errorf("failed to initialize the EventHandler, error %v", err)
		}
	}

	return nil
}

// validateRequest validates the signature of the raw request
func (fexec *FlowExecutor) validateRequest(request *RawRequest) error {
	key, err := fexec.runtime.GetValidationKey()
	if err != nil {
		key = defaultHmacKey
	}
	err = hmac.Validate(request.Data, request.AuthSignature, key)
	if err != nil {
		return fmt.Errorf("failed to validate request signature, error %v", err)
	}
	return nil
}

// buildFlow builds the pipeline from the flow definition
func (fexec *FlowExecutor) buildFlow() (*sdk.Pipeline, *sdk.Context, error) {
	flow := protoflow.NewWorkflow(fexec.flowName)

	context := sdk.CreateContext(fexec.id, 0, fexec.flowName, fexec.dataStore)
	if fexec.query != "" {
		query, err := url.ParseQuery(fexec.query)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse request query, error %v", err)
		}
		context.Query = query
	} else {
		context.Query = url.Values{}
	}

	err := fexec.runtime.GetFlowDefinition(flow, context)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get flow definition, error %v", err)
	}

	pipeline := flow.GetPipeline()
	if pipeline.CountOperations() == 0 {
		return nil, nil, fmt.Errorf("flow definition has no operation")
	}

	return pipeline, context, nil
}

// executePhase executes all operations of the current phase
func (fexec *FlowExecutor) executePhase(request []byte) ([]byte, error) {
	var result []byte
	var err error

	pipeline := fexec.flow
	position := pipeline.ExecutionPosition
	phase := pipeline.GetCurrentPhase()

	if fexec.runtime.MonitoringEnabled() {
		fexec.eventHandler.ReportPhaseStart(position, fexec.id)
	}

	option := map[string]interface{}{
		"request-id": fexec.id,
		"invoker":    fexec.invoker,
	}
	if key, err := fexec.runtime.GetValidationKey(); err == nil {
		option["sign-key"] = key
	}

	for _, operation := range phase.GetOperations() {
		if fexec.runtime.MonitoringEnabled() {
			fexec.eventHandler.ReportOperationStart(operation.GetId(), position, fexec.id)
		}
		if result == nil {
			result, err = operation.Execute(request, option)
		} else {
			result, err = operation.Execute(result, option)
		}
		if err != nil {
			if fexec.runtime.MonitoringEnabled() {
				fexec.eventHandler.ReportOperationFailure(operation.GetId(), position, fexec.id, err)
			}
			err = fmt.Errorf("Phase(%d), Operation (%s), error: execution failed, %v",
				position, operation.GetId(), err)
			return nil, err
		}
		if fexec.runtime.MonitoringEnabled() {
			fexec.eventHandler.ReportOperationEnd(operation.GetId(), position, fexec.id)
		}
	}

	if fexec.runtime.MonitoringEnabled() {
		fexec.eventHandler.ReportPhaseEnd(position, fexec.id)
	}
	fexec.log("[Request `%s`] Completed execution of Phase %d\n", fexec.id, position)

	return result, nil
}

// handleFailure handles a pipeline execution failure
func (fexec *FlowExecutor) handleFailure(context *sdk.Context, err error) ([]byte, error) {
	context.State = sdk.StateFailure

	if fexec.runtime.MonitoringEnabled() {
		fexec.eventHandler.ReportRequestFailure(fexec.id, err)
		defer fexec.eventHandler.Flush()
	}
	fexec.log("[Request `%s`] Failed, error %v\n", fexec.id, err)

	var data []byte
	if fexec.flow.FailureHandler != nil {
		data, err = fexec.flow.FailureHandler(err)
	}
	if fexec.flow.Finally != nil {
		fexec.flow.Finally(sdk.StateFailure)
	}

	// stores are kept so a retried request with the same id can
	// resume from the last checkpoint

	if err != nil {
		return nil, fmt.Errorf("[Request `%s`] Failed, %v", fexec.id, err)
	}
	return data, nil
}

// cleanupStores cleans up the stores at the end of a request span
func (fexec *FlowExecutor) cleanupStores() {
	if cerr := fexec.stateStore.Cleanup(); cerr != nil {
		fexec.log("[Request `%s`] Failed to cleanup the StateStore, error %v\n", fexec.id, cerr)
	}
	if cerr := fexec.dataStore.Cleanup(); cerr != nil {
		fexec.log("[Request `%s`] Failed to cleanup the DataStore, error %v\n", fexec.id, cerr)
	}
}

// GetReqId returns the request id of the executing flow
func (fexec *FlowExecutor) GetReqId() string {
	return fexec.id
}

// BuildContext creates a detached context for building a pipeline
// outside a request span, used for definition export
func BuildContext(flowName string, requestId string) *sdk.Context {
	context := sdk.CreateContext(requestId, 0, flowName, createDataStore())
	context.Query = url.Values{}
	return context
}

// Execute drives the full pipeline for one request
func (fexec *FlowExecutor) Execute(request *RawRequest) ([]byte, error) {
	if err := fexec.init(request); err != nil {
		return nil, err
	}

	// Check if request validation used
	if fexec.runtime.ReqValidationEnabled() {
		if err := fexec.validateRequest(request); err != nil {
			return nil, err
		}
	}

	pipeline, context, err := fexec.buildFlow()
	if err != nil {
		return nil, err
	}
	fexec.flow = pipeline

	if fexec.runtime.MonitoringEnabled() {
		fexec.eventHandler.ReportRequestStart(fexec.id)
	}
	fexec.log("[Request `%s`] Starting flow %s\n", fexec.id, fexec.flowName)

	if err = fexec.setRequestState(true); err != nil {
		return nil, fmt.Errorf("[Request `%s`] Failed to mark request, error %v", fexec.id, err)
	}

	result := request.Data
	if request.RequestId != "" {
		if partial, resumed := fexec.resumeExecutionState(pipeline); resumed {
			result = partial
			fexec.log("[Request `%s`] Resuming flow %s at phase %d\n",
				fexec.id, fexec.flowName, pipeline.ExecutionPosition)
		}
	}

	for pipeline.GetCurrentPhase() != nil {
		phaseResult, err := fexec.executePhase(result)
		if err != nil {
			if fexec.runtime.MonitoringEnabled() {
				fexec.eventHandler.ReportPhaseFailure(pipeline.ExecutionPosition, fexec.id, err)
			}
			return fexec.handleFailure(context, err)
		}
		if phaseResult != nil {
			result = phaseResult
		}

		pipeline.UpdateExecutionPosition()
		if err = fexec.setExecutionState(result); err != nil {
			return fexec.handleFailure(context,
				fmt.Errorf("failed to checkpoint execution state, error %v", err))
		}
	}

	context.State = sdk.StateSuccess

	if fexec.flow.Finally != nil {
		fexec.flow.Finally(sdk.StateSuccess)
	}
	if fexec.runtime.MonitoringEnabled() {
		fexec.eventHandler.ReportRequestEnd(fexec.id)
		fexec.eventHandler.Flush()
	}
	fexec.log("[Request `%s`] Completed successfully\n", fexec.id)

	fexec.cleanupStores()

	return result, nil
}
