package protoflow

import (
	"time"

	"github.com/dschultz0/protoflow/sdk"
)

type Options struct {
	header          map[string]string
	query           map[string][]string
	failureHandler  FuncErrorHandler
	responseHandler RespHandler
	requestHandler  ReqHandler
	retryCount      int
	retryInterval   time.Duration
}

type Workflow struct {
	pipeline *sdk.Pipeline // underline pipeline definition object
}

// Context provides the per request execution state to flow definitions
type Context = sdk.Context

type Option func(*Options)

// reset reset the Options
func (o *Options) reset() {
	o.header = map[string]string{}
	o.query = map[string][]string{}
	o.failureHandler = nil
	o.responseHandler = nil
	o.requestHandler = nil
	o.retryCount = 0
	o.retryInterval = 0
}

// Header Specify a header for a callback call
func Header(key, value string) Option {
	return func(o *Options) {
		o.header[key] = value
	}
}

// Query Specify a query parameter for a function or callback call
func Query(key string, value ...string) Option {
	return func(o *Options) {
		array := []string{}
		for _, val := range value {
			array = append(array, val)
		}
		o.query[key] = array
	}
}

// Retry Specify a retry count and interval for a function call
func Retry(count int, interval time.Duration) Option {
	return func(o *Options) {
		o.retryCount = count
		o.retryInterval = interval
	}
}

// OnFailure Specify a function failure handler
func OnFailure(handler FuncErrorHandler) Option {
	return func(o *Options) {
		o.failureHandler = handler
	}
}

// OnReponse Specify a resp handler callback for callback operation
func OnReponse(handler RespHandler) Option {
	return func(o *Options) {
		o.responseHandler = handler
	}
}

// RequestHdlr Specify a request handler for callback operation
func RequestHdlr(handler ReqHandler) Option {
	return func(o *Options) {
		o.requestHandler = handler
	}
}

// NewWorkflow initiates a flow with a pipeline
func NewWorkflow(name string) *Workflow {
	flow := &Workflow{}
	flow.pipeline = sdk.CreatePipeline(name)
	return flow
}

// GetPipeline expose the underlying pipeline object
func (flow *Workflow) GetPipeline() *sdk.Pipeline {
	return flow.pipeline
}

// Modify allows to apply inline callback function
// the callback function prototype is
// func([]byte) ([]byte, error)
func (flow *Workflow) Modify(mod Modifier) *Workflow {
	newMod := createModifier(mod)
	flow.currentPhase().AddOperation(newMod)
	return flow
}

// Apply apply a registered function with given name and options
func (flow *Workflow) Apply(function string, opts ...Option) *Workflow {
	newfunc := createFunction(function)

	o := &Options{}
	for _, opt := range opts {
		o.reset()
		opt(o)
		if len(o.header) != 0 {
			for key, value := range o.header {
				newfunc.addheader(key, value)
			}
		}
		if len(o.query) != 0 {
			for key, array := range o.query {
				for _, value := range array {
					newfunc.addparam(key, value)
				}
			}
		}
		if o.retryCount != 0 {
			newfunc.setRetry(o.retryCount, o.retryInterval)
		}
		if o.failureHandler != nil {
			newfunc.addFailureHandler(o.failureHandler)
		}
	}

	flow.currentPhase().AddOperation(newfunc)
	return flow
}

// Callback register a callback url as a part of pipeline definition
// One or more callback function can be placed for sending
// either partial pipeline data or after the pipeline completion
func (flow *Workflow) Callback(url string, opts ...Option) *Workflow {
	newCallback := createCallback(url)

	o := &Options{}
	for _, opt := range opts {
		o.reset()
		opt(o)
		if len(o.header) != 0 {
			for key, value := range o.header {
				newCallback.addheader(key, value)
			}
		}
		if len(o.query) != 0 {
			for key, array := range o.query {
				for _, value := range array {
					newCallback.addparam(key, value)
				}
			}
		}
		if o.failureHandler != nil {
			newCallback.addFailureHandler(o.failureHandler)
		}
		if o.responseHandler != nil {
			newCallback.addResponseHandler(o.responseHandler)
		}
		if o.requestHandler != nil {
			newCallback.addRequestHandler(o.requestHandler)
		}
	}

	flow.currentPhase().AddOperation(newCallback)
	return flow
}

// Checkpoint closes the current phase, the execution state is
// persisted in the StateStore once the phase has completed
func (flow *Workflow) Checkpoint() *Workflow {
	flow.pipeline.AddPhase(sdk.CreateExecutionPhase())
	return flow
}

// OnFailure set a failure handler routine for the pipeline
func (flow *Workflow) OnFailure(handler sdk.PipelineErrorHandler) *Workflow {
	flow.pipeline.FailureHandler = handler
	return flow
}

// Finally sets an execution finish handler routine
// it will be called once the execution has finished with state either Success/Failure
func (flow *Workflow) Finally(handler sdk.PipelineHandler) *Workflow {
	flow.pipeline.Finally = handler
	return flow
}

// currentPhase returns the phase under construction
func (flow *Workflow) currentPhase() *sdk.Phase {
	if flow.pipeline.CountPhases() == 0 {
		flow.pipeline.AddPhase(sdk.CreateExecutionPhase())
	}
	return flow.pipeline.GetLastPhase()
}
