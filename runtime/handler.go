package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	protoflow "github.com/dschultz0/protoflow"
	"github.com/dschultz0/protoflow/executor"
)

// LambdaHandler the handler signature of the Lambda programming model
type LambdaHandler func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// FunctionHandler adapts a registered function to a LambdaHandler
func FunctionHandler(invoker protoflow.FunctionInvoker, function string) LambdaHandler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		result, err := invoker.Invoke(function, payload, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to execute function %s, error %v", function, err)
		}
		return result, nil
	}
}

// FlowHandler adapts a flow on the given runtime to a LambdaHandler,
// every invocation executes the full pipeline for one request
func FlowHandler(rt executor.Runtime) LambdaHandler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		fexec := executor.CreateFlowExecutor(rt)
		result, err := fexec.Execute(&executor.RawRequest{Data: payload})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}
