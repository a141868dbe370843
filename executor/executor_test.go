package executor_test

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	hmac "github.com/alexellis/hmac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protoflow "github.com/dschultz0/protoflow"
	"github.com/dschultz0/protoflow/executor"
	"github.com/dschultz0/protoflow/ops"
	"github.com/dschultz0/protoflow/sdk"
	"github.com/dschultz0/protoflow/store"
)

type testRuntime struct {
	flowName      string
	definition    func(flow *protoflow.Workflow, context *protoflow.Context) error
	invoker       protoflow.FunctionInvoker
	stateStore    sdk.StateStore
	validate      bool
	validationKey string
}

func (rt *testRuntime) GetFlowName() string { return rt.flowName }

func (rt *testRuntime) GetFlowDefinition(flow *protoflow.Workflow, context *protoflow.Context) error {
	return rt.definition(flow, context)
}

func (rt *testRuntime) GetInvoker() (protoflow.FunctionInvoker, error) {
	if rt.invoker == nil {
		return ops.DefaultRegistry(), nil
	}
	return rt.invoker, nil
}

func (rt *testRuntime) ReqValidationEnabled() bool { return rt.validate }

func (rt *testRuntime) GetValidationKey() (string, error) {
	if rt.validationKey == "" {
		return "", fmt.Errorf("no key")
	}
	return rt.validationKey, nil
}

func (rt *testRuntime) MonitoringEnabled() bool { return false }

func (rt *testRuntime) GetEventHandler() (sdk.EventHandler, error) { return nil, nil }

func (rt *testRuntime) LoggingEnabled() bool { return false }

func (rt *testRuntime) GetLogger() (sdk.Logger, error) { return nil, nil }

func (rt *testRuntime) GetStateStore() (sdk.StateStore, error) {
	if rt.stateStore == nil {
		rt.stateStore = store.NewInMemStateStore()
	}
	return rt.stateStore, nil
}

func (rt *testRuntime) GetDataStore() (sdk.DataStore, error) {
	return executor.DefaultDataStore(), nil
}

func TestExecuteChain(t *testing.T) {
	rt := &testRuntime{
		flowName: "proto-respond-chain",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("proto-respond")
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	result, err := fexec.Execute(&executor.RawRequest{
		Data: []byte(`{"strValue": "abc", "optParam": "custom"}`),
	})
	require.NoError(t, err)

	var response ops.RespondResult
	require.NoError(t, json.Unmarshal(result, &response))
	assert.True(t, response.Available)
	assert.Equal(t, "custom", response.OptParam)
	assert.Equal(t, ops.RespondResultURI, response.ResultURI)
	assert.NotEmpty(t, fexec.GetReqId())
}

func TestExecuteKeepsSuppliedRequestId(t *testing.T) {
	rt := &testRuntime{
		flowName: "proto-respond-chain",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("proto-respond")
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{
		Data:      []byte(`{"strValue": "abc"}`),
		RequestId: "req-fixed",
	})
	require.NoError(t, err)
	assert.Equal(t, "req-fixed", fexec.GetReqId())
}

func TestExecuteModifierAndContext(t *testing.T) {
	var stashed string
	rt := &testRuntime{
		flowName: "proto-stash",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.
				Modify(func(data []byte) ([]byte, error) {
					if err := context.Set("raw", data); err != nil {
						return nil, err
					}
					return data, nil
				}).
				Apply("proto-check").
				Modify(func(data []byte) ([]byte, error) {
					raw, err := context.GetBytes("raw")
					if err != nil {
						return nil, err
					}
					stashed = string(raw)
					return data, nil
				})
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{"strValue": "doc"}`)})
	require.NoError(t, err)
	assert.Equal(t, `{"strValue": "doc"}`, stashed)
}

func TestExecuteRetriesFunction(t *testing.T) {
	attempts := 0
	registry := ops.NewRegistry()
	registry.Register("flaky", ops.BaseProfile, func(data []byte) ([]byte, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("transient failure")
		}
		return data, nil
	})

	rt := &testRuntime{
		flowName: "proto-retry",
		invoker:  registry,
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("flaky", protoflow.Retry(3, time.Millisecond))
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecuteFailureHandlers(t *testing.T) {
	finallyState := ""
	rt := &testRuntime{
		flowName: "proto-failing",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.
				Modify(func(data []byte) ([]byte, error) {
					return nil, fmt.Errorf("document is not available")
				}).
				OnFailure(func(err error) ([]byte, error) {
					return []byte(`{"error": "handled"}`), nil
				}).
				Finally(func(state string) {
					finallyState = state
				})
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	result, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "handled"}`, string(result))
	assert.Equal(t, sdk.StateFailure, finallyState)
}

func TestExecuteFinallyOnSuccess(t *testing.T) {
	finallyState := ""
	rt := &testRuntime{
		flowName: "proto-finally",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.
				Apply("proto-respond").
				Finally(func(state string) {
					finallyState = state
				})
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{"strValue": "abc"}`)})
	require.NoError(t, err)
	assert.Equal(t, sdk.StateSuccess, finallyState)
}

func TestExecuteResumesFromCheckpoint(t *testing.T) {
	firstPhaseRuns := 0
	failSecond := true
	registry := ops.NewRegistry()
	registry.Register("stage-one", ops.BaseProfile, func(data []byte) ([]byte, error) {
		firstPhaseRuns++
		return []byte(`{"stage": 1}`), nil
	})
	registry.Register("stage-two", ops.BaseProfile, func(data []byte) ([]byte, error) {
		if failSecond {
			return nil, fmt.Errorf("stage two unavailable")
		}
		return data, nil
	})

	rt := &testRuntime{
		flowName:   "proto-resume",
		invoker:    registry,
		stateStore: store.NewInMemStateStore(),
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("stage-one").Checkpoint().Apply("stage-two")
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{}`), RequestId: "req-resume"})
	require.Error(t, err)
	require.Equal(t, 1, firstPhaseRuns)

	// a retry with the same request id picks up after the last
	// completed phase instead of re-running the first one
	failSecond = false
	fexec = executor.CreateFlowExecutor(rt)
	result, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{}`), RequestId: "req-resume"})
	require.NoError(t, err)
	assert.Equal(t, 1, firstPhaseRuns)
	assert.JSONEq(t, `{"stage": 1}`, string(result))
}

func TestExecuteRequestValidation(t *testing.T) {
	key := "test-key"
	data := []byte(`{"strValue": "abc"}`)
	sign := "sha1=" + hex.EncodeToString(hmac.Sign(data, []byte(key)))

	rt := &testRuntime{
		flowName:      "proto-validated",
		validate:      true,
		validationKey: key,
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("proto-respond")
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: data, AuthSignature: sign})
	require.NoError(t, err)

	fexec = executor.CreateFlowExecutor(rt)
	_, err = fexec.Execute(&executor.RawRequest{Data: data, AuthSignature: "sha1=deadbeef"})
	assert.Error(t, err)
}

func TestExecuteCallback(t *testing.T) {
	key := "callback-key"
	var gotBody []byte
	var gotSignature string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Hub-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rt := &testRuntime{
		flowName:      "proto-callback",
		validationKey: key,
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("proto-respond").Callback(server.URL)
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	result, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{"strValue": "abc"}`)})
	require.NoError(t, err)

	// callback passes the data through unchanged
	assert.Equal(t, string(result), string(gotBody))
	require.NoError(t, hmac.Validate(gotBody, gotSignature, key))
}

func TestExecuteQueryReachesContext(t *testing.T) {
	var mode string
	rt := &testRuntime{
		flowName: "proto-query",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			mode = context.Query.Get("mode")
			flow.Apply("proto-respond")
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{
		Data:  []byte(`{"strValue": "abc"}`),
		Query: "mode=html&verbose=true",
	})
	require.NoError(t, err)
	assert.Equal(t, "html", mode)
}

func TestExecuteUnknownFunctionFails(t *testing.T) {
	rt := &testRuntime{
		flowName: "proto-unknown",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			flow.Apply("proto-missing")
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{}`)})
	assert.Error(t, err)
}

func TestExecuteEmptyDefinitionFails(t *testing.T) {
	rt := &testRuntime{
		flowName: "proto-empty",
		definition: func(flow *protoflow.Workflow, context *protoflow.Context) error {
			return nil
		},
	}

	fexec := executor.CreateFlowExecutor(rt)
	_, err := fexec.Execute(&executor.RawRequest{Data: []byte(`{}`)})
	assert.Error(t, err)
}
