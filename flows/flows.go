// Package flows defines the prototype document pipelines. Data flows
// through each chain as JSON, the request context carries values that
// later steps need back.
package flows

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	protoflow "github.com/dschultz0/protoflow"
	"github.com/dschultz0/protoflow/ops"
)

// Definition builds a pipeline on the given workflow
type Definition func(flow *protoflow.Workflow, context *protoflow.Context) error

// Simple checks a document and responds with its result location.
// Unavailable documents fail the request.
func Simple(flow *protoflow.Workflow, context *protoflow.Context) error {
	flow.
		Modify(func(data []byte) ([]byte, error) {
			// keep the original request for the responder
			if err := context.Set("request", data); err != nil {
				return nil, err
			}
			return data, nil
		}).
		Apply("proto-check", protoflow.Retry(2, 100*time.Millisecond)).
		Modify(func(data []byte) ([]byte, error) {
			result := ops.CheckResult{}
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, fmt.Errorf("failed to decode check result, error %v", err)
			}
			if !result.Available {
				return nil, fmt.Errorf("document is not available")
			}
			if err := context.Set("mode", result.Mode); err != nil {
				return nil, err
			}
			request, err := context.GetBytes("request")
			if err != nil {
				return nil, fmt.Errorf("failed to retrive request from state, error %v", err)
			}
			return request, nil
		}).
		Apply("proto-respond").
		OnFailure(func(err error) ([]byte, error) {
			log.Printf("Failed to respond for request id %s, error %v",
				context.GetRequestId(), err)
			errdata := fmt.Sprintf("{\"error\": \"%s\"}", err.Error())
			return []byte(errdata), err
		})

	// deliver the response out of band when the caller asks for it
	if cburl := context.Query.Get("callback"); cburl != "" {
		flow.Callback(cburl, protoflow.Header("X-Flow", "proto-simple"))
	}

	return nil
}

// Basic runs the longer prototype pipeline: check, respond, render,
// analysis job and scoring, checkpointing between the stages.
func Basic(flow *protoflow.Workflow, context *protoflow.Context) error {
	flow.
		Modify(func(data []byte) ([]byte, error) {
			if err := context.Set("request", data); err != nil {
				return nil, err
			}
			return data, nil
		}).
		Apply("proto-check", protoflow.Retry(2, 100*time.Millisecond)).
		Modify(func(data []byte) ([]byte, error) {
			result := ops.CheckResult{}
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, fmt.Errorf("failed to decode check result, error %v", err)
			}
			if err := context.Set("available", result.Available); err != nil {
				return nil, err
			}
			return context.GetBytes("request")
		}).
		Apply("proto-respond").
		Checkpoint().
		Modify(func(data []byte) ([]byte, error) {
			return context.GetBytes("request")
		}).
		Apply("proto-render").
		Modify(func(data []byte) ([]byte, error) {
			result := ops.RenderResult{}
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, fmt.Errorf("failed to decode render result, error %v", err)
			}
			if err := context.Set("resultURI", result.ResultURI); err != nil {
				return nil, err
			}
			return context.GetBytes("request")
		}).
		Checkpoint().
		Apply("proto-start-job").
		Apply("proto-job-result").
		Modify(func(data []byte) ([]byte, error) {
			return context.GetBytes("request")
		}).
		Apply("proto-score").
		OnFailure(func(err error) ([]byte, error) {
			log.Printf("Failed to process document for request id %s, error %v",
				context.GetRequestId(), err)
			errdata := fmt.Sprintf("{\"error\": \"%s\"}", err.Error())
			return []byte(errdata), err
		}).
		Finally(func(state string) {
			log.Printf("Finished request id %s with state %s",
				context.GetRequestId(), state)
		})

	return nil
}

// definitions the flows available by name
var definitions = map[string]Definition{
	"proto-simple": Simple,
	"proto-basic":  Basic,
}

// Get returns a flow definition by name
func Get(name string) (Definition, error) {
	definition, ok := definitions[name]
	if !ok {
		return nil, fmt.Errorf("flow %s is not defined", name)
	}
	return definition, nil
}

// Names lists the defined flow names
func Names() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
