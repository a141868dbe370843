package protoflow

import (
	"testing"
	"time"
)

func TestWorkflowCreate(t *testing.T) {
	flow := NewWorkflow("proto-simple")
	if flow == nil {
		t.Errorf("Creating workflow: got %v", flow)
		t.Fail()
	}
	if flow.GetPipeline().Name != "proto-simple" {
		t.Errorf("Workflow name: got %s", flow.GetPipeline().Name)
		t.Fail()
	}
}

func TestApply(t *testing.T) {
	flow := NewWorkflow("proto-simple")
	flow.Apply("proto-check").Apply("proto-respond", Query("mode", "html"))

	pipeline := flow.GetPipeline()
	if pipeline.CountPhases() != 1 {
		t.Errorf("Apply should share a phase, got %d phases", pipeline.CountPhases())
		t.Fail()
	}
	if pipeline.CountOperations() != 2 {
		t.Errorf("Expected 2 operations, got %d", pipeline.CountOperations())
		t.Fail()
	}
}

func TestApplyWithCheckpoint(t *testing.T) {
	flow := NewWorkflow("proto-basic")
	flow.Apply("proto-check").
		Checkpoint().
		Apply("proto-render").
		Checkpoint().
		Apply("proto-extract")

	pipeline := flow.GetPipeline()
	if pipeline.CountPhases() != 3 {
		t.Errorf("Expected 3 phases, got %d", pipeline.CountPhases())
		t.Fail()
	}
}

func TestApplyRetryOption(t *testing.T) {
	flow := NewWorkflow("proto-simple")
	flow.Apply("proto-check", Retry(2, 10*time.Millisecond))

	operation := flow.GetPipeline().GetLastPhase().GetOperations()[0]
	stepOp, ok := operation.(*StepOperation)
	if !ok {
		t.Errorf("Expected a StepOperation, got %T", operation)
		t.Fail()
		return
	}
	if stepOp.RetryCount != 2 || stepOp.RetryInterval != 10*time.Millisecond {
		t.Errorf("Retry option not applied, got count %d interval %v",
			stepOp.RetryCount, stepOp.RetryInterval)
		t.Fail()
	}
}

func TestModifyAndCallback(t *testing.T) {
	flow := NewWorkflow("proto-simple")
	flow.Modify(BLANK_MODIFIER).
		Apply("proto-check").
		Callback("http://store.local/hook", Header("X-Source", "protoflow"))

	pipeline := flow.GetPipeline()
	if pipeline.CountOperations() != 3 {
		t.Errorf("Expected 3 operations, got %d", pipeline.CountOperations())
		t.Fail()
	}

	operations := pipeline.GetLastPhase().GetOperations()
	callback := operations[len(operations)-1].(*StepOperation)
	if callback.CallbackUrl != "http://store.local/hook" {
		t.Errorf("Callback url not set, got %s", callback.CallbackUrl)
		t.Fail()
	}
	if callback.Header["X-Source"] != "protoflow" {
		t.Errorf("Callback header not set, got %v", callback.Header)
		t.Fail()
	}
}

func TestCallbackOperationId(t *testing.T) {
	cases := []struct {
		url string
		id  string
	}{
		{"http://store.local/document/hook", "callback-ocument/hook"},
		{"http://x/cb", "callback-http://x/cb"},
	}
	for _, c := range cases {
		flow := NewWorkflow("proto-simple")
		flow.Callback(c.url)

		operation := flow.GetPipeline().GetLastPhase().GetOperations()[0]
		if operation.GetId() != c.id {
			t.Errorf("Callback id for %s: expected %s, got %s", c.url, c.id, operation.GetId())
			t.Fail()
		}
	}
}

func TestMakeDotGraph(t *testing.T) {
	flow := NewWorkflow("proto-basic")
	flow.Apply("proto-check").Checkpoint().Apply("proto-render")

	graph := flow.GetPipeline().MakeDotGraph()
	if graph == "" {
		t.Errorf("Failed to build dot graph, got empty graph")
		t.Fail()
	}
}
