package sdk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PipelineErrorHandler the error handler OnFailure() registration on pipeline
type PipelineErrorHandler func(error) ([]byte, error)

// PipelineHandler definition for the Finally() registration on pipeline
type PipelineHandler func(string)

type Pipeline struct {
	Name string `json:"name"` // The name of the pipeline

	Phases            []*Phase `json:"-"`        // Phases that will be executed in order
	ExecutionPosition int      `json:"position"` // Position of Executor

	FailureHandler PipelineErrorHandler `json:"-"`
	Finally        PipelineHandler      `json:"-"`
}

func CreatePipeline(name string) *Pipeline {
	pipeline := &Pipeline{}
	pipeline.Name = name
	pipeline.Phases = make([]*Phase, 0)
	pipeline.ExecutionPosition = 0
	return pipeline
}

func (pipeline *Pipeline) CountPhases() int {
	return len(pipeline.Phases)
}

func (pipeline *Pipeline) AddPhase(phase *Phase) {
	pipeline.Phases = append(pipeline.Phases, phase)
}

func (pipeline *Pipeline) GetCurrentPhase() *Phase {
	if pipeline.ExecutionPosition < len(pipeline.Phases) {
		return pipeline.Phases[pipeline.ExecutionPosition]
	}
	return nil
}

func (pipeline *Pipeline) IsLastPhase() bool {
	return (len(pipeline.Phases) - 1) == pipeline.ExecutionPosition
}

func (pipeline *Pipeline) GetLastPhase() *Phase {
	phaseCount := len(pipeline.Phases)
	return pipeline.Phases[phaseCount-1]
}

func (pipeline *Pipeline) UpdateExecutionPosition() {
	pipeline.ExecutionPosition = pipeline.ExecutionPosition + 1
}

// CountOperations counts the operations across all phases
func (pipeline *Pipeline) CountOperations() int {
	count := 0
	for _, phase := range pipeline.Phases {
		count = count + len(phase.Operations)
	}
	return count
}

// GetState returns the encoded execution state of the pipeline
func (pipeline *Pipeline) GetState() string {
	temp := *pipeline
	temp.Phases = nil
	encode, _ := json.Marshal(&temp)
	return string(encode)
}

// ApplyState applies an encoded execution state to the pipeline
func (pipeline *Pipeline) ApplyState(state string) {
	var temp Pipeline
	json.Unmarshal([]byte(state), &temp)
	pipeline.ExecutionPosition = temp.ExecutionPosition
	pipeline.Name = temp.Name
}

// MakeDotGraph create a dot graph of the pipeline
func (pipeline *Pipeline) MakeDotGraph() string {
	var sb strings.Builder
	sb.WriteString("digraph depgraph {\n\trankdir=LR;\n")
	for index, phase := range pipeline.Phases {
		operationTypes := ""
		for _, operation := range phase.Operations {
			props := operation.GetProperties()
			switch {
			case hasProperty(props, "isFunction"):
				operationTypes += " func:" + operation.GetId()
			case hasProperty(props, "isCallback"):
				operationTypes += " callback:" + operation.GetId()
			default:
				operationTypes += " modifier"
			}
		}
		sb.WriteString(fmt.Sprintf("\t\"phase-%d\" [label=\"%s\"];\n", index+1, operationTypes))
		if index < len(pipeline.Phases)-1 {
			sb.WriteString(fmt.Sprintf("\t\"phase-%d\" -> \"phase-%d\";\n", index+1, index+2))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func hasProperty(props map[string][]string, key string) bool {
	values, ok := props[key]
	if !ok || len(values) == 0 {
		return false
	}
	return values[0] == "true"
}
