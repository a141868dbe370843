package sdk

// Phase holds the operations executed back to back at one
// pipeline position, each feeding its result to the next
type Phase struct {
	Operations []Operation `json:"-"`
}

func CreateExecutionPhase() *Phase {
	phase := &Phase{}
	phase.Operations = make([]Operation, 0)
	return phase
}

func (phase *Phase) AddOperation(operation Operation) {
	phase.Operations = append(phase.Operations, operation)
}

func (phase *Phase) GetOperations() []Operation {
	return phase.Operations
}
