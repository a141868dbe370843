package sdk

// Operation is one executable unit inside a pipeline phase
type Operation interface {
	// GetId returns the identifier of the operation
	GetId() string
	// GetProperties returns the properties of the operation
	GetProperties() map[string][]string
	// Execute executes the operation against the data with runtime options
	Execute(data []byte, option map[string]interface{}) ([]byte, error)
}
