package ops

import (
	"fmt"
	"sort"
)

// Handler the byte level contract of a registered function
type Handler func(data []byte) ([]byte, error)

// Profile the execution profile a function gets deployed with
type Profile struct {
	TimeoutMinutes int
	MemoryMB       int
}

// Execution profiles of the prototype launchers
var (
	BaseProfile       = Profile{TimeoutMinutes: 1, MemoryMB: 1}
	HighMemoryProfile = Profile{TimeoutMinutes: 15, MemoryMB: 10}
)

// Registry maps deployed function names to their handlers
type Registry struct {
	handlers map[string]Handler
	profiles map[string]Profile
}

func NewRegistry() *Registry {
	registry := &Registry{}
	registry.handlers = make(map[string]Handler)
	registry.profiles = make(map[string]Profile)
	return registry
}

// Register adds a function under its deployed name
func (registry *Registry) Register(name string, profile Profile, handler Handler) {
	registry.handlers[name] = handler
	registry.profiles[name] = profile
}

// Invoke runs a registered function by name, implements the
// FunctionInvoker contract of the workflow operations. The params
// of the calling operation are accepted for contract compatibility,
// the stub functions take all their input from the request body.
func (registry *Registry) Invoke(function string, data []byte, param map[string][]string) ([]byte, error) {
	handler, ok := registry.handlers[function]
	if !ok {
		return nil, fmt.Errorf("function %s is not registered", function)
	}
	return handler(data)
}

// ProfileOf returns the execution profile of a registered function
func (registry *Registry) ProfileOf(function string) (Profile, error) {
	profile, ok := registry.profiles[function]
	if !ok {
		return Profile{}, fmt.Errorf("function %s is not registered", function)
	}
	return profile, nil
}

// Functions lists the registered function names in order
func (registry *Registry) Functions() []string {
	names := make([]string, 0, len(registry.handlers))
	for name := range registry.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with every prototype
// operation registered under its deployed function name
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register("proto-respond", BaseProfile, respondHandler)
	registry.Register("proto-check", BaseProfile, checkHandler)
	registry.Register("proto-render", BaseProfile, renderHandler)
	registry.Register("proto-preview", HighMemoryProfile, previewHandler)
	registry.Register("proto-thumbnail", BaseProfile, thumbnailHandler)
	registry.Register("proto-extract", BaseProfile, extractHandler)
	registry.Register("proto-start-job", BaseProfile, startJobHandler)
	registry.Register("proto-job-result", BaseProfile, jobResultHandler)
	registry.Register("proto-parse", HighMemoryProfile, parseHandler)
	registry.Register("proto-image", HighMemoryProfile, imageHandler)
	registry.Register("proto-merge", BaseProfile, mergeHandler)
	registry.Register("proto-score", BaseProfile, scoreHandler)
	return registry
}
