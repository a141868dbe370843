// Package ops provides the prototype document operations and their
// function registry. Every operation is a stub: it returns fixed
// placeholder results referencing static storage locations, so flows
// can be exercised end to end without any backing infrastructure.
package ops

import (
	"encoding/json"
	"fmt"
)

const (
	// DefaultOptParam substituted when the request carries no optParam
	DefaultOptParam = "defaultValue"
	// RespondResultURI the placeholder result location of the responder
	RespondResultURI = "s3://mybucket/XXXXX.pdf"
)

// RespondInput the caller supplied record passed to the responder
type RespondInput struct {
	StrValue string `json:"strValue"`
	OptParam string `json:"optParam,omitempty"`
}

// RespondResult the record returned by the responder
type RespondResult struct {
	Available bool   `json:"available"`
	OptParam  string `json:"optParam"`
	ResultURI string `json:"resultURI"`
}

// Respond maps a request to the stub response. The strValue field is
// read but never used, an absent or empty optParam falls back to
// DefaultOptParam. Respond performs no validation and cannot fail.
func Respond(in RespondInput) RespondResult {
	optParam := in.OptParam
	if optParam == "" {
		optParam = DefaultOptParam
	}
	return RespondResult{
		Available: true,
		OptParam:  optParam,
		ResultURI: RespondResultURI,
	}
}

// respondHandler byte level adapter for Respond
func respondHandler(data []byte) ([]byte, error) {
	var in RespondInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode respond input, error %v", err)
	}
	return json.Marshal(Respond(in))
}
