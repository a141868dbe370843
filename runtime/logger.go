// Package runtime carries the platform glue of the flow executor:
// structured logging, trace reporting, the local runtime and the
// adapter for the Lambda programming model.
package runtime

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// FlowLogger logs executor output with flow and request fields
type FlowLogger struct {
	log zerolog.Logger
}

// Configure the Logger with flow name and request ID
func (logger *FlowLogger) Configure(flowName string, requestId string) {
	logger.log = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("flow", flowName).
		Str("request", requestId).
		Logger()
}

// Init initialize the Logger (called only once in a request span)
func (logger *FlowLogger) Init() error {
	return nil
}

// Log logs a flow log
func (logger *FlowLogger) Log(str string) {
	logger.log.Info().Msg(strings.TrimRight(str, "\n"))
}
