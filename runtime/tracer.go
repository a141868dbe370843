package runtime

import (
	"fmt"
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/uber/jaeger-client-go"
	"github.com/uber/jaeger-client-go/config"
)

// TraceHandler reports request and phase spans to a jaeger agent,
// implements the executor EventHandler
type TraceHandler struct {
	traceServer string
	flowName    string

	tracer opentracing.Tracer
	closer io.Closer

	reqSpan    opentracing.Span
	reqSpanCtx opentracing.SpanContext

	phaseSpans     map[int]opentracing.Span
	operationSpans map[string]opentracing.Span
}

// NewTraceHandler creates a trace handler reporting to the given agent
func NewTraceHandler(traceServer string) *TraceHandler {
	if traceServer == "" {
		traceServer = "jaegertracing:5775"
	}
	return &TraceHandler{traceServer: traceServer}
}

// Configure the EventHandler with flow name and request ID
func (handler *TraceHandler) Configure(flowName string, requestId string) {
	handler.flowName = flowName
}

// Init initialize the trace with configuration (called only once in a request span)
func (handler *TraceHandler) Init() error {
	cfg := config.Configuration{
		ServiceName: handler.flowName,
		Sampler: &config.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &config.ReporterConfig{
			LogSpans:            true,
			BufferFlushInterval: 1 * time.Second,
			LocalAgentHostPort:  handler.traceServer,
		},
	}

	opentracer, traceCloser, err := cfg.NewTracer(
		config.Logger(jaeger.StdLogger),
	)
	if err != nil {
		return fmt.Errorf("failed to init tracer, error %v", err)
	}

	handler.closer = traceCloser
	handler.tracer = opentracer
	handler.phaseSpans = make(map[int]opentracing.Span)
	handler.operationSpans = make(map[string]opentracing.Span)

	return nil
}

// ReportRequestStart report a start of request
func (handler *TraceHandler) ReportRequestStart(requestId string) {
	handler.reqSpan = handler.tracer.StartSpan(requestId)
	handler.reqSpan.SetTag("request", requestId)
	handler.reqSpanCtx = handler.reqSpan.Context()
}

// ReportRequestEnd reports an end of request
func (handler *TraceHandler) ReportRequestEnd(requestId string) {
	if handler.reqSpan == nil {
		return
	}
	handler.reqSpan.Finish()
}

// ReportRequestFailure reports a failure of a request with error
func (handler *TraceHandler) ReportRequestFailure(requestId string, err error) {
	if handler.reqSpan == nil {
		return
	}
	ext.Error.Set(handler.reqSpan, true)
	handler.reqSpan.SetTag("error.message", err.Error())
	handler.reqSpan.Finish()
}

// ReportPhaseStart report a start of a phase execution
func (handler *TraceHandler) ReportPhaseStart(phase int, requestId string) {
	span := handler.tracer.StartSpan(
		fmt.Sprintf("phase-%d", phase), opentracing.ChildOf(handler.reqSpanCtx))
	span.SetTag("request", requestId)
	span.SetTag("phase", phase)
	handler.phaseSpans[phase] = span
}

// ReportPhaseEnd report an end of a phase execution
func (handler *TraceHandler) ReportPhaseEnd(phase int, requestId string) {
	if span, ok := handler.phaseSpans[phase]; ok {
		span.Finish()
	}
}

// ReportPhaseFailure report a phase execution failure with error
func (handler *TraceHandler) ReportPhaseFailure(phase int, requestId string, err error) {
	span, ok := handler.phaseSpans[phase]
	if !ok {
		return
	}
	ext.Error.Set(span, true)
	span.SetTag("error.message", err.Error())
	span.Finish()
}

// ReportOperationStart reports start of an operation
func (handler *TraceHandler) ReportOperationStart(operationId string, phase int, requestId string) {
	parent := handler.reqSpanCtx
	if span, ok := handler.phaseSpans[phase]; ok {
		parent = span.Context()
	}
	span := handler.tracer.StartSpan(operationId, opentracing.ChildOf(parent))
	span.SetTag("request", requestId)
	span.SetTag("operation", operationId)
	handler.operationSpans[operationKey(operationId, phase)] = span
}

// ReportOperationEnd reports an end of an operation
func (handler *TraceHandler) ReportOperationEnd(operationId string, phase int, requestId string) {
	if span, ok := handler.operationSpans[operationKey(operationId, phase)]; ok {
		span.Finish()
	}
}

// ReportOperationFailure reports failure of an operation with error
func (handler *TraceHandler) ReportOperationFailure(operationId string, phase int, requestId string, err error) {
	span, ok := handler.operationSpans[operationKey(operationId, phase)]
	if !ok {
		return
	}
	ext.Error.Set(span, true)
	span.SetTag("error.message", err.Error())
	span.Finish()
}

// Flush flush all pending traces
func (handler *TraceHandler) Flush() {
	if handler.closer != nil {
		handler.closer.Close()
	}
}

func operationKey(operationId string, phase int) string {
	return fmt.Sprintf("%d-%s", phase, operationId)
}
