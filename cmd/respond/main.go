package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/dschultz0/protoflow/ops"
	"github.com/dschultz0/protoflow/runtime"
)

// Lambda entrypoint for the responder function
func main() {
	lambda.Start(runtime.FunctionHandler(ops.DefaultRegistry(), "proto-respond"))
}
