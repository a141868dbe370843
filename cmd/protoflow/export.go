package main

import (
	"fmt"

	"github.com/spf13/cobra"

	protoflow "github.com/dschultz0/protoflow"
	"github.com/dschultz0/protoflow/executor"
	"github.com/dschultz0/protoflow/flows"
)

var exportCmd = &cobra.Command{
	Use:   "export <flow>",
	Short: "Export a flow as a dot graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		definition, err := flows.Get(args[0])
		if err != nil {
			return err
		}

		flow := protoflow.NewWorkflow(args[0])
		context := executor.BuildContext(args[0], "export")
		if err := definition(flow, context); err != nil {
			return fmt.Errorf("failed to build flow %s, error %v", args[0], err)
		}

		fmt.Fprint(cmd.OutOrStdout(), flow.GetPipeline().MakeDotGraph())
		return nil
	},
}
