package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dschultz0/protoflow/executor"
	"github.com/dschultz0/protoflow/flows"
	"github.com/dschultz0/protoflow/ops"
	"github.com/dschultz0/protoflow/runtime"
	"github.com/dschultz0/protoflow/store"
)

var runInput string

var runCmd = &cobra.Command{
	Use:   "run <flow>",
	Short: "Run a flow with a JSON request",
	Long:  `Runs the named flow in process and prints the pipeline result`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		definition, err := flows.Get(args[0])
		if err != nil {
			return err
		}

		data, err := readInput(runInput)
		if err != nil {
			return fmt.Errorf("failed to read request, error %v", err)
		}

		rt := &runtime.LocalRuntime{
			FlowName:      args[0],
			Definition:    runtime.FlowDefinition(definition),
			Invoker:       ops.DefaultRegistry(),
			ValidationKey: viper.GetString("callback_key"),
			EnableTracing: viper.GetBool("enable_tracing"),
			TraceServer:   viper.GetString("trace_server"),
		}

		if path := viper.GetString("state_store_path"); path != "" {
			boltStore, err := store.NewBoltStateStore(path)
			if err != nil {
				return fmt.Errorf("failed to open state store %s, error %v", path, err)
			}
			defer boltStore.Close()
			rt.StateStore = boltStore
		}

		fexec := executor.CreateFlowExecutor(rt)
		result, err := fexec.Execute(&executor.RawRequest{Data: data})
		if err != nil {
			return fmt.Errorf("failed to execute flow %s, error %v", args[0], err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(result))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "-", "request JSON file, - reads stdin")
}

// readInput reads the request body from a file or stdin
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
