package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "protoflow",
	Short: "Protoflow document pipeline runner",
	Long:  `Protoflow runs the document processing flows locally`,
}

// init initializes configuration defaults and registers commands
func init() {
	viper.SetEnvPrefix("PROTOFLOW")
	viper.AutomaticEnv()

	viper.SetDefault("state_store_path", "")
	viper.SetDefault("trace_server", "")
	viper.SetDefault("enable_tracing", false)
	viper.SetDefault("callback_key", "")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
