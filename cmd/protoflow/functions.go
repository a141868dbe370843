package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dschultz0/protoflow/flows"
	"github.com/dschultz0/protoflow/ops"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the deployed functions and flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := ops.DefaultRegistry()
		for _, name := range registry.Functions() {
			profile, err := registry.ProfileOf(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s timeout %dm memory %dMB\n",
				name, profile.TimeoutMinutes, profile.MemoryMB)
		}
		for _, name := range flows.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s flow\n", name)
		}
		return nil
	},
}
