package main

import (
	"github.com/spf13/cobra"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List processes known to the remote service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		if err := reg.Refresh(cmd.Context()); err != nil {
			return err
		}
		return printInstances(cmd.OutOrStdout(), reg.ListAll())
	},
}

func init() {
	rootCmd.AddCommand(psCmd)
}
