package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spachava753/procreg/internal/models"
)

var (
	stopCategory string
	stopParallel int
)

var stopCmd = &cobra.Command{
	Use:   "stop [id]",
	Short: "Stop a running process",
	Long: `Stop a process by instance id, or every process of a category.

Examples:
  procreg stop vector-HNSW-0b7c3d0e-5a7e-4c55-9d0f-3f1d1c2b9a4e
  procreg stop --category vector --parallel 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopCategory, "category", "", "stop every process of this category")
	stopCmd.Flags().IntVar(&stopParallel, "parallel", 4, "maximum concurrent stops with --category (0 = unlimited)")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	if (stopCategory == "") == (len(args) == 0) {
		return fmt.Errorf("give either an instance id or --category")
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	// The registry only knows about instances the remote reports.
	ctx := cmd.Context()
	if err := reg.Refresh(ctx); err != nil {
		return err
	}

	if stopCategory != "" {
		category, err := models.ParseCategory(stopCategory)
		if err != nil {
			return err
		}
		stopErr := reg.StopCategory(ctx, category, stopParallel)
		if perr := printInstances(cmd.OutOrStdout(), reg.ListAll()); perr != nil {
			return perr
		}
		return stopErr
	}

	id := args[0]
	if err := reg.Stop(ctx, id); err != nil {
		if inst, ok := reg.Get(id); ok {
			_ = printInstances(cmd.OutOrStdout(), []models.ProcessInstance{inst})
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stopped %s\n", id)
	return nil
}
