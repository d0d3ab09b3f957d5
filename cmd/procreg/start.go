package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spachava753/procreg/internal/catalog"
	"github.com/spachava753/procreg/internal/models"
)

var startAll bool

var startCmd = &cobra.Command{
	Use:   "start <category> [name]",
	Short: "Start a catalog entry on the remote service",
	Long: `Start a catalog entry and wait for the remote service to confirm it.

Exits non-zero if any started instance ends up in the error state.

Examples:
  procreg start vector HNSW
  procreg start --all key_value`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startAll, "all", false, "start every entry of the category")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	switch {
	case startAll && len(args) != 1:
		return fmt.Errorf("--all takes only a category")
	case !startAll && len(args) != 2:
		return fmt.Errorf("expected <category> <name>")
	}

	category, err := models.ParseCategory(args[0])
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var ids []string
	if startAll {
		ids, err = reg.StartCategory(ctx, category)
	} else {
		var id string
		id, err = reg.Start(ctx, category, args[1])
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err != nil && len(ids) == 0 {
		return withAvailable(reg.Catalog(), category, err)
	}

	// Started instances keep running remotely even if we stop waiting.
	if werr := reg.Wait(ctx); werr != nil {
		return fmt.Errorf("waiting for start confirmation: %w", werr)
	}

	started := make([]models.ProcessInstance, 0, len(ids))
	for _, id := range ids {
		if inst, ok := reg.Get(id); ok {
			started = append(started, inst)
		}
	}
	if perr := printInstances(cmd.OutOrStdout(), started); perr != nil {
		return perr
	}

	if err != nil {
		return err
	}
	if anyFailed(started) {
		return errInstancesFailed
	}
	return nil
}

// withAvailable lists the entries of category when err is an unknown entry.
func withAvailable(cat *catalog.Catalog, category models.Category, err error) error {
	if !models.IsType(err, models.ErrUnknownEntry) {
		return err
	}
	entries := cat.ListByCategory(category)
	if len(entries) == 0 {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return fmt.Errorf("%w (available in %s: %s)", err, category, strings.Join(names, ", "))
}
