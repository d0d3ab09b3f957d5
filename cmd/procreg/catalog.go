package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spachava753/procreg/internal/models"
)

var catalogCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the processes that can be started",
	Long: `List catalog entries grouped by category.

Examples:
  procreg catalog
  procreg catalog --category vector
  procreg catalog --category key-value`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "only list entries of this category")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	categories := cat.Categories()
	if catalogCategory != "" {
		c, err := models.ParseCategory(catalogCategory)
		if err != nil {
			return err
		}
		categories = []models.Category{c}
	}

	out := cmd.OutOrStdout()
	for i, c := range categories {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%s)\n", c.Label(), c)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, e := range cat.ListByCategory(c) {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", e.Name, e.Description, e.LaunchRef)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
