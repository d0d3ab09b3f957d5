package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spachava753/procreg/internal/models"
)

func printInstances(out io.Writer, instances []models.ProcessInstance) error {
	if len(instances) == 0 {
		_, err := fmt.Fprintln(out, "No processes running.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tNAME\tSTATUS\tDETAIL")
	for _, inst := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", inst.ID, inst.Category, inst.Name, inst.Status, inst.ErrorDetail)
	}
	return w.Flush()
}

func anyFailed(instances []models.ProcessInstance) bool {
	for _, inst := range instances {
		if inst.Status == models.StatusError {
			return true
		}
	}
	return false
}
