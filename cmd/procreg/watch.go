package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spachava753/procreg/internal/models"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow remote process changes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		interval := watchInterval
		if !cmd.Flags().Changed("interval") {
			interval = cfg.Refresh.Interval()
		}

		w := &changeWriter{out: cmd.OutOrStdout(), now: time.Now}
		return reg.Poll(cmd.Context(), interval, w.update)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "refresh interval (default from refresh.interval_sec)")
	rootCmd.AddCommand(watchCmd)
}

// changeWriter prints the difference between consecutive snapshots.
type changeWriter struct {
	out  io.Writer
	now  func() time.Time
	last map[string]models.ProcessInstance
}

func (c *changeWriter) update(instances []models.ProcessInstance) {
	ts := c.now().Format(time.TimeOnly)
	next := make(map[string]models.ProcessInstance, len(instances))

	for _, inst := range instances {
		next[inst.ID] = inst
		prev, seen := c.last[inst.ID]
		switch {
		case !seen:
			fmt.Fprintf(c.out, "%s + %s %s/%s %s\n", ts, inst.ID, inst.Category, inst.Name, inst.Status)
		case prev.Status != inst.Status:
			fmt.Fprintf(c.out, "%s ~ %s %s -> %s\n", ts, inst.ID, prev.Status, inst.Status)
		}
	}
	for id, prev := range c.last {
		if _, ok := next[id]; !ok {
			fmt.Fprintf(c.out, "%s - %s %s/%s\n", ts, id, prev.Category, prev.Name)
		}
	}

	c.last = next
}
