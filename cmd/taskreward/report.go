package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"taskreward/internal/reward"
	"taskreward/internal/store"
)

func reportCmd(a *app) *cobra.Command {
	var limit int
	var all bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print rewards, open tasks and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLocal()
			if err != nil {
				return err
			}
			writeReport(color.Output, l.store.Snapshot(), limit, all)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "activity entries to show")
	cmd.Flags().BoolVar(&all, "all", false, "include completed tasks")
	return cmd
}

func writeReport(w io.Writer, snap store.Snapshot, limit int, all bool) {
	bold := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintln(w, "Rewards")
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("points", snap.Rewards.Points)
	tbl.AddRow("minutes", snap.Rewards.Minutes)
	tbl.AddRow("rubles", snap.Rewards.Rubles)
	_, _ = fmt.Fprintln(w, tbl)

	_, _ = bold.Fprintln(w, "\nTasks")
	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow("", "TITLE", "REWARD", "PRIORITY", "SCHEDULED")
	shown := 0
	for _, t := range snap.Tasks {
		if t.Completed && !all {
			continue
		}
		mark := color.YellowString("○")
		if t.Completed {
			mark = color.GreenString("✓")
		}
		sched := "-"
		if t.ScheduledDate != nil {
			sched = t.ScheduledDate.Format(time.DateOnly)
		}
		tbl.AddRow(mark, t.Title, reward.Signed(t.RewardType, t.RewardAmount), fmt.Sprintf("P%d", t.Priority), sched)
		shown++
	}
	if shown == 0 {
		_, _ = faint.Fprintln(w, "no tasks")
	} else {
		_, _ = fmt.Fprintln(w, tbl)
	}

	_, _ = bold.Fprintln(w, "\nActivity")
	entries := snap.ActivityLog.Newest(limit)
	if len(entries) == 0 {
		_, _ = faint.Fprintln(w, "no activity")
		return
	}
	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, e := range entries {
		tbl.AddRow(faint.Sprint(e.Timestamp.Local().Format(time.DateTime)), e.Action, e.Description)
	}
	_, _ = fmt.Fprintln(w, tbl)

	if snap.Dirty {
		_, _ = fmt.Fprintln(w, color.YellowString("\nunsynced changes"))
	}
}
