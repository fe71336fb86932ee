package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func syncCmd(a *app) *cobra.Command {
	var pull bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push local state to the cloud now",
		Long: `Push local state to the cloud, or with --pull replace local collections
with every non-empty collection stored in the cloud.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLocal()
			if err != nil {
				return err
			}
			if pull {
				if err := l.syncer.LoadInitial(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(color.Output, "%s pulled %d tasks\n", color.GreenString("✓"), len(l.store.Snapshot().Tasks))
				return nil
			}
			if err := l.syncer.SyncNow(cmd.Context()); err != nil {
				return err
			}
			st := l.syncer.Status()
			at := "-"
			if st.LastSync != nil {
				at = st.LastSync.Local().Format(time.DateTime)
			}
			fmt.Fprintf(color.Output, "%s synced at %s\n", color.GreenString("✓"), at)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pull, "pull", false, "pull instead of push")
	return cmd
}
