package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/report"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/storage"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

var (
	historyFrom   string
	historyTo     string
	historyShow   string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived reports",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "First day to list (YYYY-MM-DD); defaults to 29 days before --to")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "Last day to list (YYYY-MM-DD); defaults to today")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "Print the archived report with this id")
	historyCmd.Flags().StringVar(&historyFormat, "format", "md", "Output format for --show: md, csv, json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	now := time.Now()

	e, err := loadEnv()
	if err != nil {
		exitRuntime(err)
	}
	dr, err := timecalc.ParseRange(historyFrom, historyTo, e.loc, now)
	if err != nil {
		exitUsage(err)
	}

	base, err := storage.BaseDir()
	if err != nil {
		exitRuntime(err)
	}

	if historyShow != "" {
		snap, ok, err := storage.Find(base, historyShow, dr.Start, dr.End)
		if err != nil {
			exitRuntime(err)
		}
		if !ok {
			exitUsage(fmt.Errorf("no archived report %q between %s and %s", historyShow,
				dr.Start.Format(timecalc.DateLayout), dr.End.Format(timecalc.DateLayout)))
		}
		rep, err := report.Decode(snap.Kind, snap.Report)
		if err != nil {
			exitRuntime(err)
		}
		if err := render(os.Stdout, historyFormat, rep); err != nil {
			exitUsage(err)
		}
		return nil
	}

	snaps, err := storage.LoadRange(base, dr.Start, dr.End)
	if err != nil {
		exitRuntime(err)
	}
	printHistory(os.Stdout, snaps, e.loc)
	return nil
}

// printHistory groups snapshots by day and prints one line per report.
func printHistory(w io.Writer, snaps []model.Snapshot, loc *time.Location) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No archived reports found.")
		return
	}

	var currentDay string
	for _, s := range snaps {
		at := s.GeneratedAt.In(loc)
		day := at.Format(timecalc.DateLayout)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		ws := s.Filters.WorkspaceID
		if ws == "" {
			ws = "(none)"
		}
		fmt.Fprintf(w, "  %s  %-12s %s  %s\n", at.Format("15:04"), s.Kind, ws, s.ID)
	}
}
