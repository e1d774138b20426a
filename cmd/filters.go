package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

// filterFlags are the report filter flags shared by report and export.
type filterFlags struct {
	workspace       string
	boards          string
	members         string
	from            string
	to              string
	includeArchived bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.workspace, "workspace", "", "Workspace id (default from config)")
	cmd.Flags().StringVar(&f.boards, "boards", "", "Comma-separated board ids (default: all boards)")
	cmd.Flags().StringVar(&f.members, "members", "", "Comma-separated member ids")
	cmd.Flags().StringVar(&f.from, "from", "", "Start date (YYYY-MM-DD); defaults to 29 days before --to")
	cmd.Flags().StringVar(&f.to, "to", "", "End date (YYYY-MM-DD); defaults to today")
	cmd.Flags().BoolVar(&f.includeArchived, "include-archived", false, "Include archived cards")
}

// build resolves the flags into filters. defaultWorkspace fills an empty
// --workspace.
func (f *filterFlags) build(defaultWorkspace string, loc *time.Location, now time.Time) (model.ReportFilters, error) {
	dr, err := timecalc.ParseRange(f.from, f.to, loc, now)
	if err != nil {
		return model.ReportFilters{}, err
	}
	ws := f.workspace
	if ws == "" {
		ws = defaultWorkspace
	}
	return model.ReportFilters{
		WorkspaceID:     ws,
		BoardIDs:        model.SplitIDs(f.boards),
		MemberIDs:       model.SplitIDs(f.members),
		DateRange:       dr,
		IncludeArchived: f.includeArchived,
	}, nil
}
