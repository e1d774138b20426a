package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

var (
	exportFilters filterFlags
	exportFormat  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cards a report would be computed from",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	now := time.Now()

	e, err := loadEnv()
	if err != nil {
		exitRuntime(err)
	}
	filters, err := exportFilters.build(e.cfg.Defaults.Workspace, e.loc, now)
	if err != nil {
		exitUsage(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := e.fetcher(ctx)
	if err != nil {
		exitRuntime(err)
	}
	cards, err := f.Cards(ctx, filters)
	if err != nil {
		exitRuntime(err)
	}
	e.logger.Debug("cards fetched", "count", len(cards))

	if err := printCards(os.Stdout, exportFormat, cards, e.loc); err != nil {
		exitUsage(err)
	}
	return nil
}

// printCards writes cards as csv (default), json or md.
func printCards(w io.Writer, format string, cards []model.Card, loc *time.Location) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cards, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		printCardList(w, cards, loc)
	case "csv", "":
		printCardCSV(w, cards)
	default:
		return fmt.Errorf("unknown format %q (want csv, json or md)", format)
	}
	return nil
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func memberNames(c model.Card) string {
	parts := make([]string, len(c.Members))
	for i, m := range c.Members {
		parts[i] = m.Name
	}
	return strings.Join(parts, "; ")
}

func printCardCSV(w io.Writer, cards []model.Card) {
	fmt.Fprintln(w, "id,title,list_id,author,members,created,due,completed,archived,approved,rejected,checklist_completed,checklist_total")
	for _, c := range cards {
		author := ""
		if c.Author != nil {
			author = c.Author.Name
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%s,%t,%t,%t,%t,%d,%d\n",
			csvEscape(c.ID),
			csvEscape(c.Title),
			csvEscape(c.ListID),
			csvEscape(author),
			csvEscape(memberNames(c)),
			c.CreatedAt.Format(time.RFC3339),
			optTime(c.DueDate),
			c.Completed, c.Archived, c.Approved, c.Rejected,
			c.ChecklistCompleted, c.ChecklistTotal,
		)
	}
}

// printCardList groups cards by creation date and prints them.
func printCardList(w io.Writer, cards []model.Card, loc *time.Location) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No cards found.")
		return
	}

	var currentDay string
	for _, c := range cards {
		day := c.CreatedAt.In(loc).Format(timecalc.DateLayout)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		state := "open"
		switch {
		case c.Completed:
			state = "done"
		case c.Archived:
			state = "archived"
		}
		due := ""
		if c.DueDate != nil {
			due = "  due " + c.DueDate.In(loc).Format(timecalc.DateLayout)
		}
		fmt.Fprintf(w, "  [%s] %s%s\n", state, c.Title, due)
	}
}
