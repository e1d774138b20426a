package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/storage"
)

var (
	reportFilters filterFlags
	reportFormat  string
	reportSave    bool
)

var reportCmd = &cobra.Command{
	Use:   "report <performance|duration|workload|trends|activity|all>",
	Short: "Generate a workspace report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportFilters.register(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "Archive the report under ~/.boxreport/reports")
}

// reportKinds resolves the positional argument.
func reportKinds(arg string) ([]model.Kind, error) {
	if strings.EqualFold(arg, "all") {
		return model.Kinds, nil
	}
	kind, ok := model.ParseKind(arg)
	if !ok {
		names := make([]string, len(model.Kinds))
		for i, k := range model.Kinds {
			names[i] = string(k)
		}
		return nil, fmt.Errorf("unknown report %q (want %s or all)", arg, strings.Join(names, ", "))
	}
	return []model.Kind{kind}, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now()

	kinds, err := reportKinds(args[0])
	if err != nil {
		exitUsage(err)
	}
	switch reportFormat {
	case "md", "csv", "json":
	default:
		exitUsage(fmt.Errorf("unknown format %q (want md, csv or json)", reportFormat))
	}

	e, err := loadEnv()
	if err != nil {
		exitRuntime(err)
	}
	filters, err := reportFilters.build(e.cfg.Defaults.Workspace, e.loc, now)
	if err != nil {
		exitUsage(err)
	}
	if !filters.HasWorkspace() {
		e.logger.Warn("no workspace given; pass --workspace or set defaults.workspace")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	gen, err := e.generator(ctx)
	if err != nil {
		exitRuntime(err)
	}

	reports := make(map[model.Kind]any, len(kinds))
	for _, kind := range kinds {
		rep, err := gen.Generate(ctx, kind, filters)
		if err != nil {
			exitRuntime(err)
		}
		reports[kind] = rep
	}

	var base string
	if reportSave {
		base, err = storage.BaseDir()
		if err != nil {
			exitRuntime(err)
		}
	}

	if reportFormat == "json" && len(kinds) > 1 {
		if err := render(os.Stdout, "json", reports); err != nil {
			exitRuntime(err)
		}
	}
	var errs []error
	for i, kind := range kinds {
		if reportFormat != "json" || len(kinds) == 1 {
			if i > 0 {
				fmt.Println()
			}
			if reportFormat == "csv" && len(kinds) > 1 {
				fmt.Printf("# %s\n", kind)
			}
			if err := render(os.Stdout, reportFormat, reports[kind]); err != nil {
				exitRuntime(err)
			}
		}
		if reportSave {
			snap, err := storage.Append(base, kind, filters, reports[kind], now)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			e.logger.Info("report archived", "kind", kind, "id", snap.ID)
		}
	}
	if err := errors.Join(errs...); err != nil {
		exitRuntime(err)
	}
	return nil
}
