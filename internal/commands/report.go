package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/config"
	"github.com/tallied-dev/tallied/internal/journal"
	"github.com/tallied-dev/tallied/internal/render"
	"github.com/tallied-dev/tallied/internal/reports"
)

type reportFlags struct {
	from        string
	to          string
	granularity string
	collapse    []int
	expand      []int
	percent     bool
}

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial statements",
	}
	cmd.PersistentFlags().String("repo", ".", "repository directory")

	cmd.AddCommand(newReportStatementCommand("income", "Income statement", buildIncomeText))
	cmd.AddCommand(newReportStatementCommand("balance-sheet", "Balance sheet", buildBalanceSheetText))
	cmd.AddCommand(newReportStatementCommand("cash-flow", "Cash flow statement", buildCashFlowText))
	return cmd
}

type reportBuilder func(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, opts render.Options) error

func newReportStatementCommand(name, short string, build reportBuilder) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, flags, build)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "range start (YYYY-MM-DD, empty = all history)")
	cmd.Flags().StringVar(&flags.to, "to", "", "range end (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flags.granularity, "granularity", "", "month, quarter, or total")
	cmd.Flags().IntSliceVar(&flags.collapse, "collapse", nil, "parent account IDs to show rolled up")
	cmd.Flags().IntSliceVar(&flags.expand, "expand", nil, "account IDs to expand despite config")
	cmd.Flags().BoolVar(&flags.percent, "percent", false, "append a percentage column")

	return cmd
}

func runReport(cmd *cobra.Command, flags reportFlags, build reportBuilder) error {
	dir, err := repoDir(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var start time.Time
	if flags.from != "" {
		if start, err = time.Parse("2006-01-02", flags.from); err != nil {
			return fmt.Errorf("invalid --from %q", flags.from)
		}
	}
	end := time.Now().UTC()
	if flags.to != "" {
		if end, err = time.Parse("2006-01-02", flags.to); err != nil {
			return fmt.Errorf("invalid --to %q", flags.to)
		}
	}
	r := reports.NewDateRange(start, end)

	granName := flags.granularity
	if granName == "" {
		granName = cfg.Reporting.Granularity
	}
	g, err := reports.ParseGranularity(granName)
	if err != nil {
		return err
	}

	collapsed := reports.NewCollapseState(cfg.Reporting.Collapsed...)
	for _, id := range flags.collapse {
		if !collapsed.Collapsed(id) {
			collapsed.Toggle(id)
		}
	}
	for _, id := range flags.expand {
		if collapsed.Collapsed(id) {
			collapsed.Toggle(id)
		}
	}

	accts, err := accounts.Load(dir)
	if err != nil {
		return err
	}
	postings, err := journal.NewService(dir, accts).ReadThrough(r.End)
	if err != nil {
		return err
	}
	e := reports.NewEngine(accts, postings)

	opts := render.Options{Percent: flags.percent || cfg.Reporting.Percent}
	return build(e, r, g, collapsed, opts)
}

func buildIncomeText(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, opts render.Options) error {
	is, err := reports.BuildIncomeStatement(e, r, g, c)
	if err != nil {
		return err
	}
	return render.IncomeStatement(os.Stdout, is, opts)
}

func buildBalanceSheetText(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, opts render.Options) error {
	bs, err := reports.BuildBalanceSheet(e, r, g, c)
	if err != nil {
		return err
	}
	return render.BalanceSheet(os.Stdout, bs, opts)
}

func buildCashFlowText(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, opts render.Options) error {
	cf, err := reports.BuildCashFlow(e, r, g, c)
	if err != nil {
		return err
	}
	return render.CashFlow(os.Stdout, cf, opts)
}
