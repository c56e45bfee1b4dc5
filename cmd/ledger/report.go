package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/fleet-ledger/internal/cli"
	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/config"
	"github.com/Veraticus/fleet-ledger/internal/extract"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
	"github.com/Veraticus/fleet-ledger/internal/report"
	"github.com/Veraticus/fleet-ledger/internal/service"
)

// reportOptions are the flags shared by every report.
type reportOptions struct {
	from    string
	to      string
	scope   string
	view    string
	jsonOut bool
}

func (o *reportOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.from, "from", "", "first day of the range, YYYY-MM-DD (default: first of this month)")
	cmd.Flags().StringVar(&o.to, "to", "", "last day of the range, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&o.scope, "scope", "all", "record kinds to include (all, expense, income)")
	cmd.Flags().StringVar(&o.view, "view", "all", "payer view (all, operator, owner)")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "output JSON")
}

// query resolves the flags into a report query.
func (o *reportOptions) query(settings config.Settings) (report.Query, error) {
	r, err := resolveRange(o.from, o.to, time.Now(), settings.Location)
	if err != nil {
		return report.Query{}, err
	}
	scope, err := parseScope(o.scope)
	if err != nil {
		return report.Query{}, err
	}
	view, err := extract.ParseView(o.view)
	if err != nil {
		return report.Query{}, common.NewUserError("invalid payer view", err)
	}
	return report.Query{Range: r, Scope: scope, View: view}, nil
}

// withRecords loads the configured settings and canonical records and hands
// them to fn.
func (o *reportOptions) withRecords(cmd *cobra.Command, fn func(report.Query, []model.CanonicalRecord, config.Settings) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	q, err := o.query(settings)
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := loadCanonical(cmd.Context(), store, settings, service.RecordFilter{})
	if err != nil {
		return err
	}
	return fn(q, records, settings)
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Period-over-period summaries, series and rankings",
		Long: `Reports resolve each record's canonical date and amount, skip canceled
and undated records, and aggregate over the requested range. Summaries compare
the range with the immediately preceding range of the same length.`,
	}

	cmd.AddCommand(reportSummaryCmd())
	cmd.AddCommand(reportSeriesCmd())
	cmd.AddCommand(reportRankingCmd())
	cmd.AddCommand(reportOverviewCmd())

	return cmd
}

func reportSummaryCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total and count compared with the previous period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRecords(cmd, func(q report.Query, records []model.CanonicalRecord, _ config.Settings) error {
				s := report.Summarize(records, q)
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), s)
				}
				return cli.RenderSummary(cmd.OutOrStdout(), s, q.Scope)
			})
		},
	}

	opts.register(cmd)
	return cmd
}

func reportSeriesCmd() *cobra.Command {
	var (
		opts        reportOptions
		granularity string
	)

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Bucketed totals over the range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := parseGranularity(granularity)
			if err != nil {
				return err
			}
			return opts.withRecords(cmd, func(q report.Query, records []model.CanonicalRecord, _ config.Settings) error {
				s := report.TimeSeries(records, q, g)
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), s)
				}
				return cli.RenderSeries(cmd.OutOrStdout(), s)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&granularity, "granularity", "auto", "bucket size (auto, day, week, month)")
	return cmd
}

func parseGranularity(s string) (period.Granularity, error) {
	if s == "" || s == "auto" {
		return "", nil
	}
	g, err := period.ParseGranularity(s)
	if err != nil {
		return "", common.NewUserError("invalid granularity", err)
	}
	return g, nil
}

// rankingOptions are the flags of a ranking.
type rankingOptions struct {
	key   string
	sort  string
	limit int
}

func (o *rankingOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.key, "by", "category", "group by (category, plate, payer)")
	cmd.Flags().StringVar(&o.sort, "sort", "value", "rank by (value, count)")
	cmd.Flags().IntVar(&o.limit, "limit", -1, "number of entries (default: report.limit, 0 for all)")
}

func (o *rankingOptions) resolve(settings config.Settings) (report.RankKey, report.SortBy, int, error) {
	key, err := report.ParseRankKey(o.key)
	if err != nil {
		return "", "", 0, common.NewUserError("invalid ranking key", err)
	}
	by, err := report.ParseSortBy(o.sort)
	if err != nil {
		return "", "", 0, common.NewUserError("invalid ranking dimension", err)
	}
	limit := o.limit
	if limit < 0 {
		limit = settings.ReportLimit
	}
	return key, by, limit, nil
}

func reportRankingCmd() *cobra.Command {
	var (
		opts    reportOptions
		ranking rankingOptions
	)

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Top categories, plates or payers in the range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRecords(cmd, func(q report.Query, records []model.CanonicalRecord, settings config.Settings) error {
				key, by, limit, err := ranking.resolve(settings)
				if err != nil {
					return err
				}
				entries := report.Rank(records, q, key, by, limit)
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				return cli.RenderRanking(cmd.OutOrStdout(), entries, key)
			})
		},
	}

	opts.register(cmd)
	ranking.register(cmd)
	return cmd
}

// overview bundles every report shape for one query.
type overview struct {
	Series  report.Series      `json:"series"`
	Ranking []report.RankEntry `json:"ranking"`
	Summary report.Summary     `json:"summary"`
}

func reportOverviewCmd() *cobra.Command {
	var (
		opts    reportOptions
		ranking rankingOptions
	)

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Summary, series and ranking in one report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRecords(cmd, func(q report.Query, records []model.CanonicalRecord, settings config.Settings) error {
				key, by, limit, err := ranking.resolve(settings)
				if err != nil {
					return err
				}

				ov, err := buildOverview(cmd.Context(), records, q, key, by, limit)
				if err != nil {
					return err
				}

				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), ov)
				}
				out := cmd.OutOrStdout()
				if err := cli.RenderSummary(out, ov.Summary, q.Scope); err != nil {
					return err
				}
				fmt.Fprintln(out)
				if err := cli.RenderSeries(out, ov.Series); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return cli.RenderRanking(out, ov.Ranking, key)
			})
		},
	}

	opts.register(cmd)
	ranking.register(cmd)
	return cmd
}

// buildOverview computes the three report shapes concurrently. The report
// functions share no mutable state, so each goroutine writes its own field.
func buildOverview(ctx context.Context, records []model.CanonicalRecord, q report.Query, key report.RankKey, by report.SortBy, limit int) (overview, error) {
	var ov overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ov.Summary = report.Summarize(records, q)
		return ctx.Err()
	})
	g.Go(func() error {
		ov.Series = report.TimeSeries(records, q, "")
		return ctx.Err()
	})
	g.Go(func() error {
		ov.Ranking = report.Rank(records, q, key, by, limit)
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return overview{}, err
	}
	return ov, nil
}
