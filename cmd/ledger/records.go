package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fleet-ledger/internal/cli"
	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/config"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
	"github.com/Veraticus/fleet-ledger/internal/service"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Import, inspect and correct ledger records",
	}

	cmd.AddCommand(recordsImportCmd())
	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsCategorizeCmd())

	return cmd
}

// decodeRecords reads a JSON array of records.
func decodeRecords(r io.Reader) ([]model.RawRecord, error) {
	var records []model.RawRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("could not parse records: %w", err)
	}
	return records, nil
}

func recordsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import records from a JSON array",
		Long: `Import records from a JSON array of objects with the fields id, kind,
status, due_date, planned_date, actual_date, planned_amount, actual_amount,
gross_amount, category_label, description, counterparty and notes.

Records are matched by id: re-importing refreshes their raw fields while
keeping manual and rule-based categories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(config.ExpandPath(args[0]))
				if err != nil {
					return common.NewUserError("could not open records file", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			records, err := decodeRecords(in)
			if err != nil {
				return common.NewUserError("invalid records file", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No records to import"))
				return nil
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveRecords(cmd.Context(), records); err != nil {
				return common.NewUserError("could not import records", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d records", len(records))))
			return nil
		},
	}
}

func recordsListCmd() *cobra.Command {
	var (
		kindFlag string
		manual   bool
		overdue  bool
		limit    int
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records with their canonical values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.RecordFilter{Limit: limit}
			switch strings.ToLower(kindFlag) {
			case "", "all":
			case "expense":
				filter.Kind = model.KindExpense
			case "income":
				filter.Kind = model.KindIncome
			default:
				return common.NewUserError(fmt.Sprintf("unknown kind %q (use expense or income)", kindFlag), nil)
			}
			if manual {
				filter.Provenance = model.ProvenanceManual
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := loadCanonical(cmd.Context(), store, settings, filter)
			if err != nil {
				return err
			}

			if overdue {
				records = overdueRecords(records, time.Now(), settings.Location)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return cli.RenderRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "only expense or income records")
	cmd.Flags().BoolVar(&manual, "manual", false, "only records with a manual category")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only unsettled records past their due date")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	return cmd
}

// overdueRecords keeps records whose due date has passed while unsettled.
func overdueRecords(records []model.CanonicalRecord, now time.Time, loc *time.Location) []model.CanonicalRecord {
	out := make([]model.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if rec.DueDate != nil && period.IsOverdue(*rec.DueDate, rec.Status, now, loc) {
			out = append(out, rec)
		}
	}
	return out
}

func recordsCategorizeCmd() *cobra.Command {
	var release bool

	cmd := &cobra.Command{
		Use:   "categorize <id> [category]",
		Short: "Pin a record to a category, or release it with --clear",
		Long: `Pin a record to a category. Manual categories are never changed by
'ledger normalize'. Use --clear to return the record to its raw label so that
rules apply to it again.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if release == (len(args) == 2) {
				return common.NewUserError("give either a category or --clear", nil)
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if release {
				if err := store.ClearManualCategory(cmd.Context(), args[0]); err != nil {
					return common.NewUserError("could not clear category", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Released record "+args[0]))
				return nil
			}

			if err := store.SetManualCategory(cmd.Context(), args[0], args[1]); err != nil {
				return common.NewUserError("could not set category", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Record %s pinned to %s", args[0], args[1])))
			return nil
		},
	}

	cmd.Flags().BoolVar(&release, "clear", false, "remove the manual category")

	return cmd
}
