package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fleet-ledger/internal/cli"
	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/config"
	"github.com/Veraticus/fleet-ledger/internal/engine"
	"github.com/Veraticus/fleet-ledger/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage category normalization rules",
		Long: `Normalization rules map raw ledger labels onto canonical categories.
The active rule with the highest priority wins; ties go to the most recently
updated rule, then to the lowest rule ID.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesImportCmd())
	cmd.AddCommand(rulesValidateCmd())
	cmd.AddCommand(rulesTestCmd())
	cmd.AddCommand(rulesDeleteCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	var (
		all     bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in precedence order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.ListRules(cmd.Context(), !all)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), rules)
			}
			return cli.RenderRules(cmd.OutOrStdout(), rules)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive rules")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	return cmd
}

func rulesAddCmd() *cobra.Command {
	var (
		entry    config.RuleEntry
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a normalization rule",
		Example: `  ledger rules add --from posto --to Combustível --scope expense --priority 10
  ledger rules add --from '^multa\s+\d+' --match regex --to Multas`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := entry.Rule()
			rule.Active = !inactive
			if err := store.CreateRule(cmd.Context(), &rule); err != nil {
				return common.NewUserError("could not add rule", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added rule %s: %q -> %s", rule.ID, rule.FromPattern, rule.ToCategory)))
			return nil
		},
	}

	cmd.Flags().StringVar(&entry.ID, "id", "", "rule ID (generated when empty)")
	cmd.Flags().StringVar(&entry.From, "from", "", "pattern to match against record labels")
	cmd.Flags().StringVar(&entry.To, "to", "", "category assigned on match")
	cmd.Flags().StringVar(&entry.Match, "match", "contains", "match type (exact, contains, regex)")
	cmd.Flags().StringVar(&entry.Scope, "scope", "both", "record kinds the rule applies to (expense, income, both)")
	cmd.Flags().IntVar(&entry.Priority, "priority", 0, "higher priority rules win")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "store the rule deactivated")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// rulesFileArg returns the file named on the command line, falling back to
// the configured rules file.
func rulesFileArg(args []string, settings config.Settings) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if settings.RulesFile == "" {
		return "", common.NewUserError("no rules file given and rules.file is not configured", common.ErrMissingConfig)
	}
	return settings.RulesFile, nil
}

func rulesImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Create or replace rules from a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			path, err := rulesFileArg(args, settings)
			if err != nil {
				return err
			}

			rules, err := config.LoadRulesFile(path)
			if err != nil {
				return common.NewUserError("invalid rules file", err)
			}
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No rules found in "+path))
				return nil
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%d rules would be imported", len(rules))))
				return cli.RenderRules(cmd.OutOrStdout(), rules)
			}

			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ImportRules(cmd.Context(), rules); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d rules from %s", len(rules), path)))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Run 'ledger normalize' to apply them to stored records"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and show the rules without storing them")

	return cmd
}

func rulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a YAML rules file without importing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			path, err := rulesFileArg(args, settings)
			if err != nil {
				return err
			}

			rules, err := config.LoadRulesFile(path)
			if err != nil {
				return common.NewUserError("invalid rules file", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %d valid rules", path, len(rules))))
			return nil
		},
	}
}

func rulesTestCmd() *cobra.Command {
	var (
		scopeFlag string
		filePath  string
	)

	cmd := &cobra.Command{
		Use:   "test <text>",
		Short: "Show which rule a label resolves to",
		Example: `  ledger rules test "Posto Shell ABC-1234" --scope expense
  ledger rules test "Multa 123" --file rules.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseScope(scopeFlag)
			if err != nil {
				return err
			}

			var rules []model.NormalizationRule
			if filePath != "" {
				if rules, err = config.LoadRulesFile(filePath); err != nil {
					return common.NewUserError("invalid rules file", err)
				}
			} else {
				settings, err := loadSettings()
				if err != nil {
					return err
				}
				store, err := initStorage(cmd.Context(), settings)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				if rules, err = store.ListRules(cmd.Context(), true); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			match, ok := engine.ResolveCategoryByRules(rules, args[0], scope)
			if !ok {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No active rule matches %q for scope %s", args[0], scope)))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%q -> %s (rule %s)", args[0], match.Category, match.RuleID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "all", "scope to resolve for (all, expense, income)")
	cmd.Flags().StringVar(&filePath, "file", "", "test against a YAML rules file instead of stored rules")

	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule, err := store.GetRule(cmd.Context(), args[0])
			if err != nil {
				return common.NewUserError("could not delete rule", err)
			}

			if !yes {
				question := fmt.Sprintf("Delete rule %s (%q -> %s)?", rule.ID, rule.FromPattern, rule.ToCategory)
				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(), question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Kept rule "+rule.ID))
					return nil
				}
			}

			if err := store.DeleteRule(cmd.Context(), rule.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted rule "+rule.ID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
