package commands

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/classify"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

func newClassifyCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify imported transactions with pattern rules",
	}
	cmd.AddCommand(
		newClassifyRunCommand(opts),
		newClassifyTxnCommand(opts),
		newClassifyRuleCommand(opts),
	)
	return cmd
}

func (s *session) rulesFile() string {
	return filepath.Join(s.dir, s.cfg.Classification.RulesFile)
}

func newClassifyRunCommand(opts *rootOptions) *cobra.Command {
	var (
		fy        string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply rules to every unclassified transaction",
		Long: `Apply rules to every unclassified transaction. Matches at or above the
auto-accept threshold are stored; the rest are listed for review with
"smallbiz classify txn".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			rules, err := classify.LoadRules(s.rulesFile())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = s.cfg.Classification.AutoAcceptThreshold
			}
			results, err := classify.ClassifyUnclassified(cmd.Context(), s.reg, fy, rules, s.rulesFile(), threshold)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			for _, res := range results {
				if res.Decision != classify.Pending {
					continue
				}
				suggestion := "no matching rule"
				if res.Match != nil {
					suggestion = "suggest " + res.Match.Rule.AccountCode
				}
				fmt.Fprintf(tw, "pending\t%s\t%s\t%s\t%s\n", res.Original.Key(), res.Original.Description, money(res.Original.Amount()), suggestion)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			counts := classify.Counts(results)
			fmt.Fprintf(out, "%d transactions: %d accepted, %d pending\n", len(results), counts[classify.Accepted], counts[classify.Pending])
			if counts[classify.Accepted] == 0 {
				return nil
			}
			return s.commit(cmd, fmt.Sprintf("classify: %d transactions", counts[classify.Accepted]))
		},
	}
	cmd.Flags().StringVar(&fy, "fy", "", "financial year, e.g. 2025-26 (default every year)")
	cmd.Flags().Float64Var(&threshold, "threshold", 1.0, "auto-accept threshold (default from config)")
	return cmd
}

func newClassifyTxnCommand(opts *rootOptions) *cobra.Command {
	var (
		accept       bool
		account      string
		label        string
		gstInclusive bool
	)

	cmd := &cobra.Command{
		Use:   "txn <transaction>",
		Short: "Decide the classification of one transaction",
		Long: `Decide the classification of one transaction: --accept takes the
suggested rule, --account assigns an account yourself. Either way a rule is
learned from the description so similar transactions classify themselves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if accept == (account != "") {
				return fmt.Errorf("give exactly one of --accept or --account: %w", errs.ErrInvalid)
			}
			txn, err := s.resolveTxn(args[0])
			if err != nil {
				return err
			}
			rules, err := classify.LoadRules(s.rulesFile())
			if err != nil {
				return err
			}

			// The user decides here, so no match is auto-accepted.
			ro := classify.ReviewOptions{Threshold: math.Inf(1), UserAccepted: &accept}
			if account != "" {
				code := strings.ToUpper(account)
				chart, err := s.reg.ChartOfAccounts()
				if err != nil {
					return err
				}
				if err := accounts.NewService(chart).Require(code); err != nil {
					return err
				}
				if label == "" {
					label = code
				}
				ro.Manual = &classify.ManualClassification{AccountCode: code, Description: label, GSTInclusive: gstInclusive}
			}

			res, err := classify.ClassifyAndSave(cmd.Context(), s.reg, txn, rules, ro)
			if err != nil {
				return err
			}
			if res.Decision == classify.Pending {
				return fmt.Errorf("no rule matches %q, classify it with --account: %w", txn.Description, errs.ErrInvalid)
			}
			if res.Learned != nil {
				if err := classify.SaveRules(s.rulesFile(), append(rules, *res.Learned)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", txn.Key(), res.Decision)
			if res.Learned != nil {
				fmt.Fprintf(out, "Learned rule %q -> %s\n", res.Learned.Pattern, res.Learned.AccountCode)
			}
			return s.commit(cmd, fmt.Sprintf("classify: %s %s", txn.TransactionID, res.Decision))
		},
	}
	cmd.Flags().BoolVar(&accept, "accept", false, "accept the suggested rule")
	cmd.Flags().StringVar(&account, "account", "", "account code to classify to")
	cmd.Flags().StringVar(&label, "label", "", "description for the learned rule")
	cmd.Flags().BoolVar(&gstInclusive, "gst-inclusive", false, "the amount includes GST")
	return cmd
}

func newClassifyRuleCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage classification rules",
	}
	cmd.AddCommand(newClassifyRuleAddCommand(opts), newClassifyRuleListCommand(opts))
	return cmd
}

func newClassifyRuleAddCommand(opts *rootOptions) *cobra.Command {
	var r classify.Rule

	cmd := &cobra.Command{
		Use:     "add <pattern>",
		Short:   "Add a rule; the pattern is a case-insensitive regular expression",
		Example: `  smallbiz classify rule add 'caltex|bp|shell' --account EXP-VEHICLE --desc Fuel --gst-inclusive`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			r.Pattern = args[0]
			r.AccountCode = strings.ToUpper(r.AccountCode)
			if r.Description == "" {
				r.Description = r.AccountCode
			}
			if err := r.Validate(); err != nil {
				return err
			}
			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			if err := accounts.NewService(chart).Require(r.AccountCode); err != nil {
				return err
			}
			rules, err := classify.LoadRules(s.rulesFile())
			if err != nil {
				return err
			}
			if err := classify.SaveRules(s.rulesFile(), append(rules, r)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %q -> %s\n", r.Pattern, r.AccountCode)
			return s.commit(cmd, "classify: rule "+r.Pattern)
		},
	}
	cmd.Flags().StringVar(&r.AccountCode, "account", "", "account code (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&r.Description, "desc", "", "rule description")
	cmd.Flags().BoolVar(&r.GSTInclusive, "gst-inclusive", false, "matched amounts include GST")
	cmd.Flags().IntVar(&r.Priority, "priority", 0, "higher priority wins when several rules match")
	return cmd
}

func newClassifyRuleListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List classification rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			rules, err := classify.LoadRules(s.rulesFile())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PATTERN\tACCOUNT\tDESCRIPTION\tGST\tPRIORITY")
			for _, r := range rules {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\n", r.Pattern, r.AccountCode, r.Description, r.GSTInclusive, r.Priority)
			}
			return tw.Flush()
		},
	}
}
