package classify

import (
	"context"

	"github.com/smallbiz-dev/smallbiz/internal/logger"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// Decision is the outcome of reviewing one transaction.
type Decision string

const (
	Accepted Decision = "accepted" // auto-accepted, or the user accepted the suggestion
	Rejected Decision = "rejected" // the user rejected the suggestion and gave an alternative
	Manual   Decision = "manual"   // no rule matched and the user classified it
	Pending  Decision = "pending"  // waiting for the user
)

// ManualClassification is an account chosen by the user.
type ManualClassification struct {
	AccountCode  string
	Description  string
	GSTInclusive bool
}

// ReviewOptions carries the auto-accept threshold and any user input.
// Matches have confidence 1.0, so a Threshold above 1.0 sends every match
// to the user.
type ReviewOptions struct {
	Threshold    float64
	UserAccepted *bool // nil while the user has not decided
	Manual       *ManualClassification
}

// Result records what Review decided for one transaction.
type Result struct {
	Original   model.Transaction
	Classified *model.Transaction // nil when nothing could be applied
	Match      *Match
	Decision   Decision
	Learned    *Rule
}

// Review classifies txn against rules and folds in the user's decision.
func Review(txn model.Transaction, rules []Rule, opts ReviewOptions) Result {
	res := Result{Original: txn, Decision: Pending}

	m, ok := FindBestMatch(txn.Description, rules)
	if !ok {
		if opts.Manual != nil {
			res.Classified = classifyManually(txn, *opts.Manual)
			res.Decision = Manual
			res.Learned = learnManual(txn, *opts.Manual)
		}
		return res
	}

	res.Match = &m
	applied := Apply(txn, m)
	res.Classified = &applied

	switch {
	case m.Confidence >= opts.Threshold:
		res.Decision = Accepted
	case opts.UserAccepted == nil:
		// Pending with the suggestion attached.
	case *opts.UserAccepted:
		res.Decision = Accepted
		res.Learned = learn(txn, m.Rule.AccountCode, m.Rule.Description, m.Rule.GSTInclusive)
	case opts.Manual != nil:
		res.Classified = classifyManually(txn, *opts.Manual)
		res.Decision = Rejected
		res.Learned = learnManual(txn, *opts.Manual)
	}
	return res
}

func classifyManually(txn model.Transaction, mc ManualClassification) *model.Transaction {
	out := recode(txn, mc.AccountCode, mc.GSTInclusive)
	return &out
}

func learnManual(txn model.Transaction, mc ManualClassification) *Rule {
	return learn(txn, mc.AccountCode, mc.Description, mc.GSTInclusive)
}

// learn returns nil when the description yields no pattern; an empty
// pattern would make the saved rules file unloadable.
func learn(txn model.Transaction, accountCode, label string, gstInclusive bool) *Rule {
	r := LearnRule(txn, accountCode, label, gstInclusive, 0)
	if r.Pattern == "" {
		return nil
	}
	return &r
}

// ProcessBatch reviews every transaction with no user input, then saves
// rules plus any learned rules to rulesFile in a single write. Results are
// in input order.
func ProcessBatch(ctx context.Context, txns []model.Transaction, rules []Rule, rulesFile string, threshold float64) ([]Result, error) {
	log := logger.FromContext(ctx)

	results := make([]Result, 0, len(txns))
	var learned []Rule
	for _, txn := range txns {
		res := Review(txn, rules, ReviewOptions{Threshold: threshold})
		results = append(results, res)
		if res.Learned != nil {
			learned = append(learned, *res.Learned)
			log.Debug().Str("pattern", res.Learned.Pattern).Str("account", res.Learned.AccountCode).Msg("learned rule")
		}
	}

	if len(learned) > 0 {
		all := append(append([]Rule(nil), rules...), learned...)
		if err := SaveRules(rulesFile, all); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Counts tallies decisions.
func Counts(results []Result) map[Decision]int {
	out := make(map[Decision]int)
	for _, r := range results {
		out[r.Decision]++
	}
	return out
}
