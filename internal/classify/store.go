package classify

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/smallbiz-dev/smallbiz/internal/auditlog"
	"github.com/smallbiz-dev/smallbiz/internal/logger"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// Store is the part of the storage registry classification needs.
type Store interface {
	Dir() string
	TransactionExists(id string, date civil.Date) bool
	SaveTransaction(model.Transaction) error
	UpdateTransaction(model.Transaction) error
	UnclassifiedTransactions(fy string) []model.Transaction
}

// now is replaced in tests.
var now = time.Now

// ClassifyAndSave reviews txn and persists the classified copy when the
// decision is accepted, rejected or manual, updating an existing
// transaction or saving a new one.
func ClassifyAndSave(ctx context.Context, store Store, txn model.Transaction, rules []Rule, opts ReviewOptions) (Result, error) {
	res := Review(txn, rules, opts)
	if err := persist(store, res); err != nil {
		return res, err
	}
	if err := auditlog.Append(store.Dir(), auditlog.ClassificationLog, []auditlog.Entry{auditEntry(res)}); err != nil {
		return res, fmt.Errorf("recording classification: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Debug().
		Str("transaction", txn.TransactionID).
		Str("decision", string(res.Decision)).
		Msg("classified transaction")
	return res, nil
}

func persist(store Store, res Result) error {
	if res.Classified == nil || res.Decision == Pending {
		return nil
	}
	txn := *res.Classified
	if store.TransactionExists(txn.TransactionID, txn.Date) {
		return store.UpdateTransaction(txn)
	}
	return store.SaveTransaction(txn)
}

// ClassifyUnclassified runs ProcessBatch over the unclassified transactions
// of fy (every year when empty), stores the auto-accepted results and
// records every decision in the classification log.
func ClassifyUnclassified(ctx context.Context, store Store, fy string, rules []Rule, rulesFile string, threshold float64) ([]Result, error) {
	txns := store.UnclassifiedTransactions(fy)
	results, err := ProcessBatch(ctx, txns, rules, rulesFile, threshold)
	if err != nil {
		return nil, err
	}

	entries := make([]auditlog.Entry, 0, len(results))
	for _, res := range results {
		if res.Decision == Accepted && res.Classified != nil {
			if err := store.UpdateTransaction(*res.Classified); err != nil {
				return results, fmt.Errorf("storing classification of %s: %w", res.Original.TransactionID, err)
			}
		}
		entries = append(entries, auditEntry(res))
	}
	if err := auditlog.Append(store.Dir(), auditlog.ClassificationLog, entries); err != nil {
		return results, fmt.Errorf("recording classifications: %w", err)
	}

	counts := Counts(results)
	log := logger.FromContext(ctx)
	log.Info().
		Int("transactions", len(results)).
		Int("accepted", counts[Accepted]).
		Int("pending", counts[Pending]).
		Msg("classification run finished")
	return results, nil
}

func auditEntry(res Result) auditlog.Entry {
	e := auditlog.Entry{
		Timestamp:     now().UTC(),
		Source:        "classify",
		Action:        string(res.Decision),
		TransactionID: res.Original.TransactionID,
		Details:       res.Original.Description,
	}
	if res.Classified != nil && res.Decision != Pending {
		for _, entry := range res.Classified.Entries {
			if entry.AccountCode != "" && !res.Original.HasAccount(entry.AccountCode) {
				e.AccountCode = entry.AccountCode
				break
			}
		}
	}
	if res.Match != nil {
		e.Details = fmt.Sprintf("%s (rule %q, confidence %.2f)", res.Original.Description, res.Match.Rule.Pattern, res.Match.Confidence)
	}
	return e
}
