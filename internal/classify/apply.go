package classify

import "github.com/smallbiz-dev/smallbiz/internal/model"

// Apply returns a copy of txn with every unclassified entry posted to the
// matched rule's account. The GST flag follows the rule.
func Apply(txn model.Transaction, m Match) model.Transaction {
	return recode(txn, m.Rule.AccountCode, m.Rule.GSTInclusive)
}

func recode(txn model.Transaction, accountCode string, gstInclusive bool) model.Transaction {
	out := txn.Clone()
	for i, e := range out.Entries {
		if e.IsUnclassified() {
			out.Entries[i].AccountCode = accountCode
		}
	}
	out.GSTInclusive = gstInclusive
	return out
}
