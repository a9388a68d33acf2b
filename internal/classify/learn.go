package classify

import (
	"regexp"
	"strings"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

var wordRE = regexp.MustCompile(`[A-Z]+`)

// Location and company suffix words that end a merchant name.
var stopWords = map[string]bool{
	"PERTH": true, "SYDNEY": true, "MELBOURNE": true, "BRISBANE": true, "ADELAIDE": true,
	"STORE": true, "BRANCH": true, "PTY": true, "LTD": true,
}

// Merchants whose name is one word; the next word is never part of it.
var singleWordMerchants = map[string]bool{
	"COLES": true, "WOOLWORTHS": true, "ALDI": true, "IGA": true,
}

// LearnRule builds a rule whose pattern is the merchant name taken from
// txn's description. The pattern is empty when the description has no
// words at all.
func LearnRule(txn model.Transaction, accountCode, label string, gstInclusive bool, priority int) Rule {
	return Rule{
		Pattern:      merchantPattern(txn.Description),
		AccountCode:  accountCode,
		Description:  label,
		GSTInclusive: gstInclusive,
		Priority:     priority,
	}
}

// merchantPattern takes the first one or two letter runs of the
// upper-cased description:
//
//	"CALTEX STAR MART 1234" -> "CALTEX STAR"
//	"COLES 0456 PERTH"      -> "COLES"
//	"BUNNINGS PERTH"        -> "BUNNINGS"
//	"12345 6789"            -> "12345"
func merchantPattern(description string) string {
	words := wordRE.FindAllString(strings.ToUpper(description), -1)
	if len(words) == 0 {
		fields := strings.Fields(description)
		if len(fields) == 0 {
			return ""
		}
		return regexp.QuoteMeta(fields[0])
	}

	var merchant []string
	for _, w := range words {
		if stopWords[w] {
			break
		}
		if len(merchant) == 0 {
			merchant = append(merchant, w)
			continue
		}
		if !singleWordMerchants[merchant[0]] {
			merchant = append(merchant, w)
		}
		break
	}
	if len(merchant) == 0 {
		merchant = words[:1]
	}
	for i, w := range merchant {
		merchant[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(merchant, " ")
}
