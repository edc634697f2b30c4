package ledger

import (
	"strings"

	"github.com/iho/propledger/internal/domain"
)

// keywordRule maps word prefixes to a sub-type. Rules are checked in order; the first hit wins.
type keywordRule struct {
	subType  domain.SubType
	keywords []string
}

// Security deposits often mention rent as well ("security deposit for rent"), so they go first.
var legacyRules = []keywordRule{
	{subType: domain.SubTypeSecurityDeposit, keywords: []string{"security", "deposit"}},
	{subType: domain.SubTypeRent, keywords: []string{"rent", "rental", "lease"}},
	{subType: domain.SubTypeSalary, keywords: []string{"salary", "wage", "payroll"}},
	{subType: domain.SubTypeMaintenance, keywords: []string{"maintenance", "repair"}},
	{subType: domain.SubTypeUtility, keywords: []string{"electric", "water", "utility", "utilities"}},
}

// Classify resolves the display sub-type of a record. An authoritative sub-type entered with the
// record wins; otherwise legacy keyword matching over description and category is used and the
// result is flagged as inferred.
func Classify(authoritative domain.SubType, description, category string) (domain.SubType, bool) {
	if authoritative.IsValid() {
		return authoritative, false
	}

	st := inferSubType(description + " " + category)
	return st, st != domain.SubTypeNone
}

func inferSubType(text string) domain.SubType {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	for _, rule := range legacyRules {
		for _, w := range words {
			for _, kw := range rule.keywords {
				if strings.HasPrefix(w, kw) {
					return rule.subType
				}
			}
		}
	}

	return domain.SubTypeNone
}
