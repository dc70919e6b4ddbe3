package analysis

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// FieldRole tells the extractor what a column holds.
type FieldRole int

const (
	RoleUnknown FieldRole = iota
	RoleRevenue
	RoleExpense
	RolePeriod
)

func (r FieldRole) String() string {
	switch r {
	case RoleRevenue:
		return "revenue"
	case RoleExpense:
		return "expense"
	case RolePeriod:
		return "period"
	default:
		return "unknown"
	}
}

type fieldRule struct {
	role    FieldRole
	matcher *ahocorasick.Matcher
}

// FieldClassifier assigns a role to a column header by keyword match.
// Rules are evaluated in a fixed order so a header like "receita líquida
// mensal" resolves to revenue even though it also mentions a period word.
type FieldClassifier struct {
	rules []fieldRule
}

// NewFieldClassifier builds the classifier with its keyword rules compiled
// into multi-pattern matchers.
func NewFieldClassifier() *FieldClassifier {
	return &FieldClassifier{
		rules: []fieldRule{
			{RoleRevenue, ahocorasick.NewStringMatcher([]string{
				"receita", "faturamento", "vendas", "income", "revenue",
			})},
			{RoleExpense, ahocorasick.NewStringMatcher([]string{
				"despesa", "custo", "gasto", "expense", "cost",
			})},
			{RolePeriod, ahocorasick.NewStringMatcher([]string{
				"mes", "mês", "periodo", "período", "month", "date",
			})},
		},
	}
}

// Classify returns the role of a column header. Matching is
// case-insensitive substring containment; the first rule with a hit wins
// and headers matching nothing are RoleUnknown.
func (c *FieldClassifier) Classify(header string) FieldRole {
	needle := []byte(strings.ToLower(header))
	for _, rule := range c.rules {
		if len(rule.matcher.Match(needle)) > 0 {
			return rule.role
		}
	}
	return RoleUnknown
}
