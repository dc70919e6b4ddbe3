// Package chat classifies user questions, composes answers from the
// extracted financial data and keeps per-session conversation state.
package chat

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
)

// Intent is the recognized purpose of a user question.
type Intent int

const (
	IntentDefault Intent = iota
	IntentNoDocuments
	IntentNetProfit
	IntentSummary
	IntentChart
	IntentRevenue
	IntentExpense
	IntentTrend
	IntentTax
	IntentPeriod
)

func (i Intent) String() string {
	switch i {
	case IntentNoDocuments:
		return "no_documents"
	case IntentNetProfit:
		return "net_profit"
	case IntentSummary:
		return "summary"
	case IntentChart:
		return "chart"
	case IntentRevenue:
		return "revenue"
	case IntentExpense:
		return "expense"
	case IntentTrend:
		return "trend"
	case IntentTax:
		return "tax"
	case IntentPeriod:
		return "period"
	default:
		return "default"
	}
}

// Classification is an intent plus, for period questions, the matched
// period label.
type Classification struct {
	Intent Intent
	Period string
}

type intentRule struct {
	intent  Intent
	matcher *ahocorasick.Matcher
}

// Classifier maps a question to an intent with an ordered keyword rule
// list. Rule order encodes priority: "qual o lucro sobre a receita"
// resolves to net profit because the profit rule runs first.
type Classifier struct {
	rules []intentRule
}

// NewClassifier compiles the keyword rules.
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []intentRule{
			{IntentNetProfit, ahocorasick.NewStringMatcher([]string{
				"lucro", "líquido", "liquido", "profit",
			})},
			{IntentSummary, ahocorasick.NewStringMatcher([]string{
				"resumo", "resuma", "visão geral", "visao geral", "panorama", "summary",
			})},
			{IntentChart, ahocorasick.NewStringMatcher([]string{
				"gráfico", "grafico", "visualiza", "chart",
			})},
			{IntentRevenue, ahocorasick.NewStringMatcher([]string{
				"receita", "faturamento", "vendas", "revenue", "income",
			})},
			{IntentExpense, ahocorasick.NewStringMatcher([]string{
				"despesa", "custo", "gasto", "expense", "cost",
			})},
			{IntentTrend, ahocorasick.NewStringMatcher([]string{
				"tendência", "tendencia", "evolução", "evolucao", "crescimento", "trend",
			})},
			{IntentTax, ahocorasick.NewStringMatcher([]string{
				"imposto", "tributo", "taxa", "tax",
			})},
		},
	}
}

// Classify resolves the intent of a question against the session dataset.
// An empty dataset short-circuits to NoDocuments before any keyword is
// considered. After the keyword rules, period labels known to the dataset
// are matched literally and then fuzzily (one edit of distance, so
// "abril" still finds "Abril " or a mistyped "Abrill").
func (c *Classifier) Classify(query string, ds analysis.Dataset) Classification {
	if ds.Empty() {
		return Classification{Intent: IntentNoDocuments}
	}

	q := strings.ToLower(query)
	needle := []byte(q)
	for _, rule := range c.rules {
		if len(rule.matcher.Match(needle)) > 0 {
			return Classification{Intent: rule.intent}
		}
	}

	if label, ok := c.matchPeriod(q, ds.PeriodLabels()); ok {
		return Classification{Intent: IntentPeriod, Period: label}
	}

	return Classification{Intent: IntentDefault}
}

func (c *Classifier) matchPeriod(query string, labels []string) (string, bool) {
	for _, label := range labels {
		if label == "N/A" {
			continue
		}
		if strings.Contains(query, strings.ToLower(label)) {
			return label, true
		}
	}

	for _, word := range strings.Fields(query) {
		word = strings.Trim(word, "?!.,;:")
		if len(word) < 4 {
			continue
		}
		for _, label := range labels {
			if label == "N/A" {
				continue
			}
			if fuzzy.LevenshteinDistance(word, strings.ToLower(label)) <= 1 {
				return label, true
			}
		}
	}
	return "", false
}
