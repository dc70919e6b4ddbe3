package analysis

import (
	"github.com/ericlbarreto/conta-ai/internal/domain/document/parser"
)

// DefaultTaxRate estimates taxes as a share of gross revenue when no tax
// column exists in the source data.
const DefaultTaxRate = 0.15

// Extractor derives a Dataset from tabular rows. It holds no mutable
// state, so extraction is idempotent and safe to share across goroutines.
type Extractor struct {
	classifier *FieldClassifier
	taxRate    float64
}

// NewExtractor returns an extractor with the default tax rate.
func NewExtractor() *Extractor {
	return &Extractor{
		classifier: NewFieldClassifier(),
		taxRate:    DefaultTaxRate,
	}
}

// WithTaxRate overrides the tax estimation rate. Rates outside (0, 1] are
// ignored.
func (e *Extractor) WithTaxRate(rate float64) *Extractor {
	if rate > 0 && rate <= 1 {
		e.taxRate = rate
	}
	return e
}

// TaxRate returns the configured tax estimation rate.
func (e *Extractor) TaxRate() float64 {
	return e.taxRate
}

// Extract classifies every column of every row and builds the dataset.
// Columns are visited in source order and, when several columns map to the
// same role, the last one wins. A row contributes a revenue or expense
// entry only when the parsed amount is positive; rows without a period
// column are labelled "N/A". When nothing usable is found the built-in
// sample dataset is returned instead, marked Synthetic.
func (e *Extractor) Extract(rows []parser.TabularRow) Dataset {
	roles := make(map[string]FieldRole)
	roleOf := func(header string) FieldRole {
		if role, ok := roles[header]; ok {
			return role
		}
		role := e.classifier.Classify(header)
		roles[header] = role
		return role
	}

	var revenues, expenses []PeriodEntry
	for _, row := range rows {
		var revenue, expense float64
		period := "N/A"
		for _, header := range row.Headers() {
			switch roleOf(header) {
			case RoleRevenue:
				revenue = ParseNumber(row.Get(header))
			case RoleExpense:
				expense = ParseNumber(row.Get(header))
			case RolePeriod:
				if v := row.Get(header); v != "" {
					period = v
				}
			}
		}
		if revenue > 0 {
			revenues = append(revenues, PeriodEntry{Period: period, Amount: revenue})
		}
		if expense > 0 {
			expenses = append(expenses, PeriodEntry{Period: period, Amount: expense})
		}
	}

	if len(revenues) == 0 && len(expenses) == 0 {
		return SampleDataset()
	}
	return e.derive(revenues, expenses)
}

// Merge combines the datasets of several documents into one. Synthetic
// datasets never mix with real ones: they are dropped unless every input is
// synthetic, in which case the first synthetic dataset is returned as-is.
func (e *Extractor) Merge(sets ...Dataset) Dataset {
	var revenues, expenses []PeriodEntry
	derived := false
	for _, ds := range sets {
		if ds.Synthetic || ds.Empty() {
			continue
		}
		derived = true
		revenues = append(revenues, ds.Revenues...)
		expenses = append(expenses, ds.Expenses...)
	}
	if !derived {
		for _, ds := range sets {
			if ds.Synthetic {
				return ds
			}
		}
		return Dataset{}
	}
	return e.derive(revenues, expenses)
}

func (e *Extractor) derive(revenues, expenses []PeriodEntry) Dataset {
	totalRevenue := sumEntries(revenues)
	totalExpense := sumEntries(expenses)

	netProfit := totalRevenue - totalExpense
	margin := 0.0
	if totalRevenue > 0 {
		margin = netProfit / totalRevenue * 100
	}

	return Dataset{
		Revenues:  revenues,
		Expenses:  expenses,
		NetProfit: netProfit,
		Margin:    margin,
		Taxes:     totalRevenue * e.taxRate,
	}
}
