// Package analysis extracts a financial dataset out of tabular document
// rows and derives the aggregate metrics the chat layer answers from.
package analysis

// PeriodEntry is one monetary value attributed to a period label.
type PeriodEntry struct {
	Period string  `json:"periodo"`
	Amount float64 `json:"valor"`
}

// Dataset is the financial picture recovered from one or more documents.
// Synthetic marks the built-in demonstration dataset used when extraction
// finds nothing usable.
type Dataset struct {
	Revenues  []PeriodEntry `json:"receitas"`
	Expenses  []PeriodEntry `json:"despesas"`
	NetProfit float64       `json:"lucroLiquido"`
	Margin    float64       `json:"margemLucro"`
	Taxes     float64       `json:"impostos"`
	Synthetic bool          `json:"-"`
}

// Empty reports whether the dataset carries no series at all.
func (d Dataset) Empty() bool {
	return len(d.Revenues) == 0 && len(d.Expenses) == 0
}

// TotalRevenue sums the revenue series.
func (d Dataset) TotalRevenue() float64 {
	return sumEntries(d.Revenues)
}

// TotalExpense sums the expense series.
func (d Dataset) TotalExpense() float64 {
	return sumEntries(d.Expenses)
}

// PeriodLabels returns the distinct period labels in series order, revenue
// series first.
func (d Dataset) PeriodLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, e := range append(append([]PeriodEntry{}, d.Revenues...), d.Expenses...) {
		if e.Period == "" || seen[e.Period] {
			continue
		}
		seen[e.Period] = true
		labels = append(labels, e.Period)
	}
	return labels
}

// RevenueFor returns the revenue entry for the given period label.
func (d Dataset) RevenueFor(period string) (PeriodEntry, bool) {
	return entryFor(d.Revenues, period)
}

// ExpenseFor returns the expense entry for the given period label.
func (d Dataset) ExpenseFor(period string) (PeriodEntry, bool) {
	return entryFor(d.Expenses, period)
}

func entryFor(entries []PeriodEntry, period string) (PeriodEntry, bool) {
	for _, e := range entries {
		if e.Period == period {
			return e, true
		}
	}
	return PeriodEntry{}, false
}

func sumEntries(entries []PeriodEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}
