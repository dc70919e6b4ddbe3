package analysis

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

type exportRow struct {
	Period  string  `csv:"periodo"`
	Revenue float64 `csv:"receita"`
	Expense float64 `csv:"despesa"`
	Profit  float64 `csv:"lucro"`
}

// WriteCSV writes the dataset as period-aligned CSV. Series are paired by
// position, the same convention the chart engine uses, with a missing
// counterpart written as 0.
func WriteCSV(ds Dataset, w io.Writer) error {
	n := len(ds.Revenues)
	if len(ds.Expenses) > n {
		n = len(ds.Expenses)
	}

	rows := make([]exportRow, 0, n)
	for i := 0; i < n; i++ {
		var row exportRow
		if i < len(ds.Revenues) {
			row.Period = ds.Revenues[i].Period
			row.Revenue = ds.Revenues[i].Amount
		}
		if i < len(ds.Expenses) {
			if row.Period == "" {
				row.Period = ds.Expenses[i].Period
			}
			row.Expense = ds.Expenses[i].Amount
		}
		if row.Period == "" {
			row.Period = fmt.Sprintf("Período %d", i+1)
		}
		row.Profit = row.Revenue - row.Expense
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write dataset csv: %w", err)
	}
	return nil
}
