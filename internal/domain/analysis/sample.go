package analysis

// SampleDataset returns the demonstration dataset shown when no uploaded
// document yields usable figures. The aggregate values are fixed alongside
// the series and are not recomputed from them.
func SampleDataset() Dataset {
	return Dataset{
		Revenues: []PeriodEntry{
			{Period: "Janeiro", Amount: 150000},
			{Period: "Fevereiro", Amount: 165000},
			{Period: "Março", Amount: 178000},
			{Period: "Abril", Amount: 192000},
			{Period: "Maio", Amount: 186000},
		},
		Expenses: []PeriodEntry{
			{Period: "Janeiro", Amount: 95000},
			{Period: "Fevereiro", Amount: 102000},
			{Period: "Março", Amount: 108000},
			{Period: "Abril", Amount: 115000},
			{Period: "Maio", Amount: 112000},
		},
		NetProfit: 81000,
		Margin:    18.5,
		Taxes:     127650,
		Synthetic: true,
	}
}
