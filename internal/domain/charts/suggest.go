// Package charts derives ready-to-render chart suggestions from a
// financial dataset.
package charts

import (
	"fmt"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
)

// Kind is the chart family a suggestion renders as.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
	KindPie  Kind = "pie"
	KindArea Kind = "area"
)

// Axis names the fields a renderer should bind to each axis.
type Axis struct {
	XKey    string `json:"xAxis,omitempty"`
	YKey    string `json:"yAxis,omitempty"`
	DataKey string `json:"dataKey,omitempty"`
}

// Point is one datum of a chart series.
type Point map[string]any

// Spec is a renderable chart suggestion.
type Spec struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Series      []Point `json:"data"`
	Axis        Axis    `json:"config"`
}

// Engine builds chart suggestions. Stateless; suggestions depend only on
// the dataset.
type Engine struct{}

// NewEngine returns the suggestion engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Suggest returns the chart set for a dataset, or nil when it is empty.
// Revenue and expense series are joined by position: entry i of one pairs
// with entry i of the other, and a missing counterpart counts as 0.
func (e *Engine) Suggest(ds analysis.Dataset) []Spec {
	if ds.Empty() {
		return nil
	}

	evolution := alignSeries(ds)

	specs := []Spec{
		{
			ID:          "1",
			Kind:        KindLine,
			Title:       "Evolução Receitas vs Despesas",
			Description: "Acompanhe a evolução temporal das receitas e despesas",
			Series:      evolution,
			Axis:        Axis{XKey: "periodo", YKey: "valor"},
		},
		{
			ID:          "2",
			Kind:        KindBar,
			Title:       "Comparativo Mensal de Performance",
			Description: "Compare receitas, despesas e lucro por período",
			Series:      withProfit(evolution),
			Axis:        Axis{XKey: "periodo"},
		},
		{
			ID:          "3",
			Kind:        KindPie,
			Title:       "Distribuição Financeira",
			Description: "Proporção entre receitas, despesas e impostos",
			Series: []Point{
				{"name": "Receitas", "value": ds.TotalRevenue()},
				{"name": "Despesas", "value": ds.TotalExpense()},
				{"name": "Impostos", "value": ds.Taxes},
			},
			Axis: Axis{DataKey: "value"},
		},
		{
			ID:          "4",
			Kind:        KindArea,
			Title:       "Margem por Período",
			Description: "Margem de lucro calculada período a período",
			Series:      marginSeries(evolution),
			Axis:        Axis{XKey: "periodo", DataKey: "margem"},
		},
	}
	return specs
}

// alignSeries joins the two series by index. The period label comes from
// the revenue entry when present, then the expense entry, then a
// positional fallback.
func alignSeries(ds analysis.Dataset) []Point {
	n := len(ds.Revenues)
	if len(ds.Expenses) > n {
		n = len(ds.Expenses)
	}

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		period := fmt.Sprintf("Período %d", i+1)
		var revenue, expense float64
		if i < len(ds.Revenues) {
			period = ds.Revenues[i].Period
			revenue = ds.Revenues[i].Amount
		} else if i < len(ds.Expenses) {
			period = ds.Expenses[i].Period
		}
		if i < len(ds.Expenses) {
			expense = ds.Expenses[i].Amount
		}
		points = append(points, Point{
			"periodo":  period,
			"receitas": revenue,
			"despesas": expense,
		})
	}
	return points
}

func withProfit(evolution []Point) []Point {
	points := make([]Point, 0, len(evolution))
	for _, p := range evolution {
		revenue := p["receitas"].(float64)
		expense := p["despesas"].(float64)
		points = append(points, Point{
			"periodo":  p["periodo"],
			"receitas": revenue,
			"despesas": expense,
			"lucro":    revenue - expense,
		})
	}
	return points
}

// marginSeries computes the per-period margin, with zero-revenue periods
// reported as 0 instead of a division blowup.
func marginSeries(evolution []Point) []Point {
	points := make([]Point, 0, len(evolution))
	for _, p := range evolution {
		revenue := p["receitas"].(float64)
		expense := p["despesas"].(float64)
		margin := 0.0
		if revenue > 0 {
			margin = (revenue - expense) / revenue * 100
		}
		points = append(points, Point{
			"periodo": p["periodo"],
			"margem":  margin,
		})
	}
	return points
}
