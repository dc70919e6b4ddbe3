package money

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// TestDataGenerator produces realistic monthly statement data for tests
// using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(0)}
}

// NewTestDataGeneratorWithSeed creates a reproducible generator.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

var statementMonths = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// StatementLine is one month of a generated income statement.
type StatementLine struct {
	Period  string
	Revenue *Money
	Expense *Money
}

// StatementLines generates up to twelve months of revenue/expense pairs.
// Expenses stay below revenues so derived margins land in a plausible range.
func (g *TestDataGenerator) StatementLines(months int) []StatementLine {
	if months > len(statementMonths) {
		months = len(statementMonths)
	}

	lines := make([]StatementLine, 0, months)
	for i := 0; i < months; i++ {
		revenue := g.faker.Float64Range(50000, 300000)
		expense := revenue * g.faker.Float64Range(0.5, 0.95)
		lines = append(lines, StatementLine{
			Period:  statementMonths[i],
			Revenue: BRLFromFloat(revenue),
			Expense: BRLFromFloat(expense),
		})
	}
	return lines
}

// StatementCSV renders generated lines as the CSV shape uploads carry.
func (g *TestDataGenerator) StatementCSV(months int) string {
	var b strings.Builder
	b.WriteString("mes,receita,despesa\n")
	for _, line := range g.StatementLines(months) {
		fmt.Fprintf(&b, "%s,%.2f,%.2f\n",
			line.Period, line.Revenue.ToFloat64(), line.Expense.ToFloat64())
	}
	return b.String()
}

// CompanyName returns a fake company name for document titles.
func (g *TestDataGenerator) CompanyName() string {
	return g.faker.Company()
}
