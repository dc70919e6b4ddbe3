package chat

import (
	"fmt"
	"strings"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/pkg/money"
)

// NoInformationMessage is the sentinel returned whenever a template would
// need a figure the dataset cannot support, zero-denominator ratios
// included.
const NoInformationMessage = "❌ Não encontrei essa informação nos documentos enviados"

// healthyMarginThreshold splits the recommendation block between the
// healthy and the needs-attention branch.
const healthyMarginThreshold = 15.0

// Composer renders an answer for a recognized intent from the dataset
// alone. It is deterministic and touches no external state.
type Composer struct{}

// NewComposer returns the template renderer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose renders the answer for a classification. Unknown intents render
// the default capabilities message.
func (c *Composer) Compose(cls Classification, ds analysis.Dataset) string {
	switch cls.Intent {
	case IntentNoDocuments:
		return NoDocumentsMessage()
	case IntentNetProfit:
		return c.netProfit(ds)
	case IntentSummary:
		return c.summary(ds)
	case IntentChart:
		return c.chartSuggestions(ds)
	case IntentRevenue:
		return c.revenue(ds)
	case IntentExpense:
		return c.expense(ds)
	case IntentTrend:
		return c.trend(ds)
	case IntentTax:
		return c.tax(ds)
	case IntentPeriod:
		return c.period(ds, cls.Period)
	default:
		return c.capabilities()
	}
}

func (c *Composer) netProfit(ds analysis.Dataset) string {
	if ds.Empty() || ds.TotalRevenue() <= 0 {
		return NoInformationMessage
	}

	var b strings.Builder
	b.WriteString("## 💰 Análise de Lucro Líquido\n\n")
	fmt.Fprintf(&b, "• **Receita total:** %s\n", brl(ds.TotalRevenue()))
	fmt.Fprintf(&b, "• **Despesa total:** %s\n", brl(ds.TotalExpense()))
	fmt.Fprintf(&b, "• **Lucro líquido:** %s\n", brl(ds.NetProfit))
	fmt.Fprintf(&b, "• **Margem de lucro:** %s\n", pct(ds.Margin))
	b.WriteString("\n")
	b.WriteString(c.marginRecommendation(ds.Margin))
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) summary(ds analysis.Dataset) string {
	if ds.Empty() {
		return NoInformationMessage
	}

	var b strings.Builder
	b.WriteString("## 📋 Resumo Executivo\n\n")
	fmt.Fprintf(&b, "Período analisado: **%d meses** com dados.\n\n", len(ds.PeriodLabels()))
	fmt.Fprintf(&b, "• 📊 **Receitas:** %s\n", brl(ds.TotalRevenue()))
	fmt.Fprintf(&b, "• 💸 **Despesas:** %s\n", brl(ds.TotalExpense()))
	fmt.Fprintf(&b, "• 💰 **Lucro líquido:** %s\n", brl(ds.NetProfit))
	fmt.Fprintf(&b, "• 🏛️ **Impostos estimados:** %s\n", brl(ds.Taxes))
	if ds.TotalRevenue() > 0 {
		fmt.Fprintf(&b, "• 📈 **Margem:** %s\n", pct(ds.Margin))
		b.WriteString("\n")
		b.WriteString(c.marginRecommendation(ds.Margin))
	}
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) chartSuggestions(ds analysis.Dataset) string {
	if ds.Empty() {
		return NoInformationMessage
	}

	var b strings.Builder
	b.WriteString("## 📈 Sugestões de Visualização\n\n")
	b.WriteString("Com os dados enviados, recomendo estes gráficos:\n\n")
	b.WriteString("• 📉 **Linha — Evolução Receitas vs Despesas:** acompanhe a trajetória mês a mês\n")
	b.WriteString("• 📊 **Barras — Comparativo Mensal de Performance:** receitas, despesas e lucro lado a lado\n")
	b.WriteString("• 🥧 **Pizza — Distribuição Financeira:** proporção entre receitas, despesas e impostos\n")
	b.WriteString("• 📈 **Área — Margem por Período:** saúde da operação ao longo do tempo\n")
	b.WriteString("\nOs dados prontos para cada gráfico estão disponíveis na aba de visualizações.")
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) revenue(ds analysis.Dataset) string {
	if len(ds.Revenues) == 0 {
		return NoInformationMessage
	}

	var b strings.Builder
	b.WriteString("## 📊 Análise de Receitas\n\n")
	for _, e := range ds.Revenues {
		fmt.Fprintf(&b, "• **%s:** %s\n", e.Period, brl(e.Amount))
	}
	fmt.Fprintf(&b, "\n• **Total:** %s\n", brl(ds.TotalRevenue()))

	best := ds.Revenues[0]
	for _, e := range ds.Revenues[1:] {
		if e.Amount > best.Amount {
			best = e
		}
	}
	fmt.Fprintf(&b, "• 🏆 **Melhor período:** %s (%s)\n", best.Period, brl(best.Amount))
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) expense(ds analysis.Dataset) string {
	if len(ds.Expenses) == 0 {
		return NoInformationMessage
	}

	var b strings.Builder
	b.WriteString("## 💸 Análise de Despesas\n\n")
	for _, e := range ds.Expenses {
		fmt.Fprintf(&b, "• **%s:** %s\n", e.Period, brl(e.Amount))
	}
	fmt.Fprintf(&b, "\n• **Total:** %s\n", brl(ds.TotalExpense()))

	biggest := ds.Expenses[0]
	for _, e := range ds.Expenses[1:] {
		if e.Amount > biggest.Amount {
			biggest = e
		}
	}
	fmt.Fprintf(&b, "• ⚠️ **Maior despesa:** %s (%s)\n", biggest.Period, brl(biggest.Amount))

	if ds.TotalRevenue() > 0 {
		share := ds.TotalExpense() / ds.TotalRevenue() * 100
		fmt.Fprintf(&b, "• 📐 **Despesas sobre receitas:** %s\n", pct(share))
	}
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) trend(ds analysis.Dataset) string {
	if len(ds.Revenues) < 2 {
		return NoInformationMessage
	}

	first := ds.Revenues[0]
	last := ds.Revenues[len(ds.Revenues)-1]
	if first.Amount <= 0 {
		return NoInformationMessage
	}
	growth := (last.Amount - first.Amount) / first.Amount * 100

	var b strings.Builder
	b.WriteString("## 🔍 Tendências Identificadas\n\n")
	direction := "📈 crescimento"
	if growth < 0 {
		direction = "📉 queda"
	}
	fmt.Fprintf(&b, "• **Receitas:** %s de %s entre %s e %s\n",
		direction, pct(abs(growth)), first.Period, last.Period)

	if len(ds.Expenses) >= 2 && ds.Expenses[0].Amount > 0 {
		ef := ds.Expenses[0]
		el := ds.Expenses[len(ds.Expenses)-1]
		eg := (el.Amount - ef.Amount) / ef.Amount * 100
		edir := "📈 alta"
		if eg < 0 {
			edir = "📉 redução"
		}
		fmt.Fprintf(&b, "• **Despesas:** %s de %s no mesmo intervalo\n", edir, pct(abs(eg)))
	}

	if ds.TotalRevenue() > 0 {
		fmt.Fprintf(&b, "• **Margem acumulada:** %s\n", pct(ds.Margin))
		b.WriteString("\n")
		b.WriteString(c.marginRecommendation(ds.Margin))
	}
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) tax(ds analysis.Dataset) string {
	if ds.Empty() || ds.TotalRevenue() <= 0 {
		return NoInformationMessage
	}

	effective := ds.Taxes / ds.TotalRevenue() * 100

	var b strings.Builder
	b.WriteString("## 🏛️ Análise de Impostos\n\n")
	fmt.Fprintf(&b, "• **Impostos estimados:** %s\n", brl(ds.Taxes))
	fmt.Fprintf(&b, "• **Alíquota efetiva sobre receitas:** %s\n", pct(effective))
	fmt.Fprintf(&b, "• **Receita total considerada:** %s\n", brl(ds.TotalRevenue()))
	b.WriteString("\n💡 Valores estimados a partir das receitas informadas; consulte seu contador para a apuração oficial.")
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) period(ds analysis.Dataset, label string) string {
	revenue, hasRevenue := ds.RevenueFor(label)
	expense, hasExpense := ds.ExpenseFor(label)
	if !hasRevenue && !hasExpense {
		return NoInformationMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 📅 Resultado de %s\n\n", label)
	if hasRevenue {
		fmt.Fprintf(&b, "• **Receita:** %s\n", brl(revenue.Amount))
	}
	if hasExpense {
		fmt.Fprintf(&b, "• **Despesa:** %s\n", brl(expense.Amount))
	}
	if hasRevenue && hasExpense {
		profit := revenue.Amount - expense.Amount
		fmt.Fprintf(&b, "• **Lucro do período:** %s\n", brl(profit))
		if revenue.Amount > 0 {
			fmt.Fprintf(&b, "• **Margem do período:** %s\n", pct(profit/revenue.Amount*100))
		}
	}
	return c.withSyntheticNote(b.String(), ds)
}

func (c *Composer) capabilities() string {
	return `## 🤖 Como posso ajudar?

Analiso os documentos enviados e respondo perguntas como:

• "Qual foi o lucro líquido no último período?"
• "Gere um resumo das receitas e despesas"
• "Sugira gráficos para análise dos dados"
• "Identifique tendências nos números"
• "Quanto paguei de impostos?"

**Pergunte sobre receitas, despesas, lucros, margens, impostos ou períodos específicos!** ✨`
}

func (c *Composer) marginRecommendation(margin float64) string {
	if margin > healthyMarginThreshold {
		return fmt.Sprintf("✅ **Margem saudável!** Com %s, a operação está acima do patamar de referência de %s.", pct(margin), pct(healthyMarginThreshold))
	}
	return fmt.Sprintf("⚠️ **Margem precisa de atenção.** Com %s, vale revisar custos e renegociar despesas para superar os %s de referência.", pct(margin), pct(healthyMarginThreshold))
}

func (c *Composer) withSyntheticNote(text string, ds analysis.Dataset) string {
	if !ds.Synthetic {
		return text
	}
	return text + "\n\n📌 _Valores de demonstração — envie seus documentos para uma análise real._"
}

// NoDocumentsMessage is the onboarding answer when nothing was uploaded.
func NoDocumentsMessage() string {
	return `📋 **Olá! Sou o ContaBot Pro, seu assistente contábil inteligente** 😊

Para começarmos a análise, preciso que você envie seus documentos contábeis (PDF, Excel ou CSV).

**Após o upload, poderei ajudá-lo com:**
• 📊 Análise detalhada de receitas e despesas
• 💰 Cálculos de lucros e margens
• 📈 Sugestões de gráficos e visualizações
• 📋 Resumos executivos personalizados
• 🔍 Identificação de tendências financeiras
• 🏛️ Análise de impostos e tributos

**Envie seus documentos e faça perguntas como:**
• "Qual foi o lucro líquido em abril?"
• "Gere um resumo das receitas do trimestre"
• "Sugira gráficos para visualizar os dados"
• "Analise as tendências de despesas"

**Estou aqui para tornar sua análise contábil mais rápida e precisa!** ✨`
}

func brl(v float64) string {
	return money.BRLFromFloat(v).Display()
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
