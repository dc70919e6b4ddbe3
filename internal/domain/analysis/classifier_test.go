package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldClassifier(t *testing.T) {
	c := NewFieldClassifier()

	tests := []struct {
		header string
		want   FieldRole
	}{
		{"receita", RoleRevenue},
		{"Receita Bruta", RoleRevenue},
		{"FATURAMENTO", RoleRevenue},
		{"vendas_2024", RoleRevenue},
		{"monthly revenue", RoleRevenue},
		{"despesa", RoleExpense},
		{"Custo Fixo", RoleExpense},
		{"gastos operacionais", RoleExpense},
		{"mes", RolePeriod},
		{"Mês", RolePeriod},
		{"período", RolePeriod},
		{"date", RolePeriod},
		{"observações", RoleUnknown},
		{"", RoleUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.header))
		})
	}

	t.Run("revenue wins over period in mixed headers", func(t *testing.T) {
		assert.Equal(t, RoleRevenue, c.Classify("receita do mês"))
	})

	t.Run("revenue wins over expense", func(t *testing.T) {
		assert.Equal(t, RoleRevenue, c.Classify("receita vs despesa"))
	})
}
