package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	t.Run("writes period aligned rows", func(t *testing.T) {
		ds := Dataset{
			Revenues: []PeriodEntry{{"Janeiro", 1000}, {"Fevereiro", 1200}},
			Expenses: []PeriodEntry{{"Janeiro", 800}, {"Fevereiro", 900}},
		}

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(ds, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "periodo,receita,despesa,lucro", lines[0])
		assert.Equal(t, "Janeiro,1000,800,200", lines[1])
		assert.Equal(t, "Fevereiro,1200,900,300", lines[2])
	})

	t.Run("missing expense defaults to zero", func(t *testing.T) {
		ds := Dataset{
			Revenues: []PeriodEntry{{"Janeiro", 1000}, {"Fevereiro", 1200}},
			Expenses: []PeriodEntry{{"Janeiro", 800}},
		}

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(ds, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Fevereiro,1200,0,1200", lines[2])
	})

	t.Run("empty dataset writes header only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(Dataset{}, &buf))
		assert.Equal(t, "periodo,receita,despesa,lucro", strings.TrimSpace(buf.String()))
	})
}
