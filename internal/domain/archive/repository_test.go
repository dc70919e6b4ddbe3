package archive

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/chat"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
)

func TestSaveDocument(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	doc := document.Document{
		ID:         uuid.New(),
		Name:       "balancete.csv",
		Kind:       document.KindCSV,
		SizeBytes:  42,
		UploadedAt: time.Now(),
		Dataset:    analysis.SampleDataset(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, "sess-1", doc.Name, "csv", doc.SizeBytes, doc.UploadedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.SaveDocument(context.Background(), "sess-1", doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTurn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	turn := chat.Turn{
		ID:        uuid.New(),
		Role:      chat.RoleAssistant,
		Text:      "## 💰 Análise de Lucro Líquido",
		Timestamp: time.Now(),
	}

	mock.ExpectExec("INSERT INTO chat_turns").
		WithArgs(turn.ID, "sess-1", "assistant", turn.Text, turn.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.SaveTurn(context.Background(), "sess-1", turn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTurns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	first := uuid.New()
	second := uuid.New()

	mock.ExpectQuery("SELECT id, role, text, created_at").
		WithArgs("sess-1", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "role", "text", "created_at"}).
			AddRow(first, "user", "Qual foi o lucro?", now).
			AddRow(second, "assistant", "R$500,00", now.Add(time.Second)))

	repo := NewRepository(mock)
	turns, err := repo.ListTurns(context.Background(), "sess-1", 0)
	require.NoError(t, err)

	require.Len(t, turns, 2)
	assert.Equal(t, first, turns[0].ID)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
	assert.Equal(t, chat.RoleAssistant, turns[1].Role)
	assert.Equal(t, "R$500,00", turns[1].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTurnsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, role, text, created_at").
		WithArgs("sess-1", 10).
		WillReturnError(assert.AnError)

	repo := NewRepository(mock)
	_, err = repo.ListTurns(context.Background(), "sess-1", 10)
	assert.Error(t, err)
}
