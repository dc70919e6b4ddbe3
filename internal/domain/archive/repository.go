// Package archive persists document metadata and completed chat turns
// when the archive database is enabled. The conversation itself still
// lives in memory; the archive is a write-behind record.
package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ericlbarreto/conta-ai/internal/domain/chat"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository writes archive rows with plain SQL.
type Repository struct {
	db DB
}

// NewRepository creates the archive repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// SaveDocument records one processed document under its session.
func (r *Repository) SaveDocument(ctx context.Context, sessionID string, doc document.Document) error {
	dataset, err := json.Marshal(doc.Dataset)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO documents (id, session_id, name, kind, size_bytes, uploaded_at, dataset)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		doc.ID, sessionID, doc.Name, string(doc.Kind), doc.SizeBytes, doc.UploadedAt, dataset,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// SaveTurn records one transcript entry under its session.
func (r *Repository) SaveTurn(ctx context.Context, sessionID string, turn chat.Turn) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_turns (id, session_id, role, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		turn.ID, sessionID, string(turn.Role), turn.Text, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert chat turn: %w", err)
	}
	return nil
}

// ListTurns returns up to limit archived turns of a session, oldest first.
func (r *Repository) ListTurns(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, role, text, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query chat turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var (
			id   uuid.UUID
			role string
			turn chat.Turn
		)
		if err := rows.Scan(&id, &role, &turn.Text, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		turn.ID = id
		turn.Role = chat.Role(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat turns: %w", err)
	}
	return turns, nil
}
