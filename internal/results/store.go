// Package results persists the final record of completed calls.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"growify-relay/internal/models"

	"github.com/google/uuid"
)

// Store saves completed-call results and returns the stored record id.
type Store interface {
	SaveCallResult(ctx context.Context, r *models.FinalResults) (string, error)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS call_results (
	id             UUID PRIMARY KEY,
	session_id     TEXT NOT NULL,
	status         TEXT NOT NULL,
	lead_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration       JSONB,
	transcript     JSONB,
	emotions       JSONB,
	extracted_data JSONB,
	created_at     TIMESTAMPTZ NOT NULL
)`

const insertCallResultSQL = `
	INSERT INTO call_results
		(id, session_id, status, lead_score, duration, transcript, emotions, extracted_data, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// EnsureSchema creates the call_results table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create call_results: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveCallResult(ctx context.Context, r *models.FinalResults) (string, error) {
	duration, err := jsonColumn(r.Duration)
	if err != nil {
		return "", err
	}
	transcript, err := jsonColumn(r.Transcript)
	if err != nil {
		return "", err
	}
	emotions, err := jsonColumn(r.Emotions)
	if err != nil {
		return "", err
	}
	extracted, err := jsonColumn(r.ExtractedData)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, insertCallResultSQL,
		id, r.SessionID, r.Status, r.LeadScore,
		duration, transcript, emotions, extracted,
		s.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert call result %s: %w", r.SessionID, err)
	}
	return id, nil
}

// jsonColumn encodes v for a JSONB column; nil values and nil slices and
// maps become SQL NULL.
func jsonColumn(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		if t == nil {
			return nil, nil
		}
	case map[string]interface{}:
		if t == nil {
			return nil, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

// NopStore discards results. Used when persistence is disabled.
type NopStore struct{}

func (NopStore) SaveCallResult(context.Context, *models.FinalResults) (string, error) {
	return "", nil
}
