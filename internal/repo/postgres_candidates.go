package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rbalint/candidate-outreach/internal/model"
)

const undefinedTable = "42P01"

type PostgresCandidateStore struct {
	db *sql.DB

	mu    sync.Mutex
	state ConnState
}

func NewPostgresCandidateStore(db *sql.DB) *PostgresCandidateStore {
	return &PostgresCandidateStore{db: db, state: StateConnected}
}

func (s *PostgresCandidateStore) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PostgresCandidateStore) offline() bool {
	return s.State() == StateOffline
}

func (s *PostgresCandidateStore) setState(state ConnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// checkErr downgrades to offline when the candidates table is missing.
// Any other error is returned for the caller to log and swallow.
func (s *PostgresCandidateStore) checkErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		slog.Warn("candidates table missing, store going offline")
		s.setState(StateOffline)
		return nil
	}
	return err
}

func (s *PostgresCandidateStore) List(ctx context.Context) ([]model.Candidate, ConnState, error) {
	if s.offline() {
		return nil, StateOffline, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, original_row, status
		FROM candidates
		ORDER BY created_at ASC
	`)
	if err != nil {
		if cerr := s.checkErr(err); cerr != nil {
			return nil, s.State(), cerr
		}
		return nil, s.State(), nil
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		var c model.Candidate
		var status string
		var rawRow []byte

		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &rawRow, &status); err != nil {
			return nil, s.State(), err
		}

		c.Status = model.Status(status)
		if len(rawRow) > 0 {
			if err := json.Unmarshal(rawRow, &c.OriginalRow); err != nil {
				return nil, s.State(), err
			}
		}
		out = append(out, c)
	}
	return out, s.State(), rows.Err()
}

func (s *PostgresCandidateStore) Upsert(ctx context.Context, candidates []model.Candidate) error {
	if s.offline() || len(candidates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.checkErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range candidates {
		rawRow, err := json.Marshal(c.OriginalRow)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (id, name, phone, original_row, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    phone = EXCLUDED.phone,
			    original_row = EXCLUDED.original_row,
			    status = EXCLUDED.status,
			    updated_at = now()
		`, c.ID, c.Name, c.Phone, rawRow, string(c.Status)); err != nil {
			return s.checkErr(err)
		}
	}

	return s.checkErr(tx.Commit())
}

func (s *PostgresCandidateStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if s.offline() {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, string(status))
	return s.checkErr(err)
}

func (s *PostgresCandidateStore) ClearAll(ctx context.Context) error {
	if s.offline() {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM candidates`)
	return s.checkErr(err)
}

func (s *PostgresCandidateStore) Verify(ctx context.Context) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM candidates LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			s.setState(StateOffline)
			return errors.New("candidates table is missing")
		}
		return err
	}

	s.setState(StateConnected)
	return nil
}
