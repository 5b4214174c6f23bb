package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/hmhhmm/apex-insurance/internal/types"
)

// Recommendation history limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// SavedRecommendation is a bundle stored in a user's history.
type SavedRecommendation struct {
	ID        uuid.UUID                  `json:"id"`
	UserID    uuid.UUID                  `json:"user_id"`
	RiskValue int                        `json:"risk_value"`
	Bundle    types.RecommendationBundle `json:"bundle"`
	CreatedAt time.Time                  `json:"created_at"`
}

// SaveRecommendation appends bundle to the user's history and returns its ID.
func (db *DB) SaveRecommendation(ctx context.Context, userID uuid.UUID, bundle *types.RecommendationBundle) (uuid.UUID, error) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "failed to marshal recommendation")
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO recommendations (id, user_id, risk_value, bundle) VALUES ($1, $2, $3, $4)`,
		id, userID, bundle.RiskValue, data,
	)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "failed to save recommendation")
	}
	return id, nil
}

// ListRecommendations returns the user's history, newest first. limit is clamped to
// [1, MaxHistoryLimit]; zero or negative uses DefaultHistoryLimit.
func (db *DB) ListRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]SavedRecommendation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, risk_value, bundle, created_at
		 FROM recommendations WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list recommendations")
	}
	defer rows.Close()

	out := []SavedRecommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to iterate recommendations")
	}
	return out, nil
}

// GetRecommendation returns one of the user's saved bundles, or nil if it does not
// exist or belongs to another user.
func (db *DB) GetRecommendation(ctx context.Context, userID, id uuid.UUID) (*SavedRecommendation, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, user_id, risk_value, bundle, created_at
		 FROM recommendations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	rec, err := scanRecommendation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func scanRecommendation(row pgx.Row) (*SavedRecommendation, error) {
	var (
		rec  SavedRecommendation
		data []byte
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.RiskValue, &data, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "failed to scan recommendation")
	}
	if err := json.Unmarshal(data, &rec.Bundle); err != nil {
		return nil, eris.Wrap(err, "failed to decode stored recommendation")
	}
	return &rec, nil
}
