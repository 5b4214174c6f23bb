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

// SavedProfile is the latest set of wizard answers for a user.
type SavedProfile struct {
	UserID    uuid.UUID         `json:"user_id"`
	Profile   types.UserProfile `json:"profile"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SaveProfile stores the user's wizard answers, replacing any previous ones.
func (db *DB) SaveProfile(ctx context.Context, userID uuid.UUID, profile *types.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "failed to marshal profile")
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, profile, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = now()`,
		userID, data,
	)
	if err != nil {
		return eris.Wrap(err, "failed to save profile")
	}
	return nil
}

// GetProfile returns the saved answers for userID, or nil if none were saved.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*SavedProfile, error) {
	var (
		data []byte
		sp   = SavedProfile{UserID: userID}
	)
	err := db.pool.QueryRow(ctx,
		`SELECT profile, updated_at FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&data, &sp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get profile")
	}

	if err := json.Unmarshal(data, &sp.Profile); err != nil {
		return nil, eris.Wrap(err, "failed to decode stored profile")
	}
	return &sp, nil
}
