package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/hmhhmm/apex-insurance/internal/db"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// DBClient is the storage the account endpoints need. *db.DB implements it.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, phone, avatarID string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	SaveProfile(ctx context.Context, userID uuid.UUID, profile *types.UserProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*db.SavedProfile, error)

	SaveRecommendation(ctx context.Context, userID uuid.UUID, bundle *types.RecommendationBundle) (uuid.UUID, error)
	ListRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]db.SavedRecommendation, error)
	GetRecommendation(ctx context.Context, userID, id uuid.UUID) (*db.SavedRecommendation, error)

	Ping(ctx context.Context) error
	Close()
}

var _ DBClient = (*db.DB)(nil)
