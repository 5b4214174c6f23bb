package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/config"
	"github.com/hmhhmm/apex-insurance/internal/db"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// UserService provides business logic for user authentication operations
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
	logger         *zap.Logger
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
		logger:         zap.L().With(zap.String("component", "users")),
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:          dbUser.ID,
		Name:        dbUser.Name,
		Email:       dbUser.Email,
		Phone:       dbUser.Phone,
		AvatarID:    dbUser.AvatarID,
		PasswordSet: dbUser.PasswordSet,
		CreatedAt:   dbUser.CreatedAt,
		UpdatedAt:   dbUser.UpdatedAt,
	}
}

// Register creates a new user with password authentication. If the password cannot
// be stored the half-created user is deleted.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, eris.Wrap(err, "failed to check email existence")
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		if eris.Is(err, config.ErrPasswordTooLong) {
			return nil, &ErrValidation{Field: "Password", Message: "max"}
		}
		return nil, eris.Wrap(err, "failed to hash password")
	}

	userID, err := s.db.CreateUser(ctx, req.Name, req.Email, req.Phone, req.AvatarID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create user")
	}

	if err := s.db.UpdatePassword(ctx, userID, passwordHash); err != nil {
		if derr := s.db.DeleteUser(ctx, userID); derr != nil {
			s.logger.Error("failed to clean up user after password error",
				zap.String("user_id", userID.String()), zap.Error(derr))
		}
		return nil, eris.Wrap(err, "failed to set password")
	}

	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to retrieve created user")
	}
	if dbUser == nil {
		return nil, eris.Errorf("created user not found: %s", userID)
	}

	s.logger.Info("user registered", zap.String("user_id", userID.String()))
	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user. Unknown emails and wrong passwords give the same error.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, eris.Wrap(err, "failed to get user by email")
	}
	if dbUser == nil || !dbUser.PasswordSet {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// GetUser returns the account for userID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to get user")
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return eris.Wrap(err, "failed to get user")
	}
	if dbUser == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, dbUser.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		if eris.Is(err, config.ErrPasswordTooLong) {
			return &ErrValidation{Field: "NewPassword", Message: "max"}
		}
		return eris.Wrap(err, "failed to hash new password")
	}

	if err := s.db.UpdatePassword(ctx, userID, newPasswordHash); err != nil {
		if eris.Is(err, db.ErrNotFound) {
			return &ErrUserNotFound{UserID: userID}
		}
		return eris.Wrap(err, "failed to update password")
	}

	return nil
}
