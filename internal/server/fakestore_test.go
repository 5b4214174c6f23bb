package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hmhhmm/apex-insurance/internal/config"
	"github.com/hmhhmm/apex-insurance/internal/db"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
}

// fakeStore is an in-memory DBClient. Setting failOn makes the named method fail.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	profiles map[uuid.UUID]*db.SavedProfile
	recs     []db.SavedRecommendation
	failOn   map[string]error
	clock    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*db.User),
		profiles: make(map[uuid.UUID]*db.SavedProfile),
		failOn:   make(map[string]error),
		clock:    time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) fail(method string) error {
	return f.failOn[method]
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeStore) CreateUser(_ context.Context, name, email, phone, avatarID string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateUser"); err != nil {
		return uuid.Nil, err
	}
	now := f.tick()
	u := &db.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     phone,
		AvatarID:  avatarID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetUser"); err != nil {
		return nil, err
	}
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetUserByEmail"); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	if err := f.fail("CheckEmailExists"); err != nil {
		return false, err
	}
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdatePassword"); err != nil {
		return err
	}
	u, ok := f.users[id]
	if !ok {
		return eris.Wrapf(db.ErrNotFound, "user %s", id)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	u.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteUser"); err != nil {
		return err
	}
	delete(f.users, id)
	delete(f.profiles, id)
	return nil
}

func (f *fakeStore) SaveProfile(_ context.Context, userID uuid.UUID, profile *types.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SaveProfile"); err != nil {
		return err
	}
	f.profiles[userID] = &db.SavedProfile{UserID: userID, Profile: *profile, UpdatedAt: f.tick()}
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*db.SavedProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetProfile"); err != nil {
		return nil, err
	}
	if sp, ok := f.profiles[userID]; ok {
		cp := *sp
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) SaveRecommendation(_ context.Context, userID uuid.UUID, bundle *types.RecommendationBundle) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SaveRecommendation"); err != nil {
		return uuid.Nil, err
	}
	rec := db.SavedRecommendation{
		ID:        uuid.New(),
		UserID:    userID,
		RiskValue: bundle.RiskValue,
		Bundle:    *bundle.Clone(),
		CreatedAt: f.tick(),
	}
	f.recs = append(f.recs, rec)
	return rec.ID, nil
}

func (f *fakeStore) ListRecommendations(_ context.Context, userID uuid.UUID, limit int) ([]db.SavedRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ListRecommendations"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = db.DefaultHistoryLimit
	}
	out := []db.SavedRecommendation{}
	for _, rec := range f.recs {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetRecommendation(_ context.Context, userID, id uuid.UUID) (*db.SavedRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetRecommendation"); err != nil {
		return nil, err
	}
	for _, rec := range f.recs {
		if rec.ID == id && rec.UserID == userID {
			cp := rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.fail("Ping")
}

func (f *fakeStore) Close() {}
