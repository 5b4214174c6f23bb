package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/db"
	"github.com/hmhhmm/apex-insurance/internal/server/middleware"
)

// HistoryResponse is the body of GET /me/recommendations.
type HistoryResponse struct {
	Recommendations []db.SavedRecommendation `json:"recommendations"`
}

// authenticatedUser returns the caller's ID or writes 401.
func authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	saved, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if saved == nil {
		writeError(w, s.logger, &ErrProfileNotFound{UserID: userID})
		return
	}
	jsonResponse(w, http.StatusOK, saved)
}

// handleSaveProfile validates and stores the wizard answers, replacing earlier ones.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	profile, err := s.readProfile(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.db.SaveProfile(r.Context(), userID, profile); err != nil {
		writeError(w, s.logger, err)
		return
	}

	saved, err := s.db.GetProfile(r.Context(), userID)
	if err != nil || saved == nil {
		// Saved but not readable back; echo the accepted answers.
		jsonResponse(w, http.StatusOK, db.SavedProfile{UserID: userID, Profile: *profile})
		return
	}
	jsonResponse(w, http.StatusOK, saved)
}

// handleCreateRecommendation ranks the caller's saved profile and appends the bundle to their history.
func (s *Server) handleCreateRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	saved, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if saved == nil {
		writeError(w, s.logger, &ErrProfileNotFound{UserID: userID})
		return
	}

	bundle := s.advisor.Recommend(r.Context(), &saved.Profile, s.catalog)
	id, err := s.db.SaveRecommendation(r.Context(), userID, bundle)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.logger.Info("recommendation saved",
		zap.String("user_id", userID.String()),
		zap.String("recommendation_id", id.String()),
		zap.Int("risk_value", bundle.RiskValue),
	)

	jsonResponse(w, http.StatusCreated, db.SavedRecommendation{
		ID:        id,
		UserID:    userID,
		RiskValue: bundle.RiskValue,
		Bundle:    *bundle,
	})
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, s.logger, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	recs, err := s.db.ListRecommendations(r.Context(), userID, limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if recs == nil {
		recs = []db.SavedRecommendation{}
	}
	jsonResponse(w, http.StatusOK, HistoryResponse{Recommendations: recs})
}

func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	rec, err := s.db.GetRecommendation(r.Context(), userID, id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if rec == nil {
		writeError(w, s.logger, &ErrRecommendationNotFound{ID: id})
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}
