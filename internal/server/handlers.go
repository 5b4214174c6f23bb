package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/catalog"
	"github.com/hmhhmm/apex-insurance/internal/chat"
	"github.com/hmhhmm/apex-insurance/internal/risk"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// healthPingTimeout bounds the database check in /health.
const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Narrative bool   `json:"narrative"`
	Plans     int    `json:"plans"`
}

// PlansResponse is the body of GET /plans.
type PlansResponse struct {
	Plans []types.InsurancePlan `json:"plans"`
	Types []string              `json:"types"`
}

// RiskResponse is the body of POST /risk.
type RiskResponse struct {
	RiskValue int       `json:"risk_value"`
	Tier      risk.Tier `json:"tier"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "disabled",
		Narrative: s.advisor.NarrativeEnabled(),
		Plans:     len(s.catalog),
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("database ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "unavailable"
			jsonResponse(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "ok"
	}

	jsonResponse(w, http.StatusOK, resp)
}

// handleListPlans returns the catalog, optionally filtered by ?type=.
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans := s.catalog
	if planType := strings.TrimSpace(r.URL.Query().Get("type")); planType != "" {
		plans = catalog.FilterByType(s.catalog, planType)
	}
	if plans == nil {
		plans = []types.InsurancePlan{}
	}
	jsonResponse(w, http.StatusOK, PlansResponse{Plans: plans, Types: catalog.Types(s.catalog)})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := catalog.ByID(s.catalog, r.PathValue("id"))
	if !ok {
		errorResponse(w, http.StatusNotFound, "plan not found")
		return
	}
	jsonResponse(w, http.StatusOK, plan)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	profile, err := s.readProfile(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	value := risk.ComputeRisk(profile)
	jsonResponse(w, http.StatusOK, RiskResponse{RiskValue: value, Tier: risk.TierOf(value)})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	profile, err := s.readProfile(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	jsonResponse(w, http.StatusOK, s.advisor.Recommend(r.Context(), profile, s.catalog))
}

// readProfile decodes and validates a wizard profile from the request body.
func (s *Server) readProfile(w http.ResponseWriter, r *http.Request) (*types.UserProfile, error) {
	var profile types.UserProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, validationError(err)
	}
	return &profile, nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := readChatRequest(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	resp, err := s.assistant.Reply(r.Context(), *req)
	if err != nil {
		writeError(w, s.logger, chatError(err))
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// handleChatStream relays the reply as SSE chunk events followed by one complete event.
// Request errors are reported as plain JSON before the stream opens.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := readChatRequest(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)

	resp, err := s.assistant.Stream(r.Context(), *req, sse.WriteChunk)
	if err != nil {
		// The client is usually gone at this point; the error event is best effort.
		s.logger.Warn("chat stream aborted", zap.Error(err))
		sse.WriteError("stream interrupted")
		return
	}
	sse.WriteComplete(resp)
}

func readChatRequest(w http.ResponseWriter, r *http.Request) (*types.ChatRequest, error) {
	var req types.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, chatError(chat.ErrEmptyMessage)
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	return &req, nil
}

func chatError(err error) error {
	if errors.Is(err, chat.ErrEmptyMessage) {
		return &ErrValidation{Field: "message", Message: "must not be empty"}
	}
	return validationError(err)
}
