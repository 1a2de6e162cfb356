package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"watch2give-vendor/internal/actions"
	"watch2give-vendor/internal/analysis"
	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/ledger"
	"watch2give-vendor/internal/observability"
	"watch2give-vendor/internal/proofs"
	"watch2give-vendor/internal/storage"
)

// Response messages.
const (
	msgMissingAnalysisFields = "Missing required fields: tokenId and amount"
	msgAnalysisFailed        = "Failed to analyze token"
	msgInvalidBody           = "invalid request body"
	msgInternal              = "internal server error"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type tokenAnalysisRequest struct {
	TokenID            string          `json:"tokenId" validate:"required"`
	Amount             float64         `json:"amount" validate:"gt=0"`
	TransactionHistory json.RawMessage `json:"transactionHistory,omitempty"`
	MarketData         json.RawMessage `json:"marketData,omitempty"`
}

func (s *Server) handleTokenAnalysis(w http.ResponseWriter, r *http.Request) {
	var body tokenAnalysisRequest
	if err := decodeJSON(w, r, maxJSONBody, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingAnalysisFields)
		return
	}

	resp, err := s.analyzer.Analyze(domain.TokenAnalysisRequest{
		TokenID:            body.TokenID,
		Amount:             body.Amount,
		TransactionHistory: body.TransactionHistory,
		MarketData:         body.MarketData,
	})
	if errors.Is(err, analysis.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, msgMissingAnalysisFields)
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("token analysis failed")
		writeError(w, http.StatusInternalServerError, msgAnalysisFailed)
		return
	}

	observability.RecordTokenAnalysis(string(resp.Recommendation))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.GetOrUpdate(r.Context(), s.now())
	if err != nil {
		s.internalError(w, "update streak", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTokenData(w http.ResponseWriter, r *http.Request) {
	data, err := ledger.TokenData(r.Context(), s.ledger, s.vendor)
	if err != nil {
		s.internalError(w, "token data", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleHoldingMetric(w http.ResponseWriter, r *http.Request) {
	m, err := s.ledger.HoldingMetric(r.Context(), s.vendor)
	if err != nil {
		s.internalError(w, "holding metric", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	feed, err := s.notifications.List(r.Context(), limit)
	if err != nil {
		s.internalError(w, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

type markReadRequest struct {
	ID string `json:"id" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var body markReadRequest
	if err := decodeJSON(w, r, maxJSONBody, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	err := s.notifications.MarkRead(r.Context(), body.ID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		s.internalError(w, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkAllRead(r.Context()); err != nil {
		s.internalError(w, "mark all read", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	var req domain.ActionRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ActionResponse{Message: msgInvalidBody})
		return
	}

	resp, err := s.actions.Submit(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, actions.ErrValidation):
		writeJSON(w, http.StatusBadRequest, domain.ActionResponse{Message: err.Error()})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeJSON(w, http.StatusConflict, domain.ActionResponse{Message: "insufficient balance"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, domain.ActionResponse{Message: ledger.ErrInvalidAmount.Error()})
	default:
		s.logger.WithError(err).Error("submit action failed")
		writeJSON(w, http.StatusInternalServerError, domain.ActionResponse{Message: "failed to submit action"})
	}
}

type actionStatsResponse struct {
	Vendor string               `json:"vendor"`
	Total  int64                `json:"total"`
	Counts []domain.ActionCount `json:"counts"`
}

func (s *Server) handleActionStats(w http.ResponseWriter, r *http.Request) {
	vendor := r.URL.Query().Get("vendor")
	counts, err := s.actions.Stats(r.Context(), vendor)
	if err != nil {
		s.internalError(w, "action stats", err)
		return
	}
	total, err := s.actions.Count(r.Context(), vendor)
	if err != nil {
		s.internalError(w, "action count", err)
		return
	}
	if vendor == "" {
		vendor = s.actions.Vendor()
	}
	if counts == nil {
		counts = []domain.ActionCount{}
	}
	writeJSON(w, http.StatusOK, actionStatsResponse{Vendor: vendor, Total: total, Counts: counts})
}

func (s *Server) handleActionHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	records, err := s.actions.History(r.Context(), r.URL.Query().Get("vendor"), limit)
	if err != nil {
		s.internalError(w, "action history", err)
		return
	}
	if records == nil {
		records = []*domain.ActionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type uploadRequest struct {
	Image string `json:"image" validate:"required"`
}

type uploadResponse struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var body uploadRequest
	if err := decodeJSON(w, r, s.maxUpload, &body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, proofs.ErrTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	p, err := s.proofs.Upload(r.Context(), body.Image)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, uploadResponse{URL: p.URL, ID: p.ID})
	case errors.Is(err, proofs.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, proofs.ErrMalformed), errors.Is(err, proofs.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.internalError(w, "upload proof", err)
	}
}

func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	p, err := s.proofs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "proof not found")
		return
	}
	if err != nil {
		s.internalError(w, "get proof", err)
		return
	}

	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.Data)
}

type validateTokenRequest struct {
	TokenID string `json:"tokenId"`
}

type validateTokenResponse struct {
	Valid bool `json:"valid"`
}

func (s *Server) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var body validateTokenRequest
	if err := decodeJSON(w, r, maxJSONBody, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	valid, err := s.ledger.ValidateToken(r.Context(), body.TokenID)
	if err != nil {
		s.internalError(w, "validate token", err)
		return
	}
	writeJSON(w, http.StatusOK, validateTokenResponse{Valid: valid})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := s.board.Standings(r.Context(), s.vendor)
	if err != nil {
		s.internalError(w, "leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.WithError(err).WithField("op", op).Error("request failed")
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// parseLimit reads the optional ?limit= query parameter. It writes a 400 and
// returns false when the value is not a positive integer.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}
