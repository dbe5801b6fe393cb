package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/panverse/rules-agent/internal/api/middleware"
	"github.com/panverse/rules-agent/internal/dispatch"
	"github.com/panverse/rules-agent/internal/legacy"
	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
	"github.com/rs/zerolog"
)

type Handler struct {
	dispatcher *dispatch.Dispatcher
	checker    *legacy.Checker
	logger     *zerolog.Logger
}

func NewHandler(dispatcher *dispatch.Dispatcher, checker *legacy.Checker, logger *zerolog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		checker:    checker,
		logger:     logger,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CategoriesResponse lists the content types the active rules support.
type CategoriesResponse struct {
	Categories []models.RuleCategory `json:"categories"`
}

// BalanceRequest is the legacy single-group balance check input.
type BalanceRequest struct {
	PartyLevel      int    `json:"party_level"`
	PartySize       int    `json:"party_size"`
	ChallengeRating string `json:"challenge_rating"`
	Count           int    `json:"count"`
}

// POST /api/v1/validate
// Body: models.Request
// Returns: models.Result
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var request models.Request
	if err := req.ReadEntity(&request); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("request_id", request.RequestID).
		Str("content_type", request.ContentType).
		Msg("Start validation")

	result, err := h.dispatcher.Validate(request)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, rules.ErrUnsupportedContentType) {
			status = http.StatusUnprocessableEntity
		}
		h.logger.Error().Err(err).Str("request_id", request.RequestID).Msg("Validation failed")
		middleware.HandleError(resp, err, status)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// POST /api/v1/balance
func (h *Handler) Balance(req *restful.Request, resp *restful.Response) {
	var request BalanceRequest
	if err := req.ReadEntity(&request); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	assessment, err := h.checker.CheckEncounterBalance(request.PartyLevel, request.PartySize, request.ChallengeRating, request.Count)
	if err != nil {
		var cfgErr *models.ConfigurationError
		status := http.StatusBadRequest
		if errors.As(err, &cfgErr) {
			status = http.StatusInternalServerError
		}
		h.logger.Error().Err(err).Msg("Balance check failed")
		middleware.HandleError(resp, fmt.Errorf("balance check: %w", err), status)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, assessment)
}

// GET /api/v1/categories
func (h *Handler) Categories(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, CategoriesResponse{
		Categories: h.dispatcher.Categories(),
	})
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}
