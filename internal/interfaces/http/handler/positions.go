package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/interfaces/http/dto"
)

// PositionsRequiredMessage is returned when token, product or keywords are missing
const PositionsRequiredMessage = "token, nmID, keywords required"

// PositionsHandler exposes the rank sampler over the positions contract.
// It answers with bare JSON, not the API envelope, so a ranking oracle
// client can point at it.
type PositionsHandler struct {
	sampler    tracking.RankSampler
	windowDays int
}

// NewPositionsHandler creates a PositionsHandler
func NewPositionsHandler(sampler tracking.RankSampler, windowDays int) *PositionsHandler {
	if windowDays <= 0 {
		windowDays = tracking.DefaultWindowDays
	}
	return &PositionsHandler{sampler: sampler, windowDays: windowDays}
}

// Sample godoc
// @ID           samplePositions
// @Summary      Sample keyword positions
// @Description  Returns one history per keyword covering the trailing window ending today. Errors use {error, status}.
// @Tags         positions
// @Accept       json
// @Produce      json
// @Param        request body dto.PositionsRequest true "Token, product (nmID or productId) and keywords"
// @Success      200 {object} dto.PositionsResponse
// @Failure      400 {object} dto.PositionsError
// @Failure      502 {object} dto.PositionsError
// @Router       /positions [post]
func (h *PositionsHandler) Sample(c *gin.Context) {
	var req dto.PositionsRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		positionsError(c, http.StatusBadRequest, PositionsRequiredMessage)
		return
	}
	if req.Token == "" || req.Product() <= 0 || req.Keywords == nil {
		positionsError(c, http.StatusBadRequest, PositionsRequiredMessage)
		return
	}

	days := h.windowDays
	if req.Days > 0 && req.Days <= h.windowDays {
		days = req.Days
	}
	keywords := tracking.NormalizeKeywords(req.Keywords)

	obs, err := h.sampler.Sample(c.Request.Context(), tracking.SampleRequest{
		Token:      req.Token,
		ProductID:  req.Product(),
		Keywords:   keywords,
		WindowDays: days,
	})
	if err != nil {
		_ = c.Error(err)
		var ve *shared.ValidationError
		switch {
		case errors.As(err, &ve):
			positionsError(c, http.StatusBadRequest, strings.TrimSpace(ve.Field+" "+ve.Message))
		case shared.IsUpstream(err):
			positionsError(c, http.StatusBadGateway, err.Error())
		default:
			positionsError(c, http.StatusInternalServerError, "failed")
		}
		return
	}
	c.JSON(http.StatusOK, dto.NewPositionsResponse(keywords, obs))
}

func positionsError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.PositionsError{Error: message, Status: status})
}
