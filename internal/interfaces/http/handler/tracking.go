package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apptracking "github.com/wbpos/backend/internal/application/tracking"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/interfaces/http/dto"
)

// TrackingService is the tracking use-case surface the handler needs
type TrackingService interface {
	LoadConfig(ctx context.Context) (*tracking.Config, error)
	SaveConfig(ctx context.Context, cmd apptracking.SaveConfigCommand) (*tracking.Config, error)
	RunCheck(ctx context.Context, cmd apptracking.RunCheckCommand) (*apptracking.CheckResult, error)
	Table(ctx context.Context) (*apptracking.Table, error)
	IsCheckRunning() bool
}

// TrackingHandler serves the tracking config, checks and the position table
type TrackingHandler struct {
	BaseHandler
	tracking TrackingService
}

// NewTrackingHandler creates a TrackingHandler
func NewTrackingHandler(svc TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: svc}
}

// GetConfig godoc
// @ID           getTrackingConfig
// @Summary      Get tracking config
// @Description  Returns token, product, keywords and the config version. The version is also sent as ETag.
// @Tags         tracking
// @Produce      json
// @Success      200 {object} APIResponse[dto.ConfigResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /tracking/config [get]
func (h *TrackingHandler) GetConfig(c *gin.Context) {
	cfg, err := h.tracking.LoadConfig(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	setETag(c, cfg.GetVersion())
	h.Success(c, dto.NewConfigResponse(cfg, h.tracking.IsCheckRunning()))
}

// SaveConfig godoc
// @ID           saveTrackingConfig
// @Summary      Save tracking config
// @Description  Replaces token, product and keywords. Recorded history is kept. The body version (or If-Match) must match the stored version.
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        If-Match header string false "Expected config version"
// @Param        request body dto.SaveConfigRequest true "New configuration"
// @Success      200 {object} APIResponse[dto.ConfigResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /tracking/config [put]
func (h *TrackingHandler) SaveConfig(c *gin.Context) {
	var req dto.SaveConfigRequest
	if !h.BindJSON(c, &req) {
		return
	}
	version, ok := h.expectedVersion(c, req.Version)
	if !ok {
		return
	}

	cfg, err := h.tracking.SaveConfig(c.Request.Context(), apptracking.SaveConfigCommand{
		Token:     req.Token,
		ProductID: req.ProductID,
		Keywords:  req.AllKeywords(),
		Version:   derefVersion(version),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	setETag(c, cfg.GetVersion())
	h.Success(c, dto.NewConfigResponse(cfg, h.tracking.IsCheckRunning()))
}

// RunCheck godoc
// @ID           runTrackingCheck
// @Summary      Run a position check
// @Description  Samples ranks for every configured keyword, merges them into the history and returns the updated table. Only one check runs at a time.
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        If-Match header string false "Expected config version"
// @Param        request body dto.RunCheckRequest false "Optional expected version"
// @Success      200 {object} APIResponse[apptracking.CheckResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /tracking/check [post]
func (h *TrackingHandler) RunCheck(c *gin.Context) {
	var req dto.RunCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	version, ok := h.expectedVersion(c, req.Version)
	if !ok {
		return
	}

	result, err := h.tracking.RunCheck(c.Request.Context(), apptracking.RunCheckCommand{ExpectedVersion: version})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	setETag(c, result.Version)
	h.Success(c, result)
}

// GetTable godoc
// @ID           getTrackingTable
// @Summary      Get the position table
// @Description  Date-columned table of every configured keyword with day-over-day deltas. format=csv returns CSV.
// @Tags         tracking
// @Produce      json
// @Produce      text/csv
// @Param        format query string false "json or csv" Enums(json, csv)
// @Success      200 {object} APIResponse[apptracking.Table]
// @Failure      400 {object} ErrorResponse
// @Router       /tracking/table [get]
func (h *TrackingHandler) GetTable(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "format", Message: "Must be one of: json csv"}})
		return
	}

	table, err := h.tracking.Table(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if format == "json" {
		h.Success(c, table)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="positions.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := table.WriteCSV(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// expectedVersion takes the body version, else If-Match. A malformed
// header writes a 400 and returns false.
func (h *TrackingHandler) expectedVersion(c *gin.Context, body *int64) (*int64, bool) {
	if body != nil {
		return body, true
	}
	header := c.GetHeader("If-Match")
	if header == "" {
		return nil, true
	}
	v, err := parseETag(header)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "If-Match", Message: "Must be a config version"}})
		return nil, false
	}
	return &v, true
}

func derefVersion(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func setETag(c *gin.Context, version int64) {
	c.Header("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}

// parseETag accepts 3, "3" and W/"3"
func parseETag(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "W/")
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
