package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wbpos/backend/internal/interfaces/http/dto"
)

// SystemHandler reports build and runtime facts about the tracker process
type SystemHandler struct {
	BaseHandler
	name       string
	version    string
	store      string
	sampler    string
	windowDays int
	checking   func() bool
	startTime  time.Time
	now        func() time.Time
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithRuntimeInfo reports the active store backend, rank sampler and window
func WithRuntimeInfo(store, sampler string, windowDays int) SystemOption {
	return func(h *SystemHandler) {
		h.store = store
		h.sampler = sampler
		h.windowDays = windowDays
	}
}

// WithCheckStatus reports whether a position check is in flight
func WithCheckStatus(running func() bool) SystemOption {
	return func(h *SystemHandler) {
		h.checking = running
	}
}

// NewSystemHandler creates a SystemHandler. Empty name and version fall
// back to the product name and "dev".
func NewSystemHandler(name, version string, opts ...SystemOption) *SystemHandler {
	if name == "" {
		name = "WB Position Tracker"
	}
	if version == "" {
		version = "dev"
	}
	h := &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse describes the running tracker
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name         string `json:"name" example:"WB Position Tracker"`
	Version      string `json:"version" example:"1.0.0"`
	GoVersion    string `json:"go_version" example:"go1.25.5"`
	Uptime       string `json:"uptime" example:"1h30m45s"`
	Store        string `json:"store,omitempty" example:"database"`
	Sampler      string `json:"sampler,omitempty" example:"random"`
	WindowDays   int    `json:"window_days,omitempty" example:"10"`
	CheckRunning bool   `json:"check_running"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns version, uptime, the active config store and rank sampler
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:       h.name,
		Version:    h.version,
		GoVersion:  runtime.Version(),
		Uptime:     h.now().Sub(h.startTime).Round(time.Second).String(),
		Store:      h.store,
		Sampler:    h.sampler,
		WindowDays: h.windowDays,
	}
	if h.checking != nil {
		info.CheckRunning = h.checking()
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse is the liveness reply
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Answers without touching any dependency
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}))
}
