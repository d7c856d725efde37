package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all ok",
			checks:     map[string]Pinger{"store": mockPinger{}, "cache": mockPinger{}},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok","checks":{"store":"ok","cache":"ok"}}`,
		},
		{
			name:       "store down",
			checks:     map[string]Pinger{"store": mockPinger{err: errors.New("connection refused")}, "cache": mockPinger{}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unhealthy","checks":{"store":"error","cache":"ok"}}`,
		},
		{
			name:       "nothing to check",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok","checks":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, time.Second)
			w := performRequest(http.MethodGet, "/health", nil, nil, func(r *gin.Engine) {
				r.GET("/health", h.Health)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestNewHealthHandler_DefaultTimeout(t *testing.T) {
	h := NewHealthHandler(nil, 0)
	assert.Equal(t, 2*time.Second, h.timeout)
}
