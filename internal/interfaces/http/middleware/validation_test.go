package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbpos/backend/internal/interfaces/http/dto"
)

type validatedRequest struct {
	Token    string   `json:"token" binding:"required"`
	Keywords []string `json:"keywords" binding:"max=2"`
	Search   string   `json:"search" binding:"max=3"`
	Days     int      `json:"days" binding:"gte=0"`
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/v", func(c *gin.Context) {
		var req validatedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	body := `{"keywords":["a","b","c"],"search":"toolong","days":-1}`
	req := httptest.NewRequest(http.MethodPost, "/v", strings.NewReader(body))
	req.Header.Set(RequestIDHeader, "req-v")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-v", resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, map[string]string{
		"token":    "This field is required",
		"keywords": "Must contain at most 2 items",
		"search":   "Must be at most 3 characters",
		"days":     "Must be greater than or equal to 0",
	}, messages)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("boom"), "r")
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
