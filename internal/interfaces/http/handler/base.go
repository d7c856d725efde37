package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/interfaces/http/dto"
	"github.com/wbpos/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDContextKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, code, message string) {
	h.Error(c, http.StatusConflict, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// BindJSON decodes and validates the request body. On failure the response
// has been written and false is returned.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		// an empty body binds the zero value
		if verr := binding.Validator.ValidateStruct(obj); verr != nil {
			middleware.HandleValidationError(c, verr)
			return false
		}
		return true
	case errors.As(err, &ve):
		middleware.HandleValidationError(c, err)
	case errors.As(err, &maxErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &typeErr):
		h.ValidationError(c, []dto.ValidationDetail{{Field: typeErr.Field, Message: "Invalid type, expected " + typeErr.Type.String()}})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON body")
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
	}
	return false
}

// HandleError maps the domain error taxonomy to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var (
		validationErr  *shared.ValidationError
		upstreamErr    *shared.UpstreamError
		persistenceErr *shared.PersistenceError
		domainErr      *shared.DomainError
	)
	switch {
	case errors.As(err, &validationErr):
		h.ValidationError(c, []dto.ValidationDetail{{Field: validationErr.Field, Message: validationErr.Message}})
	case errors.As(err, &upstreamErr):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstream, upstreamErr.Error())
	case errors.As(err, &persistenceErr):
		h.logError(c, err)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodePersistence, "Stored tracking config could not be read")
	case errors.As(err, &domainErr):
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
	default:
		h.logError(c, err)
		h.InternalError(c, "An unexpected error occurred")
	}
}

func (h *BaseHandler) logError(c *gin.Context, err error) {
	logger.WithLogger(c.Request.Context(), logger.GetGinLogger(c)).
		Error("Request failed", zap.String("route", c.FullPath()), zap.Error(err))
}
