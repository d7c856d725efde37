package handler

import "github.com/wbpos/backend/internal/interfaces/http/dto"

// APIResponse is the success envelope shown in the OpenAPI document.
// Handlers build it at runtime through dto.NewSuccessResponse.
// @Description Envelope whose data field carries the endpoint payload
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the failure envelope. A stale config version, a
// rejected WB token and a check already in flight all use it, told apart
// by error.code.
// @Description Envelope returned with every 4xx and 5xx status
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
