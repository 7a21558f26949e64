package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON    ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery   ErrorCode = "INVALID_QUERY"
	ErrorCodeNewsNotFound   ErrorCode = "NEWS_NOT_FOUND"
	ErrorCodeDuplicateNews  ErrorCode = "DUPLICATE_NEWS"

	// Server Error Codes (5xx)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed  ErrorCode = "SEARCH_FAILED"
	ErrorCodeStoreFailed   ErrorCode = "STORE_FAILED"
	ErrorCodeReindexFailed ErrorCode = "REINDEX_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendNewsNotFoundError sends a standardized not found error for a news item
func SendNewsNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, ErrorCodeNewsNotFound, message)
}

// SendInternalError sends a standardized internal error response
func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, message)
}
