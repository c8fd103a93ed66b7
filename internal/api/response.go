package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/pkg/logging"
)

// ErrorBody is the error half of the response envelope
type ErrorBody struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Pagination carries cursor metadata for listing responses
type Pagination struct {
	NextCursor string `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
	Total      *int64 `json:"total,omitempty"`
}

// Meta is the metadata section of the response envelope
type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Envelope is the response shape shared by every endpoint
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Error   *ErrorBody  `json:"error"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Error codes
const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeServerError  = "server_error"
)

// RespondOK writes a success envelope
func RespondOK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// RespondPage writes a success envelope with pagination metadata
func RespondPage(c *gin.Context, data interface{}, page feed.Page, message string) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Message: message,
		Meta: &Meta{Pagination: &Pagination{
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		}},
	})
}

// RespondError writes a failure envelope
func RespondError(c *gin.Context, status int, code, details string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: details,
		Error:   &ErrorBody{Code: code, Details: details},
	})
}

// HandleError maps core errors onto the envelope: validation sentinels become
// client errors, everything else is an opaque server error. Store failures
// never leak partial results or internals.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrEmptySearchTerm),
		errors.Is(err, feed.ErrInvalidWindow),
		errors.Is(err, feed.ErrInvalidSort):
		RespondError(c, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		logging.WithComponent("api").Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		RespondError(c, http.StatusInternalServerError, CodeServerError, "server error")
	}
}
