package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
)

// statusByCode maps reason codes to HTTP statuses.
var statusByCode = map[string]int{
	customerrors.CodeInvalidInput:        http.StatusBadRequest,
	customerrors.CodeConflict:            http.StatusConflict,
	customerrors.CodeNotFound:            http.StatusNotFound,
	customerrors.CodeGone:                http.StatusGone,
	customerrors.CodeAllocationExhausted: http.StatusServiceUnavailable,
	customerrors.CodeUnauthenticated:     http.StatusUnauthorized,
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError writes err with its reason code. Internal errors are logged
// and hidden from the caller.
func respondError(c *gin.Context, err error) {
	code := customerrors.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: customerrors.CodeInternal})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
