package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notekeeper/internal/service"
)

// Response is the envelope of every procedure result.
type Response struct {
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Error codes beyond the service kinds.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeBadRequest      = "bad_request"
)

// success writes data with a 200 status.
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// failure writes err with the status matching its kind.
func failure(c *gin.Context, err error) {
	kind := service.Kind(err)
	status := statusFor(kind)
	msg := err.Error()
	if kind == "internal" {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "code": kind})
}

// abort writes an error response for a non-service failure and stops the
// handler chain.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func statusFor(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "conflict":
		return http.StatusConflict
	case "unavailable":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
