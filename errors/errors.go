package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is the api error type surfaced to handlers; Status maps directly to
// the HTTP status of the response.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(message string, status int) *Error {
	return &Error{Message: message, Status: status}
}

var (
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("Unauthorized", http.StatusUnauthorized)
	ErrInvalidPassword     = New("invalid email or password", http.StatusUnauthorized)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	InActiveUserError      = New("user is inactive", http.StatusUnauthorized)
)

// GetUniqueContraintError maps postgres unique-violation failures to a 400.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return New("Email already exists", http.StatusBadRequest)
	}
	return ErrInternalServerError
}

// ErrorHandler is wired into the gin rate limiter.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"code":    http.StatusTooManyRequests,
		"message": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
	})
	c.Abort()
}
