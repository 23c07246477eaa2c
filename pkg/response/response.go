package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tubeaccounts/backend/pkg/logger"
)

// Response is the unified API response envelope.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// Kind classifies an AppError independently of its HTTP status.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "auth"
	KindUpload     Kind = "upload"
	KindInternal   Kind = "internal"
)

// AppError represents a structured application error with HTTP status and kind.
type AppError struct {
	HTTPStatus int    // HTTP status code (e.g. 400, 404, 500)
	Kind       Kind   // Failure class
	Message    string // Human-readable error message
	Err        error  // Optional cause, logged but never sent to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e carrying cause.
func (e *AppError) Wrap(cause error) *AppError {
	out := *e
	out.Err = cause
	return &out
}

// Pre-defined error constructors

func NewValidation(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Kind: KindConflict, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

func NewAuth(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Kind: KindAuth, Message: msg}
}

// NewAuthWithStatus is an auth failure answered with a non-401 status,
// e.g. a wrong old password on password change.
func NewAuthWithStatus(status int, msg string) *AppError {
	return &AppError{HTTPStatus: status, Kind: KindAuth, Message: msg}
}

func NewUpload(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindUpload, Message: msg}
}

func NewInternal(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Kind: KindInternal, Message: msg}
}

// KindOf returns the kind of err, or "" if err is not an *AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}, msg string) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    msg,
		Success:    true,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}, msg string) {
	c.JSON(http.StatusCreated, Response{
		StatusCode: http.StatusCreated,
		Data:       data,
		Message:    msg,
		Success:    true,
	})
}

// Error sends the failure envelope. If err is an *AppError, its status and
// message are used; otherwise a generic 500 is returned and the cause is logged.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil || appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error().Err(appErr.Err).
				Str("kind", string(appErr.Kind)).
				Str("path", c.Request.URL.Path).
				Msg(appErr.Message)
		}
		c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
			StatusCode: appErr.HTTPStatus,
			Message:    appErr.Message,
			Success:    false,
		})
		return
	}

	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		Success:    false,
	})
}
