package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Machine-readable reason codes carried alongside the HTTP status so
// clients can branch without parsing messages.
const (
	ReasonNotFound          = "not_found"
	ReasonUnauthorized      = "unauthorized"
	ReasonForbidden         = "forbidden"
	ReasonCapacityExceeded  = "capacity_exceeded"
	ReasonScheduleConflict  = "schedule_conflict"
	ReasonAlreadyAssigned   = "already_assigned"
	ReasonInvalidState      = "invalid_state"
	ReasonValidation        = "validation_error"
	ReasonMergeConfirmation = "merge_confirmation_required"
	ReasonRateLimited       = "rate_limited"
	ReasonServerError       = "server_error"
)

// AppError is a structured application error with an HTTP status and a
// reason code. Services return these; handlers pass them to Error.
type AppError struct {
	HTTPStatus int
	Reason     string
	Message    string
	Data       interface{} // optional payload, e.g. merge confirmation details
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidation(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Reason: ReasonValidation, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Reason: ReasonForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Reason: ReasonNotFound, Message: msg}
}

func NewCapacityExceeded(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Reason: ReasonCapacityExceeded, Message: msg}
}

func NewScheduleConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Reason: ReasonScheduleConflict, Message: msg}
}

func NewAlreadyAssigned(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Reason: ReasonAlreadyAssigned, Message: msg}
}

func NewInvalidState(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Reason: ReasonInvalidState, Message: msg}
}

// NewMergeConfirmation reports a destructive event edit that requires
// an explicit force flag; data describes what would be lost.
func NewMergeConfirmation(msg string, data interface{}) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Reason: ReasonMergeConfirmation, Message: msg, Data: data}
}

func NewRateLimited(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusTooManyRequests, Reason: ReasonRateLimited, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Reason: ReasonServerError, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError its status and
// reason are used; store-level and other unexpected failures become a
// generic 500 so transient DB errors surface without crashing the
// request.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.HTTPStatus,
			Reason:  appErr.Reason,
			Message: appErr.Message,
			Data:    appErr.Data,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Reason:  ReasonServerError,
		Message: err.Error(),
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Reason: ReasonValidation, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: 401, Reason: ReasonUnauthorized, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{Code: 403, Reason: ReasonForbidden, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: 404, Reason: ReasonNotFound, Message: msg})
}

func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{Code: 500, Reason: ReasonServerError, Message: msg})
}
