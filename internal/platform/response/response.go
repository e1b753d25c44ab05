package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proconnect/service-engagement/internal/domain/booking"
)

// Envelope is the standard success payload.
type Envelope struct {
	Data interface{} `json:"data"`
}

// ErrorBody is the standard error payload; Code is the stable domain code.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

// BadRequest writes a 400 response with a generic code.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Code: "BAD_REQUEST", Message: message}})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Error maps a domain error to an HTTP response, preserving the stable code.
// Non-domain errors are reported as opaque 500s.
func Error(c *gin.Context, err error) {
	var de *booking.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorBody{Code: "INTERNAL", Message: "internal server error"}})
		return
	}
	c.JSON(statusFor(de.Code), gin.H{"error": ErrorBody{Code: de.Code, Message: de.Message}})
}

func statusFor(code string) int {
	switch code {
	case booking.CodeBookingNotFound, booking.CodeRequirementNotFound:
		return http.StatusNotFound
	case booking.CodeUnauthorized, booking.CodeDeleteNotAllowed:
		return http.StatusForbidden
	case booking.CodeInvalidTransition, booking.CodeNoStateChange:
		return http.StatusConflict
	case booking.CodeCreateFailed, booking.CodeStatusUpdateFailed,
		booking.CodeUpdateFailed, booking.CodeDeleteFailed:
		return http.StatusInternalServerError
	default:
		// Validation family, NO_VALID_UPDATES and anything new.
		return http.StatusUnprocessableEntity
	}
}
