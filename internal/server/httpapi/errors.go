package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hynorvixx/backend/internal/common"
)

const internalMessage = "Internal Server Error"

type errorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrUnsupportedMediaType),
		errors.Is(err, common.ErrPayloadTooLarge),
		errors.Is(err, common.ErrIdentityExists),
		errors.Is(err, common.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrIdentityInactive):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text shown to the caller. Internal details are only
// exposed when showInternal is set.
func messageFor(err error, showInternal bool) string {
	var me *common.MessageError
	if errors.As(err, &me) {
		return me.Msg
	}

	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return "Access token required"
	case errors.Is(err, common.ErrExpiredCredential):
		return "Token expired"
	case errors.Is(err, common.ErrMalformedCredential):
		return "Invalid token"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, common.ErrIdentityInactive):
		return "User not found or inactive"
	case errors.Is(err, common.ErrIdentityExists):
		return "User already exists"
	case errors.Is(err, common.ErrStorageUnavailable):
		return "File upload service temporarily unavailable"
	case errors.Is(err, common.ErrorNotFound):
		return "Not found"
	case errors.Is(err, common.ErrConflict):
		return "Resource already exists"
	case errors.Is(err, common.ErrInvalidReference):
		return "Invalid reference"
	}

	if showInternal {
		return err.Error()
	}
	return internalMessage
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Message: msg, StatusCode: status}})
}

// fail renders err and logs it when it is a server-side failure.
func (s *Server) fail(c *gin.Context, err error) {
	s.failWith(c, err, messageFor(err, s.showInternal))
}

func (s *Server) failWith(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "route", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	writeError(c, status, msg)
}
