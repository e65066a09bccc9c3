package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	pharmarecon "github.com/Djamyahia/pharmarecon"
)

type ErrorCode string

const (
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrConflict          ErrorCode = "CONFLICT"
	ErrBadRequest        ErrorCode = "BAD_REQUEST"
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrInvalidResolution ErrorCode = "INVALID_RESOLUTION"
	ErrInternalServer    ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// FromEngineError translates engine failures into API errors. Invalid
// resolutions are recoverable user mistakes and log at warn; everything else
// is a server fault.
func FromEngineError(err error) APIError {
	var invalid pharmarecon.InvalidResolutionError
	if errors.As(err, &invalid) {
		logrus.WithFields(logrus.Fields{
			"session_id": invalid.SessionID,
			"row_index":  invalid.RowIndex,
		}).Warn(invalid.Error())
		return NewAPIError(ErrInvalidResolution, invalid.Error(), invalid)
	}
	logrus.Error(err)
	return NewAPIError(ErrInternalServer, err.Error(), err)
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict, ErrInvalidResolution:
			return http.StatusConflict
		case ErrBadRequest, ErrInvalidInput:
			return http.StatusBadRequest
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
