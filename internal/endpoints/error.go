package endpoints

import (
	"context"
	"errors"
	"net/http"

	"ivfit-app/internal/domain"
)

const (
	API_SUCCESS = iota + 303000 // 303000
	API_FAILURE                 // 303001 - Generic API failure
)

const (
	INVALID_REQUEST_BODY = iota + 101 // 101 - Error parsing request body
	INVALID_READING                   // 102 - Voltage or current missing or not a finite number
	INSUFFICIENT_DATA                 // 103 - Fewer than two readings stored
	REQUEST_CANCELLED                 // 104 - Request was cancelled by client or server timeout
	RENDER_FAILED                     // 105 - Chart could not be drawn
	FIT_NOT_FINITE                    // 106 - Fit overflowed float64
	ENCODE_FAILED                     // 107 - Response could not be encoded as JSON
)

var (
	ErrInvalidRequestBody = errors.New("invalid request body format")
	ErrRequestCancelled   = errors.New("request cancelled by client or server timeout")
	ErrRenderFailed       = errors.New("failed to render chart")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrEncodeFailed       = errors.New("failed to encode response")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	switch {
	case errors.Is(err, ErrInvalidRequestBody):
		return INVALID_REQUEST_BODY
	case errors.Is(err, domain.ErrInvalidReading):
		return INVALID_READING
	case errors.Is(err, domain.ErrInsufficientData):
		return INSUFFICIENT_DATA
	case errors.Is(err, ErrRequestCancelled), errors.Is(err, context.Canceled):
		return REQUEST_CANCELLED
	case errors.Is(err, ErrRenderFailed):
		return RENDER_FAILED
	case errors.Is(err, domain.ErrNonFiniteFit):
		return FIT_NOT_FINITE
	case errors.Is(err, ErrEncodeFailed):
		return ENCODE_FAILED
	default:
		return API_FAILURE // Default for any unhandled error
	}
}

// GetStatusCode picks the HTTP status that goes with err.
func GetStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequestBody),
		errors.Is(err, domain.ErrInvalidReading),
		errors.Is(err, domain.ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNonFiniteFit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRequestCancelled), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
