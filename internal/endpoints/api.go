package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Value     interface{} `json:"value,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorCode int         `json:"error_code"`
}

// WriteErrorResponse derives the HTTP status from err.
func (res APIResponse) WriteErrorResponse(w http.ResponseWriter, err error) {
	res.WriteErrorResponseWithStatusCode(w, err, GetStatusCode(err))
}

func (res APIResponse) WriteErrorResponseWithStatusCode(w http.ResponseWriter, err error, StatusCode int) {
	res.Success = false
	res.Error = err.Error()
	res.ErrorCode = GetErrorCode(err)

	errJson, _ := json.Marshal(res)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(StatusCode)
	w.Write(errJson)
}

func (res APIResponse) WriteResultResponse(w http.ResponseWriter, result interface{}) {
	res.Success = true
	res.Value = result
	res.ErrorCode = GetErrorCode(nil)

	res.write(w)
}

func (res APIResponse) WriteMessageResponse(w http.ResponseWriter, message string) {
	res.Success = true
	res.Message = message
	res.ErrorCode = GetErrorCode(nil)

	res.write(w)
}

// write sends a success envelope, or a 500 when it cannot be encoded.
func (res APIResponse) write(w http.ResponseWriter) {
	resJson, err := json.Marshal(res)
	if err != nil {
		APIResponse{}.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrEncodeFailed, err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(resJson)
}

func WriteImageResponse(w http.ResponseWriter, contentType string, image []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}
