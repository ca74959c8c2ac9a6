package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	errs "github.com/matzehuels/ndorder/pkg/errors"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and the user message.
type ErrorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// StatusCode maps an error to an HTTP status.
func StatusCode(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidShape, errs.ErrCodeUnrecognizedMode, errs.ErrCodeInvalidInput,
		errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidOptions:
		return http.StatusBadRequest
	case errs.ErrCodeOrderingFailed, errs.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an [ErrorBody] with the status from
// [StatusCode]. Internal errors are reported without their details.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	detail := ErrorDetail{Code: errs.GetCode(err), Message: errs.UserMessage(err)}
	if status == http.StatusInternalServerError {
		detail = ErrorDetail{Code: errs.ErrCodeInternal, Message: "internal error"}
	}
	WriteJSON(w, status, ErrorBody{Error: detail})
}

// DecodeJSON decodes a request body of at most limit bytes into v,
// rejecting unknown fields and trailing data. Failures are INVALID_INPUT
// errors.
func DecodeJSON(r io.Reader, limit int64, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, limit+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var syntax *json.SyntaxError
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &syntax) {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed request body")
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	if dec.More() {
		return errs.New(errs.ErrCodeInvalidInput, "request body has trailing data")
	}
	if dec.InputOffset() > limit {
		return errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", limit)
	}
	return nil
}

// ReadError decodes an [ErrorBody] from a failed response into an error
// carrying the same code.
func ReadError(resp *http.Response) error {
	var body ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Code == "" {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return errs.New(body.Error.Code, "%s", body.Error.Message)
}
