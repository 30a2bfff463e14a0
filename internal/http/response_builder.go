// Package http provides the JSON API over the expense application state.
//
// This file implements a small builder for JSON responses so every handler
// writes status, headers and body the same way.
package http

import (
	"encoding/json"
	"net/http"

	applog "expensex/internal/log"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
	raw        []byte
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets a value to be encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	b.raw = nil
	return b
}

// Bytes sets a pre-rendered body with the given content type.
func (b *ResponseBuilder) Bytes(contentType string, data []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.raw = data
	b.body = nil
	return b
}

// Attachment marks the response as a file download.
func (b *ResponseBuilder) Attachment(filename string) *ResponseBuilder {
	return b.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// Write sends the built response. An encoding failure is logged; the
// status line has already gone out by then.
func (b *ResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.raw != nil {
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
		return
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

// ErrorResponse creates a JSON error response carrying the request ID.
func ErrorResponse(r *http.Request, statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(ErrorBody{Error: message, RequestID: applog.RequestID(r.Context())})
}

func BadRequestError(r *http.Request, message string) *ResponseBuilder {
	return ErrorResponse(r, http.StatusBadRequest, message)
}

func NotFoundError(r *http.Request, message string) *ResponseBuilder {
	return ErrorResponse(r, http.StatusNotFound, message)
}

func InternalServerError(r *http.Request, message string) *ResponseBuilder {
	return ErrorResponse(r, http.StatusInternalServerError, message)
}

func ServiceUnavailableError(r *http.Request, message string) *ResponseBuilder {
	return ErrorResponse(r, http.StatusServiceUnavailable, message)
}
