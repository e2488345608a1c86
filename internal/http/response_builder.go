package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fuelboard/internal/core"
	"fuelboard/internal/services"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the body. Encoding failures after the header is sent can
// only be reported by the caller's logs, so the error is returned.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(b.body)
}

// ErrorBody is the JSON shape of every error response. Load errors fill the
// fields that locate the problem in the input.
type ErrorBody struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Column  string   `json:"column,omitempty"`
	Row     int      `json:"row,omitempty"`
	Value   string   `json:"value,omitempty"`
	Date    string   `json:"date,omitempty"`
	Rows    []int    `json:"rows,omitempty"`
}

// NewErrorBody describes err, unpacking the typed load errors.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{Error: err.Error(), Kind: core.ErrorKind(err)}

	var schema *core.SchemaError
	var dup *core.DuplicateDateError
	switch {
	case errors.As(err, &schema):
		body.Columns = schema.Columns
		body.Column = schema.Column
		body.Row = schema.Row
		body.Value = schema.Value
	case errors.As(err, &dup):
		body.Date = dup.Date.String()
		body.Rows = dup.Rows
	case errors.Is(err, services.ErrNotLoaded):
		body.Kind = "not_loaded"
	}
	return body
}

// LoadErrorResponse reports a dataset that failed to load as 503.
func LoadErrorResponse(err error) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusServiceUnavailable).
		Header("Retry-After", "30").
		Body(NewErrorBody(err))
}

// BadRequestError creates a 400 response for malformed parameters.
func BadRequestError(message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		Body(ErrorBody{Error: message, Kind: "bad_request"})
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Body(ErrorBody{Error: "rate limit exceeded", Kind: "rate_limited"})
}
