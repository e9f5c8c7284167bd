package transport

import (
	"net/http"
	"net/url"
)

// Request describes a single exchange. T is the type the response body is
// decoded into.
type Request[T any] struct {
	// Path is resolved against the engine's base address. It is used as
	// already-escaped URL path text; callers escape segments that may
	// contain reserved characters.
	Path string
	// Query is encoded onto the request URL.
	Query url.Values
	// Method must be GET, DELETE, POST, PUT or HEAD.
	Method string
	// Payload is JSON-encoded as the body of POST and PUT requests.
	// It is ignored for the other methods.
	Payload any
	// Headers are applied by replacing any header of the same name.
	Headers map[string]string
	// RawResponse returns the body text instead of decoding it.
	// Only valid when T is string.
	RawResponse bool
	// ErrorProcessor turns a non-2xx response into a result. When set, its
	// return values are returned from Execute as they are.
	ErrorProcessor func(statusCode int, body string) (*T, error)
}

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodDelete: true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodHead:   true,
}

// carriesBody reports whether method sends the encoded payload.
func carriesBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}
