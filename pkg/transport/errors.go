package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnsupported     = errors.New("unsupported operation")
)

// ArgumentError reports a missing or malformed caller-supplied argument.
// It is always returned before any network activity.
type ArgumentError struct {
	Name    string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("argument %q is required", e.Name)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// MissingArgument is shorthand for a required-but-empty argument.
func MissingArgument(name string) *ArgumentError {
	return &ArgumentError{Name: name}
}

// UnsupportedError reports an operation the library refuses to attempt,
// such as an unknown HTTP verb or authentication kind.
type UnsupportedError struct {
	Operation string
	Value     string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("the %s is not supported: %s", e.Operation, e.Value)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// StatusError is a non-2xx response that no error processor recovered.
type StatusError struct {
	StatusCode int
	// Status is the symbolic status name, e.g. "NotFound".
	Status string
	Body   string
	// Err is set when the response arrived through a ProtocolError.
	Err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s. %s", e.StatusCode, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError builds the error Execute returns for an unrecovered
// response. Error processors use it to reject codes they do not handle.
func NewStatusError(code int, body string) *StatusError {
	return newStatusError(code, body, nil)
}

func newStatusError(code int, body string, cause error) *StatusError {
	return &StatusError{
		StatusCode: code,
		Status:     StatusName(code),
		Body:       body,
		Err:        cause,
	}
}

// ParseError is returned when a successful response body cannot be decoded.
type ParseError struct {
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ProtocolError is a transport-level failure that still carries a response.
// RoundTrippers return it instead of (resp, err) because net/http discards
// responses that accompany an error.
type ProtocolError struct {
	Response *http.Response
	Err      error
}

func (e *ProtocolError) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("protocol error (status %d): %v", e.Response.StatusCode, e.Err)
	}
	return fmt.Sprintf("protocol error: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// statusNames holds names whose casing differs from the PascalCase form of
// http.StatusText.
var statusNames = map[int]string{
	http.StatusRequestURITooLong:       "RequestUriTooLong",
	http.StatusHTTPVersionNotSupported: "HttpVersionNotSupported",
}

// StatusName returns the symbolic name for an HTTP status code, e.g.
// 404 -> "NotFound". Acronyms are cased as words ("HttpVersionNotSupported").
// Unknown codes are rendered as their number.
func StatusName(code int) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}

	var b strings.Builder
	upper := true
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(r)
			}
			upper = false
		case r == ' ' || r == '-':
			upper = true
		}
	}
	return b.String()
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
