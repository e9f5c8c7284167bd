package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Execute performs req against e and classifies the response.
//
// A 2xx response with an empty or whitespace-only body yields (nil, nil).
// A non-2xx response is handed to req.ErrorProcessor when one is set and
// otherwise returned as a *StatusError. Connection failures that produced no
// response are returned unchanged.
func Execute[T any](ctx context.Context, e *Engine, req Request[T]) (*T, error) {
	if e == nil {
		return nil, MissingArgument("engine")
	}
	if req.Path == "" {
		return nil, MissingArgument("path")
	}

	method := strings.ToUpper(req.Method)
	if !supportedMethods[method] {
		return nil, &UnsupportedError{Operation: "http method", Value: req.Method}
	}

	if req.RawResponse {
		if _, ok := any((*T)(nil)).(*string); !ok {
			return nil, &ArgumentError{Name: "rawResponse", Message: "requires a string result type"}
		}
	}

	var body io.Reader
	if req.Payload != nil && carriesBody(method) {
		data, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, &ArgumentError{Name: "payload", Message: err.Error()}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, e.resolve(req.Path, req.Query), body)
	if err != nil {
		return nil, &ArgumentError{Name: "path", Message: err.Error()}
	}
	e.applyHeaders(httpReq, req.Headers)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		var pe *ProtocolError
		if errors.As(err, &pe) && pe.Response != nil {
			text, readErr := readBody(pe.Response)
			if readErr != nil {
				return nil, err
			}
			e.observe(method, req.Path, pe.Response.StatusCode, start)
			return recoverFailure(req, pe.Response.StatusCode, text, err)
		}

		e.metrics.RecordFailure(method, time.Since(start))
		e.logger.Debug("%s %s failed: %v", method, req.Path, err)
		return nil, err
	}

	text, err := readBody(resp)
	if err != nil {
		e.metrics.RecordFailure(method, time.Since(start))
		return nil, err
	}
	e.observe(method, req.Path, resp.StatusCode, start)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeSuccess(req, text)
	}
	return recoverFailure(req, resp.StatusCode, text, nil)
}

// decodeSuccess turns a 2xx body into a result.
func decodeSuccess[T any](req Request[T], text string) (*T, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if req.RawResponse {
		return any(&text).(*T), nil
	}

	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &ParseError{Body: text, Err: err}
	}
	return &out, nil
}

// recoverFailure runs the error processor or builds a StatusError.
func recoverFailure[T any](req Request[T], code int, text string, cause error) (*T, error) {
	if req.ErrorProcessor != nil {
		return req.ErrorProcessor(code, text)
	}
	return nil, newStatusError(code, text, cause)
}

func (e *Engine) observe(method, path string, code int, start time.Time) {
	elapsed := time.Since(start)
	e.metrics.RecordResponse(method, code, elapsed)
	e.logger.Debug("%s %s -> %d %s (%s)", method, path, code, StatusName(code), elapsed.Round(time.Millisecond))
}

func readBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
