package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/systmms/vaultkit/pkg/auth"
	"github.com/systmms/vaultkit/pkg/transport"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// VaultError wraps a failed server operation with a suggestion derived from
// the status code or transport failure.
func VaultError(operation, address string, err error) error {
	if err == nil {
		return nil
	}

	ue := UserError{
		Message:    fmt.Sprintf("vault %s failed", operation),
		Suggestion: vaultSuggestion(address, err),
		Err:        err,
	}

	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		ue.Details = fmt.Sprintf("%d %s", statusErr.StatusCode, statusErr.Status)
	} else {
		ue.Details = err.Error()
	}
	return ue
}

func vaultSuggestion(address string, err error) string {
	var argErr *transport.ArgumentError
	if errors.As(err, &argErr) {
		return fmt.Sprintf("Provide a value for '%s'", argErr.Name)
	}

	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("Authentication with %s did not return a token. Check the auth method configuration", authErr.Kind)
	}

	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusBadRequest:
			return "The request was rejected. Check your credentials and the request parameters"
		case http.StatusForbidden:
			return "Check your Vault token permissions for this path, or run 'vaultkit login' to refresh it"
		case http.StatusNotFound:
			return "Check that the path exists and that the secret engine is mounted"
		case http.StatusTooManyRequests:
			return "The node is a standby or rate limited. Wait a moment and try again"
		case http.StatusServiceUnavailable:
			return "Vault is sealed or in maintenance. Unseal it and try again"
		case http.StatusNotImplemented:
			return "Vault is not initialized"
		}
		if statusErr.StatusCode >= 500 {
			return "Vault reported an internal error. Check the server logs"
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "The request timed out. Check your network connection or raise timeout_ms"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "no such host"):
		return "Check that Vault server is running and accessible at " + address
	case strings.Contains(errStr, "certificate"), strings.Contains(errStr, "tls"):
		return "Check the TLS configuration and the client certificate"
	case strings.Contains(errStr, "namespace"):
		return "Check your Vault namespace configuration"
	}
	return "Check your Vault configuration and connectivity"
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "json:") {
		return ConfigError{
			Message:    "Invalid JSON format",
			Suggestion: "Validate your JSON at https://jsonlint.com/",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
