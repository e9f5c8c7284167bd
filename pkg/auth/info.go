package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/systmms/vaultkit/pkg/transport"
)

// Kind names an authentication backend.
type Kind string

const (
	KindAppID       Kind = "app-id"
	KindGitHub      Kind = "github"
	KindLDAP        Kind = "ldap"
	KindCertificate Kind = "cert"
	KindToken       Kind = "token"
	KindUserpass    Kind = "userpass"
	KindCustom      Kind = "custom"
)

// Info describes how to authenticate. The set of implementations is closed:
// each is one of the *Info types in this package.
type Info interface {
	Kind() Kind
	isInfo()
}

// AppIDInfo authenticates against the app-id backend.
type AppIDInfo struct {
	// MountPoint defaults to "app-id".
	MountPoint string
	AppID      string `validate:"required"`
	UserID     string `validate:"required"`
}

// GitHubInfo authenticates with a GitHub personal access token.
type GitHubInfo struct {
	// MountPoint defaults to "github".
	MountPoint          string
	PersonalAccessToken string `validate:"required"`
}

// LDAPInfo authenticates against the ldap backend.
type LDAPInfo struct {
	// MountPoint defaults to "ldap".
	MountPoint string
	Username   string `validate:"required"`
	Password   string `validate:"required"`
}

// CertificateInfo authenticates with a TLS client certificate presented
// during the handshake.
type CertificateInfo struct {
	// MountPoint defaults to "cert".
	MountPoint        string
	ClientCertificate *tls.Certificate `validate:"required"`
}

// TokenInfo uses an already issued token as is.
type TokenInfo struct {
	Token string `validate:"required"`
}

// UsernamePasswordInfo authenticates against the userpass backend.
type UsernamePasswordInfo struct {
	// MountPoint defaults to "userpass".
	MountPoint string
	Username   string `validate:"required"`
	Password   string `validate:"required"`
}

// CustomInfo obtains tokens from a caller-supplied function, which manages
// its own transport if it needs one.
type CustomInfo struct {
	Delegate func(ctx context.Context) (string, error) `validate:"required"`
}

func (*AppIDInfo) Kind() Kind            { return KindAppID }
func (*GitHubInfo) Kind() Kind           { return KindGitHub }
func (*LDAPInfo) Kind() Kind             { return KindLDAP }
func (*CertificateInfo) Kind() Kind      { return KindCertificate }
func (*TokenInfo) Kind() Kind            { return KindToken }
func (*UsernamePasswordInfo) Kind() Kind { return KindUserpass }
func (*CustomInfo) Kind() Kind           { return KindCustom }

func (*AppIDInfo) isInfo()            {}
func (*GitHubInfo) isInfo()           {}
func (*LDAPInfo) isInfo()             {}
func (*CertificateInfo) isInfo()      {}
func (*TokenInfo) isInfo()            {}
func (*UsernamePasswordInfo) isInfo() {}
func (*CustomInfo) isInfo()           {}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInfo checks that info is present and carries its kind's payload.
func validateInfo(info Info) error {
	if info == nil {
		return transport.MissingArgument("authenticationInfo")
	}
	if v := reflect.ValueOf(info); v.Kind() == reflect.Ptr && v.IsNil() {
		return transport.MissingArgument("authenticationInfo")
	}

	if err := validate.Struct(info); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &transport.ArgumentError{
				Name:    fieldErrs[0].Field(),
				Message: fmt.Sprintf("required for %s authentication", info.Kind()),
			}
		}
		return &transport.ArgumentError{Name: "authenticationInfo", Message: err.Error()}
	}
	return nil
}

func mountOrDefault(mount string, kind Kind) string {
	if mount == "" {
		return string(kind)
	}
	return mount
}
