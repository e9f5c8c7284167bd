package config

import (
	"crypto/tls"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	vkerrors "github.com/systmms/vaultkit/internal/errors"
	"github.com/systmms/vaultkit/internal/logging"
	"github.com/systmms/vaultkit/internal/tokenstore"
	"github.com/systmms/vaultkit/pkg/auth"
	"github.com/systmms/vaultkit/pkg/transport"
)

const (
	DefaultPath      = "vaultkit.yaml"
	DefaultTimeoutMs = 30000
	CurrentVersion   = 1
)

//go:embed schema.json
var schemaJSON string

// Config holds the runtime configuration
type Config struct {
	Path   string
	Logger *logging.Logger
	// Address, when set, overrides both the file and VAULT_ADDR.
	Address string
	// Metrics, when set, records every exchange of the clients built from
	// this configuration.
	Metrics    *transport.Metrics
	Definition *Definition
}

// Definition represents the vaultkit.yaml structure
type Definition struct {
	Version        int        `yaml:"version"`
	Address        string     `yaml:"address,omitempty"`
	TimeoutMs      int        `yaml:"timeout_ms,omitempty"`
	Namespace      string     `yaml:"namespace,omitempty"`
	PerCallHeaders bool       `yaml:"per_call_headers,omitempty"`
	Auth           AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig selects the authentication method and its credentials.
// Passwords and tokens are better supplied through the environment.
type AuthConfig struct {
	Method      string `yaml:"method"`
	Mount       string `yaml:"mount,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	Token       string `yaml:"token,omitempty"`
	AppID       string `yaml:"app_id,omitempty"`
	UserID      string `yaml:"user_id,omitempty"`
	GitHubToken string `yaml:"github_token,omitempty"`
	ClientCert  string `yaml:"client_cert,omitempty"`
	ClientKey   string `yaml:"client_key,omitempty"`
}

// Load reads, validates and parses the vaultkit.yaml file, then applies
// environment overrides. A missing file at the default path is not an
// error: the definition then comes from the environment alone.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if c.Path == "" || c.Path == DefaultPath {
				return c.loadDefinition(&Definition{Version: CurrentVersion})
			}
			return vkerrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create the file or set VAULT_ADDR and VAULT_TOKEN instead",
			}
		}
		return vkerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def, err := Parse(data)
	if err != nil {
		return err
	}
	return c.loadDefinition(def)
}

func (c *Config) loadDefinition(def *Definition) error {
	applyEnv(def)
	if c.Address != "" {
		def.Address = c.Address
	}
	if err := def.Validate(); err != nil {
		return err
	}

	c.Definition = def
	if c.Logger != nil {
		c.Logger.Debug("Loaded configuration for %s (auth: %s)", def.Address, def.authMethodLabel())
	}
	return nil
}

// Parse validates data against the configuration schema and decodes it.
// Environment overrides are not applied.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, vkerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, vkerrors.ConfigError{
			Message:    "configuration does not match the expected structure",
			Suggestion: err.Error(),
		}
	}
	return &def, nil
}

func validateSchema(raw map[string]interface{}) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		first := result.Errors()[0]
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return vkerrors.ConfigError{
			Field:      first.Field(),
			Message:    "schema validation failed:\n  - " + strings.Join(messages, "\n  - "),
			Suggestion: "Compare your vaultkit.yaml with the documented fields",
		}
	}
	return nil
}

// applyEnv overrides the definition with the standard VAULT_* variables.
func applyEnv(def *Definition) {
	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		def.Address = addr
	}
	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		def.Namespace = namespace
	}
	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		if def.Auth.Method == "" || def.Auth.Method == "token" {
			def.Auth.Method = "token"
			def.Auth.Token = token
		}
	}
	if cert := os.Getenv("VAULT_CLIENT_CERT"); cert != "" {
		def.Auth.ClientCert = cert
	}
	if key := os.Getenv("VAULT_CLIENT_KEY"); key != "" {
		def.Auth.ClientKey = key
	}
	if def.Auth.Method == "" && def.Auth.ClientCert != "" && def.Auth.ClientKey != "" {
		def.Auth.Method = "cert"
	}
}

// Validate checks fields the schema cannot express.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Address) == "" {
		return vkerrors.ConfigError{
			Field:      "address",
			Message:    "no Vault address configured",
			Suggestion: "Set 'address' in vaultkit.yaml or the VAULT_ADDR environment variable",
		}
	}
	if d.Version != CurrentVersion {
		return vkerrors.ConfigError{
			Field:      "version",
			Value:      d.Version,
			Message:    "unsupported configuration version",
			Suggestion: fmt.Sprintf("Set 'version: %d' at the top of your vaultkit.yaml file", CurrentVersion),
		}
	}
	return nil
}

// Timeout returns the request timeout.
func (d *Definition) Timeout() time.Duration {
	if d.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// AuthInfo builds the authentication descriptor for the configured method.
// It returns nil when no method is configured. The keyring method reads the
// token stored by 'vaultkit login' from store.
func (d *Definition) AuthInfo(store *tokenstore.Store) (auth.Info, error) {
	a := d.Auth

	switch a.Method {
	case "":
		return nil, nil
	case "token":
		return &auth.TokenInfo{Token: a.Token}, nil
	case "userpass":
		return &auth.UsernamePasswordInfo{MountPoint: a.Mount, Username: a.Username, Password: a.Password}, nil
	case "ldap":
		return &auth.LDAPInfo{MountPoint: a.Mount, Username: a.Username, Password: a.Password}, nil
	case "app-id":
		return &auth.AppIDInfo{MountPoint: a.Mount, AppID: a.AppID, UserID: a.UserID}, nil
	case "github":
		return &auth.GitHubInfo{MountPoint: a.Mount, PersonalAccessToken: a.GitHubToken}, nil
	case "cert":
		if a.ClientCert == "" || a.ClientKey == "" {
			return nil, vkerrors.ConfigError{
				Field:      "auth.client_cert",
				Message:    "cert authentication needs a client certificate and key",
				Suggestion: "Set 'client_cert' and 'client_key', or VAULT_CLIENT_CERT and VAULT_CLIENT_KEY",
			}
		}
		cert, err := tls.LoadX509KeyPair(a.ClientCert, a.ClientKey)
		if err != nil {
			return nil, vkerrors.ConfigError{
				Field:      "auth.client_cert",
				Value:      a.ClientCert,
				Message:    fmt.Sprintf("failed to load client certificate: %v", err),
				Suggestion: "Check that both files exist and contain a matching PEM certificate and key",
			}
		}
		return &auth.CertificateInfo{MountPoint: a.Mount, ClientCertificate: &cert}, nil
	case "keyring":
		if store == nil {
			store = tokenstore.New("")
		}
		return &auth.CustomInfo{Delegate: store.Delegate(d.Address)}, nil
	default:
		return nil, vkerrors.ConfigError{
			Field:      "auth.method",
			Value:      a.Method,
			Message:    "unknown authentication method",
			Suggestion: "Supported methods: token, userpass, ldap, app-id, github, cert, keyring",
		}
	}
}

func (d *Definition) authMethodLabel() string {
	if d.Auth.Method == "" {
		return "none"
	}
	return d.Auth.Method
}
