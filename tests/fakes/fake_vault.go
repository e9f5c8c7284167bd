package fakes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// RootToken is accepted by every FakeVault until revoked.
const RootToken = "root-token"

// FakeVault is an in-memory Vault HTTP API served by httptest.
//
// It implements the subset of routes vaultkit calls: sys health, seal and
// leader status, KV v1 secrets, ACL policies, token lookup/renew/revoke,
// secret engine mounts and the login endpoints of the userpass, ldap,
// app-id, github and cert backends.
//
// Tests may set exported fields before issuing requests, not while
// requests are in flight.
type FakeVault struct {
	*httptest.Server

	mu sync.Mutex

	// Initialized, Sealed and Standby drive the sys routes.
	Initialized bool
	Sealed      bool
	Standby     bool
	UnsealKey   string

	// Secrets maps a path such as "secret/app" to its data.
	Secrets map[string]map[string]any
	// Policies maps policy name to rules.
	Policies map[string]string
	// Mounts maps a mount path with trailing slash to its description.
	Mounts map[string]FakeMount
	// Tokens holds every token the fake accepts.
	Tokens map[string]*FakeToken

	// Users maps username to password for userpass and ldap logins.
	Users map[string]string
	// AppIDs maps app_id to the user_id it must be paired with.
	AppIDs map[string]string
	// GitHubTokens lists personal access tokens accepted by github logins.
	GitHubTokens map[string]bool
	// LeaseDuration is the TTL in seconds issued with login tokens.
	LeaseDuration int

	// Intercept, when set, is consulted before routing. Returning true means
	// the request has been answered.
	Intercept func(w http.ResponseWriter, r *http.Request) bool

	requests  []RecordedRequest
	nextToken int
}

// FakeMount describes a mounted secret engine.
type FakeMount struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Accessor    string `json:"accessor"`
}

// FakeToken is a token known to the fake.
type FakeToken struct {
	ID        string
	Accessor  string
	Policies  []string
	TTL       int
	Orphan    bool
	Renewable bool
	Path      string
}

// RecordedRequest is a request as seen by the fake.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// NewFakeVault starts a plain HTTP fake that is initialized and unsealed.
func NewFakeVault(t *testing.T) *FakeVault {
	t.Helper()

	f := newFakeVault()
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// NewUnstartedFakeVault returns a fake whose server has not been started,
// so tests can configure TLS first.
func NewUnstartedFakeVault(t *testing.T) *FakeVault {
	t.Helper()

	f := newFakeVault()
	f.Server = httptest.NewUnstartedServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func newFakeVault() *FakeVault {
	return &FakeVault{
		Initialized: true,
		UnsealKey:   "unseal-key",
		Secrets:     make(map[string]map[string]any),
		Policies: map[string]string{
			"default": `path "auth/token/lookup-self" { capabilities = ["read"] }`,
			"root":    "",
		},
		Mounts: map[string]FakeMount{
			"secret/":    {Type: "kv", Description: "key/value secret storage", Accessor: "kv_0001"},
			"sys/":       {Type: "system", Description: "system endpoints", Accessor: "system_0001"},
			"cubbyhole/": {Type: "cubbyhole", Description: "per-token private secret storage", Accessor: "cubbyhole_0001"},
		},
		Tokens: map[string]*FakeToken{
			RootToken: {ID: RootToken, Accessor: "root-accessor", Policies: []string{"root"}, Path: "auth/token/root"},
		},
		Users:         make(map[string]string),
		AppIDs:        make(map[string]string),
		GitHubTokens:  make(map[string]bool),
		LeaseDuration: 3600,
	}
}

// SetSecret stores data at path.
func (f *FakeVault) SetSecret(path string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Secrets[strings.Trim(path, "/")] = data
}

// Secret returns the data stored at path.
func (f *FakeVault) Secret(path string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Secrets[strings.Trim(path, "/")]
	return data, ok
}

// Requests returns every request received so far.
func (f *FakeVault) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request.
func (f *FakeVault) LastRequest() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// RequestsTo returns the requests whose path equals path.
func (f *FakeVault) RequestsTo(path string) []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []RecordedRequest
	for _, r := range f.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeVault) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	intercept := f.Intercept
	f.mu.Unlock()

	if intercept != nil && intercept(w, r) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v1/")

	switch path {
	case "sys/health":
		f.health(w, r)
		return
	case "sys/init":
		writeJSON(w, http.StatusOK, map[string]any{"initialized": f.Initialized})
		return
	case "sys/seal-status":
		writeJSON(w, http.StatusOK, f.sealStatus())
		return
	case "sys/unseal":
		f.unseal(w, body)
		return
	case "sys/leader":
		writeJSON(w, http.StatusOK, map[string]any{
			"ha_enabled":             true,
			"is_self":                !f.Standby,
			"leader_address":         f.URL,
			"leader_cluster_address": strings.Replace(f.URL, "http", "tcp", 1),
		})
		return
	}

	if f.Sealed {
		writeErrors(w, http.StatusServiceUnavailable, "Vault is sealed")
		return
	}

	if strings.HasPrefix(path, "auth/") && strings.Contains(path, "/login") {
		f.login(w, r, path, body)
		return
	}

	token, ok := f.Tokens[r.Header.Get("X-Vault-Token")]
	if !ok {
		writeErrors(w, http.StatusForbidden, "permission denied")
		return
	}

	switch {
	case path == "sys/seal":
		f.Sealed = true
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(path, "auth/token/"):
		f.tokens(w, r, strings.TrimPrefix(path, "auth/token/"), token, body)
	case path == "sys/policy":
		names := sortedKeys(f.Policies)
		writeJSON(w, http.StatusOK, map[string]any{"policies": names, "keys": names})
	case strings.HasPrefix(path, "sys/policy/"):
		f.policy(w, r, strings.TrimPrefix(path, "sys/policy/"), body)
	case path == "sys/mounts":
		writeJSON(w, http.StatusOK, map[string]any{"data": f.Mounts})
	case strings.HasPrefix(path, "sys/mounts/"):
		f.mount(w, r, strings.TrimPrefix(path, "sys/mounts/"), body)
	case path == "sys/remount":
		f.remount(w, body)
	default:
		f.secret(w, r, path, body)
	}
}

func (f *FakeVault) health(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	switch {
	case !f.Initialized:
		code = http.StatusNotImplemented
	case f.Sealed:
		code = http.StatusServiceUnavailable
	case f.Standby:
		code = http.StatusTooManyRequests
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, map[string]any{
		"initialized":     f.Initialized,
		"sealed":          f.Sealed,
		"standby":         f.Standby,
		"server_time_utc": 1700000000,
		"version":         "1.15.0",
		"cluster_name":    "vault-cluster-fake",
		"cluster_id":      "fake-cluster-id",
	})
}

func (f *FakeVault) sealStatus() map[string]any {
	return map[string]any{
		"type":         "shamir",
		"initialized":  f.Initialized,
		"sealed":       f.Sealed,
		"t":            1,
		"n":            1,
		"progress":     0,
		"version":      "1.15.0",
		"cluster_name": "vault-cluster-fake",
	}
}

func (f *FakeVault) unseal(w http.ResponseWriter, body []byte) {
	var req struct {
		Key   string `json:"key"`
		Reset bool   `json:"reset"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, "failed to parse JSON input")
		return
	}
	if req.Reset {
		writeJSON(w, http.StatusOK, f.sealStatus())
		return
	}
	if req.Key != f.UnsealKey {
		writeErrors(w, http.StatusBadRequest, "invalid key")
		return
	}
	f.Sealed = false
	writeJSON(w, http.StatusOK, f.sealStatus())
}

func (f *FakeVault) login(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	var payload map[string]string
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			writeErrors(w, http.StatusBadRequest, "failed to parse JSON input")
			return
		}
	}

	parts := strings.Split(strings.TrimPrefix(path, "auth/"), "/")
	if len(parts) < 2 {
		writeErrors(w, http.StatusNotFound, "no handler for route")
		return
	}
	mount := parts[0]

	var accepted bool
	var display string
	switch {
	case len(parts) == 3:
		username := parts[2]
		want, ok := f.Users[username]
		accepted = ok && want == payload["password"]
		display = mount + "-" + username
	case payload["app_id"] != "":
		accepted = f.AppIDs[payload["app_id"]] == payload["user_id"]
		display = mount + "-" + payload["app_id"]
	case payload["token"] != "":
		accepted = f.GitHubTokens[payload["token"]]
		display = mount + "-github"
	case r.TLS != nil && len(r.TLS.PeerCertificates) > 0:
		accepted = true
		display = mount + "-" + r.TLS.PeerCertificates[0].Subject.CommonName
	}

	if !accepted {
		writeErrors(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	token := f.issue(display)
	writeJSON(w, http.StatusOK, map[string]any{
		"request_id": fmt.Sprintf("req-%d", f.nextToken),
		"auth":       authBlock(token),
	})
}

func (f *FakeVault) issue(display string) *FakeToken {
	f.nextToken++
	token := &FakeToken{
		ID:        fmt.Sprintf("s.fake-%d", f.nextToken),
		Accessor:  fmt.Sprintf("accessor-%d", f.nextToken),
		Policies:  []string{"default"},
		TTL:       f.LeaseDuration,
		Renewable: true,
		Path:      "auth/" + display,
	}
	f.Tokens[token.ID] = token
	return token
}

func (f *FakeVault) tokens(w http.ResponseWriter, r *http.Request, op string, caller *FakeToken, body []byte) {
	var req struct {
		Token     string `json:"token"`
		Increment int    `json:"increment"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &req)
	}

	switch op {
	case "lookup-self":
		writeJSON(w, http.StatusOK, map[string]any{"data": tokenData(caller)})
	case "lookup":
		target, ok := f.Tokens[req.Token]
		if !ok {
			writeErrors(w, http.StatusForbidden, "bad token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": tokenData(target)})
	case "renew-self":
		if !caller.Renewable {
			writeErrors(w, http.StatusBadRequest, "lease is not renewable")
			return
		}
		if req.Increment > 0 {
			caller.TTL = req.Increment
		}
		writeJSON(w, http.StatusOK, map[string]any{"auth": authBlock(caller)})
	case "revoke", "revoke-orphan":
		if _, ok := f.Tokens[req.Token]; !ok {
			writeErrors(w, http.StatusBadRequest, "token to revoke not found")
			return
		}
		delete(f.Tokens, req.Token)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrors(w, http.StatusNotFound, "no handler for route")
	}
}

func (f *FakeVault) policy(w http.ResponseWriter, r *http.Request, name string, body []byte) {
	switch r.Method {
	case http.MethodGet:
		rules, ok := f.Policies[name]
		if !ok {
			writeErrors(w, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"name": name, "rules": rules})
	case http.MethodPut, http.MethodPost:
		var req struct {
			Policy string `json:"policy"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.Policy == "" {
			writeErrors(w, http.StatusBadRequest, "'policy' parameter not supplied or empty")
			return
		}
		f.Policies[name] = req.Policy
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if name == "root" || name == "default" {
			writeErrors(w, http.StatusBadRequest, fmt.Sprintf("cannot delete %q policy", name))
			return
		}
		delete(f.Policies, name)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrors(w, http.StatusMethodNotAllowed)
	}
}

func (f *FakeVault) mount(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	key := strings.Trim(path, "/") + "/"

	switch r.Method {
	case http.MethodPost, http.MethodPut:
		if _, ok := f.Mounts[key]; ok {
			writeErrors(w, http.StatusBadRequest, fmt.Sprintf("path is already in use at %s", key))
			return
		}
		var m FakeMount
		if err := json.Unmarshal(body, &m); err != nil || m.Type == "" {
			writeErrors(w, http.StatusBadRequest, "missing mount type")
			return
		}
		m.Accessor = fmt.Sprintf("%s_%04d", m.Type, len(f.Mounts)+1)
		f.Mounts[key] = m
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		delete(f.Mounts, key)
		for p := range f.Secrets {
			if strings.HasPrefix(p+"/", key) {
				delete(f.Secrets, p)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrors(w, http.StatusMethodNotAllowed)
	}
}

func (f *FakeVault) remount(w http.ResponseWriter, body []byte) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, "failed to parse JSON input")
		return
	}

	from := strings.Trim(req.From, "/") + "/"
	to := strings.Trim(req.To, "/") + "/"
	m, ok := f.Mounts[from]
	if !ok {
		writeErrors(w, http.StatusBadRequest, fmt.Sprintf("no matching mount at %q", from))
		return
	}
	delete(f.Mounts, from)
	f.Mounts[to] = m

	for p, data := range f.Secrets {
		if strings.HasPrefix(p+"/", from) {
			delete(f.Secrets, p)
			f.Secrets[to+strings.TrimPrefix(p, from)] = data
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeVault) secret(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	path = strings.Trim(path, "/")
	if !f.mounted(path) {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("no handler for route %q", path))
		return
	}

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("list") == "true" {
			keys := f.list(path)
			if len(keys) == 0 {
				writeErrors(w, http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"keys": keys}})
			return
		}
		data, ok := f.Secrets[path]
		if !ok {
			writeErrors(w, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"request_id":     "req-secret",
			"lease_id":       "",
			"lease_duration": 2764800,
			"renewable":      false,
			"data":           data,
		})
	case http.MethodPost, http.MethodPut:
		var data map[string]any
		if err := json.Unmarshal(body, &data); err != nil {
			writeErrors(w, http.StatusBadRequest, "failed to parse JSON input")
			return
		}
		f.Secrets[path] = data
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		delete(f.Secrets, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrors(w, http.StatusMethodNotAllowed)
	}
}

func (f *FakeVault) mounted(path string) bool {
	for m := range f.Mounts {
		if strings.HasPrefix(path+"/", m) {
			return true
		}
	}
	return false
}

// list returns the direct children of prefix, folders with a trailing slash.
func (f *FakeVault) list(prefix string) []string {
	prefix = strings.Trim(prefix, "/") + "/"
	seen := make(map[string]bool)
	for p := range f.Secrets {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i+1]
		}
		seen[rest] = true
	}
	return sortedKeys(seen)
}

func tokenData(t *FakeToken) map[string]any {
	return map[string]any{
		"id":           t.ID,
		"accessor":     t.Accessor,
		"policies":     t.Policies,
		"ttl":          t.TTL,
		"creation_ttl": t.TTL,
		"orphan":       t.Orphan,
		"renewable":    t.Renewable,
		"path":         t.Path,
		"display_name": strings.TrimPrefix(t.Path, "auth/"),
		"num_uses":     0,
	}
}

func authBlock(t *FakeToken) map[string]any {
	return map[string]any{
		"client_token":   t.ID,
		"accessor":       t.Accessor,
		"policies":       t.Policies,
		"lease_duration": t.TTL,
		"renewable":      t.Renewable,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrors(w http.ResponseWriter, code int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	writeJSON(w, code, map[string]any{"errors": messages})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
