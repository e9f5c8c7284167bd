package vault

// HealthStatus is returned by sys/health. StatusCode tells an active node
// (200) from a standby (429), DR secondary (472), performance standby (473),
// uninitialized (501) or sealed (503) one.
type HealthStatus struct {
	Initialized                bool   `json:"initialized"`
	Sealed                     bool   `json:"sealed"`
	Standby                    bool   `json:"standby"`
	PerformanceStandby         bool   `json:"performance_standby"`
	ReplicationPerformanceMode string `json:"replication_performance_mode"`
	ReplicationDRMode          string `json:"replication_dr_mode"`
	ServerTimeUTC              int64  `json:"server_time_utc"`
	Version                    string `json:"version"`
	ClusterName                string `json:"cluster_name"`
	ClusterID                  string `json:"cluster_id"`

	StatusCode int `json:"-"`
}

// InitStatus is returned by sys/init.
type InitStatus struct {
	Initialized bool `json:"initialized"`
}

// SealStatus is returned by sys/seal-status and sys/unseal.
type SealStatus struct {
	Type        string `json:"type"`
	Initialized bool   `json:"initialized"`
	Sealed      bool   `json:"sealed"`
	Threshold   int    `json:"t"`
	Shares      int    `json:"n"`
	Progress    int    `json:"progress"`
	Nonce       string `json:"nonce"`
	Version     string `json:"version"`
	ClusterName string `json:"cluster_name"`
	ClusterID   string `json:"cluster_id"`
}

// LeaderStatus is returned by sys/leader.
type LeaderStatus struct {
	HAEnabled            bool   `json:"ha_enabled"`
	IsSelf               bool   `json:"is_self"`
	LeaderAddress        string `json:"leader_address"`
	LeaderClusterAddress string `json:"leader_cluster_address"`
}

// Secret is the generic response envelope for logical reads.
type Secret struct {
	RequestID     string         `json:"request_id"`
	LeaseID       string         `json:"lease_id"`
	LeaseDuration int            `json:"lease_duration"`
	Renewable     bool           `json:"renewable"`
	Data          map[string]any `json:"data"`
	Warnings      []string       `json:"warnings"`
}

type listResponse struct {
	Data struct {
		Keys []string `json:"keys"`
	} `json:"data"`
}

// Policy is an ACL policy.
type Policy struct {
	Name  string `json:"name"`
	Rules string `json:"rules"`
}

type policyList struct {
	Policies []string `json:"policies"`
}

// TokenDetails describes a token as returned by the lookup endpoints.
type TokenDetails struct {
	ID             string            `json:"id"`
	Accessor       string            `json:"accessor"`
	DisplayName    string            `json:"display_name"`
	Path           string            `json:"path"`
	Policies       []string          `json:"policies"`
	Meta           map[string]string `json:"meta"`
	TTL            int               `json:"ttl"`
	CreationTTL    int               `json:"creation_ttl"`
	ExplicitMaxTTL int               `json:"explicit_max_ttl"`
	NumUses        int               `json:"num_uses"`
	Orphan         bool              `json:"orphan"`
	Renewable      bool              `json:"renewable"`
	EntityID       string            `json:"entity_id"`
}

type tokenLookup struct {
	Data *TokenDetails `json:"data"`
}

// MountConfig tunes a secret engine's leases.
type MountConfig struct {
	DefaultLeaseTTL string `json:"default_lease_ttl,omitempty"`
	MaxLeaseTTL     string `json:"max_lease_ttl,omitempty"`
}

// MountInput describes a secret engine to enable.
type MountInput struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Config      MountConfig       `json:"config"`
	Options     map[string]string `json:"options,omitempty"`
	Local       bool              `json:"local,omitempty"`
	SealWrap    bool              `json:"seal_wrap,omitempty"`
}

// MountOutput describes a mounted secret engine.
type MountOutput struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Accessor    string            `json:"accessor"`
	Options     map[string]string `json:"options"`
	Local       bool              `json:"local"`
	SealWrap    bool              `json:"seal_wrap"`
}

type mountList struct {
	Data map[string]*MountOutput `json:"data"`
}
