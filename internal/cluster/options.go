package cluster

import (
	"errors"
	"fmt"
	"time"
)

// Distance classifies a host for pool sizing.
type Distance string

const (
	DistanceLocal  Distance = "local"
	DistanceRemote Distance = "remote"
)

const (
	HostSelectionRoundRobin = "round-robin"
	HostSelectionDCAware    = "dc-aware"
	HostSelectionTokenAware = "token-aware"
)

const RetryPolicyDowngradingConsistency = "downgrading-consistency"

const (
	DefaultPort            = 9042
	DefaultProtocolVersion = 3
	DefaultReadTimeout     = 30000 * time.Millisecond
	DefaultConnectTimeout  = 5 * time.Second
	DefaultReconnectBase   = 1000 * time.Millisecond
	DefaultReconnectMax    = 10000 * time.Millisecond
	DefaultConsistency     = "LOCAL_ONE"
)

var (
	ErrNoHosts         = errors.New("at least one contact point is required")
	ErrInvalidBounds   = errors.New("invalid pool bounds")
	ErrUnknownDistance = errors.New("unknown host distance")
)

// Bounds is the minimum (Core) and maximum (Max) number of pooled
// connections per host.
type Bounds struct {
	Core int
	Max  int
}

func (b Bounds) Validate() error {
	if b.Core < 1 || b.Max < b.Core {
		return fmt.Errorf("%w: core=%d max=%d", ErrInvalidBounds, b.Core, b.Max)
	}
	return nil
}

type PoolingOptions struct {
	ConnectionsPerHost map[Distance]Bounds
	HeartbeatInterval  time.Duration
}

// NewPoolingOptions applies the same bounds to both distance classes.
func NewPoolingOptions(core, max int, heartbeat time.Duration) PoolingOptions {
	bounds := Bounds{Core: core, Max: max}
	return PoolingOptions{
		ConnectionsPerHost: map[Distance]Bounds{
			DistanceLocal:  bounds,
			DistanceRemote: bounds,
		},
		HeartbeatInterval: heartbeat,
	}
}

func (p PoolingOptions) Bounds(d Distance) (Bounds, error) {
	b, ok := p.ConnectionsPerHost[d]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", ErrUnknownDistance, d)
	}
	return b, nil
}

// Credentials is a username/password pair. String never renders the password.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %s, Password: <redacted>}", c.Username)
}

// NewCredentials returns nil unless both halves are present.
func NewCredentials(username, password string) *Credentials {
	if username == "" || password == "" {
		return nil
	}
	return &Credentials{Username: username, Password: password}
}

// ReconnectionOptions bounds the exponential backoff the driver uses to
// reconnect to a host that went down.
type ReconnectionOptions struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

type Options struct {
	Hosts           []string
	Port            int
	Pooling         PoolingOptions
	ReadTimeout     time.Duration
	ConnectTimeout  time.Duration
	Credentials     *Credentials
	Reconnection    ReconnectionOptions
	ProtocolVersion int
	RetryPolicy     string
	// Consistency is the level queries start at; DowngradeTo lists the levels
	// the retry policy falls back to on partial unavailability.
	Consistency   string
	DowngradeTo   []string
	HostSelection string
	LocalDC       string
}

// DefaultOptions returns the monitor's fixed driver settings for hosts with
// a single connection per host.
func DefaultOptions(hosts ...string) Options {
	return Options{
		Hosts:           hosts,
		Port:            DefaultPort,
		Pooling:         NewPoolingOptions(1, 1, 30*time.Second),
		ReadTimeout:     DefaultReadTimeout,
		ConnectTimeout:  DefaultConnectTimeout,
		Reconnection:    ReconnectionOptions{BaseDelay: DefaultReconnectBase, MaxDelay: DefaultReconnectMax},
		ProtocolVersion: DefaultProtocolVersion,
		RetryPolicy:     RetryPolicyDowngradingConsistency,
		Consistency:     DefaultConsistency,
		DowngradeTo:     []string{"ONE"},
		HostSelection:   HostSelectionTokenAware,
	}
}

func (o Options) Validate() error {
	if len(o.Hosts) == 0 {
		return ErrNoHosts
	}

	for _, d := range []Distance{DistanceLocal, DistanceRemote} {
		b, err := o.Pooling.Bounds(d)
		if err != nil {
			return err
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%s pool: %w", d, err)
		}
	}

	if o.Reconnection.BaseDelay <= 0 || o.Reconnection.MaxDelay < o.Reconnection.BaseDelay {
		return fmt.Errorf("invalid reconnection backoff: base=%s max=%s", o.Reconnection.BaseDelay, o.Reconnection.MaxDelay)
	}

	return nil
}
