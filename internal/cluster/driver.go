package cluster

import (
	"fmt"
	"log/slog"

	"github.com/gocql/gocql"

	"github.com/angeloszaimis/cluster-monitor/pkg/logger"
)

// reconnectAttempts is how many exponential steps the driver takes before a
// host is marked down; 1s, 2s, 4s, 8s, then the 10s ceiling. After that the
// driver keeps trying every ReconnectInterval, set to the ceiling.
const reconnectAttempts = 5

// NewClusterConfig maps opts onto a gocql cluster configuration.
//
// The driver keeps a fixed number of connections per host, so the pool is
// sized at the core bound, which never exceeds the max bound. The heartbeat
// interval drives the TCP keepalive on idle pooled connections.
func NewClusterConfig(opts Options, log *slog.Logger) (*gocql.ClusterConfig, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	local, err := opts.Pooling.Bounds(DistanceLocal)
	if err != nil {
		return nil, err
	}

	consistency, err := gocql.ParseConsistencyWrapper(opts.Consistency)
	if err != nil {
		return nil, fmt.Errorf("consistency: %w", err)
	}

	retryPolicy, err := newRetryPolicy(opts.RetryPolicy, opts.DowngradeTo)
	if err != nil {
		return nil, err
	}

	cfg := gocql.NewCluster(opts.Hosts...)
	cfg.Port = opts.Port
	cfg.ProtoVersion = opts.ProtocolVersion
	cfg.Timeout = opts.ReadTimeout
	cfg.ConnectTimeout = opts.ConnectTimeout
	cfg.NumConns = local.Core
	cfg.SocketKeepalive = opts.Pooling.HeartbeatInterval
	cfg.ReconnectionPolicy = &gocql.ExponentialReconnectionPolicy{
		MaxRetries:      reconnectAttempts,
		InitialInterval: opts.Reconnection.BaseDelay,
		MaxInterval:     opts.Reconnection.MaxDelay,
	}
	cfg.ReconnectInterval = opts.Reconnection.MaxDelay
	cfg.RetryPolicy = retryPolicy
	cfg.Consistency = consistency
	cfg.PoolConfig.HostSelectionPolicy = newHostSelectionPolicy(opts.HostSelection, opts.LocalDC, log)
	cfg.Logger = logger.NewDriverLogger(log)

	if opts.Credentials != nil {
		cfg.Authenticator = gocql.PasswordAuthenticator{
			Username: opts.Credentials.Username,
			Password: opts.Credentials.Password,
		}
	}

	return cfg, nil
}

func newRetryPolicy(name string, downgradeTo []string) (gocql.RetryPolicy, error) {
	switch name {
	case RetryPolicyDowngradingConsistency:
		levels := make([]gocql.Consistency, 0, len(downgradeTo))
		for _, l := range downgradeTo {
			c, err := gocql.ParseConsistencyWrapper(l)
			if err != nil {
				return nil, fmt.Errorf("downgrade consistency: %w", err)
			}
			levels = append(levels, c)
		}
		return &gocql.DowngradingConsistencyRetryPolicy{ConsistencyLevelsToTry: levels}, nil
	default:
		return nil, fmt.Errorf("unknown retry policy %q", name)
	}
}

// newHostSelectionPolicy picks the driver's load balancing policy. With a
// local DC, hosts in that DC are local and every other host is remote.
func newHostSelectionPolicy(name, localDC string, log *slog.Logger) gocql.HostSelectionPolicy {
	fallback := gocql.RoundRobinHostPolicy()
	if localDC != "" {
		fallback = gocql.DCAwareRoundRobinPolicy(localDC)
	}

	switch name {
	case HostSelectionRoundRobin:
		return gocql.RoundRobinHostPolicy()
	case HostSelectionDCAware:
		return gocql.DCAwareRoundRobinPolicy(localDC)
	case HostSelectionTokenAware:
		return gocql.TokenAwareHostPolicy(fallback)
	default:
		log.Warn("Unknown host selection policy, defaulting to token-aware", slog.String("requested", name))
		return gocql.TokenAwareHostPolicy(fallback)
	}
}
