package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gocql/gocql"
)

// Client creates sessions against one cluster configuration.
type Client struct {
	cfg *gocql.ClusterConfig
	log *slog.Logger
}

func NewClient(opts Options, log *slog.Logger) (*Client, error) {
	cfg, err := NewClusterConfig(opts, log)
	if err != nil {
		return nil, fmt.Errorf("cluster config: %w", err)
	}
	return &Client{cfg: cfg, log: log}, nil
}

// Config exposes the resolved driver configuration.
func (c *Client) Config() *gocql.ClusterConfig {
	return c.cfg
}

// Connect builds the connection pool. The driver bounds the attempt with the
// connect timeout; ctx is only checked before dialing.
func (c *Client) Connect(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := c.cfg.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session against %v: %w", c.cfg.Hosts, err)
	}

	c.log.Info("Connected to cluster",
		slog.Any("hosts", c.cfg.Hosts),
		slog.Int("protocol_version", c.cfg.ProtoVersion),
		slog.Int("conns_per_host", c.cfg.NumConns))

	return Guard(&driverSession{session: session}), nil
}
