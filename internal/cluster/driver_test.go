package cluster_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/gocql/gocql"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/cluster-monitor/internal/cluster"
)

var _ = Describe("NewClusterConfig", func() {
	var (
		opts cluster.Options
		log  *slog.Logger
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		opts = cluster.DefaultOptions("10.0.0.1", "10.0.0.2")
		opts.Pooling = cluster.NewPoolingOptions(1, 2, 30*time.Second)
	})

	It("should build a pool against every contact point", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Hosts).To(Equal([]string{"10.0.0.1", "10.0.0.2"}))
		Expect(cfg.Port).To(Equal(9042))
	})

	It("should size the pool within the configured bounds", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NumConns).To(BeNumerically(">=", 1))
		Expect(cfg.NumConns).To(BeNumerically("<=", 2))
	})

	It("should map heartbeat, timeouts and protocol version", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.SocketKeepalive).To(Equal(30 * time.Second))
		Expect(cfg.Timeout).To(Equal(30000 * time.Millisecond))
		Expect(cfg.ConnectTimeout).To(Equal(cluster.DefaultConnectTimeout))
		Expect(cfg.ProtoVersion).To(Equal(3))
		Expect(cfg.Consistency).To(Equal(gocql.LocalOne))
	})

	It("should use exponential reconnection between 1s and 10s", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())

		policy, ok := cfg.ReconnectionPolicy.(*gocql.ExponentialReconnectionPolicy)
		Expect(ok).To(BeTrue())
		Expect(policy.InitialInterval).To(Equal(1000 * time.Millisecond))
		Expect(policy.MaxInterval).To(Equal(10000 * time.Millisecond))
		Expect(cfg.ReconnectInterval).To(Equal(10000 * time.Millisecond))
	})

	It("should downgrade consistency instead of failing outright", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())

		policy, ok := cfg.RetryPolicy.(*gocql.DowngradingConsistencyRetryPolicy)
		Expect(ok).To(BeTrue())
		Expect(policy.ConsistencyLevelsToTry).To(Equal([]gocql.Consistency{gocql.One}))
	})

	It("should connect without authentication when no credentials are set", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Authenticator).To(BeNil())
	})

	It("should use password authentication when credentials are set", func() {
		opts.Credentials = cluster.NewCredentials("monitor", "s3cret")

		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Authenticator).To(Equal(gocql.PasswordAuthenticator{Username: "monitor", Password: "s3cret"}))
	})

	It("should route driver logs into slog", func() {
		cfg, err := cluster.NewClusterConfig(opts, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Logger).NotTo(BeNil())
	})

	DescribeTable("host selection policies",
		func(name, localDC string) {
			opts.HostSelection = name
			opts.LocalDC = localDC

			cfg, err := cluster.NewClusterConfig(opts, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.PoolConfig.HostSelectionPolicy).NotTo(BeNil())
		},
		Entry("round-robin", cluster.HostSelectionRoundRobin, ""),
		Entry("dc-aware", cluster.HostSelectionDCAware, "dc1"),
		Entry("token-aware", cluster.HostSelectionTokenAware, ""),
		Entry("token-aware over dc-aware", cluster.HostSelectionTokenAware, "dc1"),
		Entry("unknown falls back to token-aware", "fastest", ""),
	)

	It("should reject an unknown consistency level", func() {
		opts.Consistency = "MOSTLY"
		_, err := cluster.NewClusterConfig(opts, log)
		Expect(err).To(HaveOccurred())
	})

	It("should reject an unknown downgrade level", func() {
		opts.DowngradeTo = []string{"ONE", "SOME"}
		_, err := cluster.NewClusterConfig(opts, log)
		Expect(err).To(HaveOccurred())
	})

	It("should reject an unknown retry policy", func() {
		opts.RetryPolicy = "fallthrough"
		_, err := cluster.NewClusterConfig(opts, log)
		Expect(err).To(HaveOccurred())
	})

	It("should reject invalid options", func() {
		opts.Hosts = nil
		_, err := cluster.NewClusterConfig(opts, log)
		Expect(err).To(MatchError(cluster.ErrNoHosts))
	})
})
