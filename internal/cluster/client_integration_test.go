//go:build integration

package cluster_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	tccassandra "github.com/testcontainers/testcontainers-go/modules/cassandra"

	"github.com/angeloszaimis/cluster-monitor/internal/cluster"
)

var _ = Describe("Client against a live node", Ordered, func() {
	var (
		ctx  context.Context
		host string
		log  *slog.Logger
	)

	BeforeAll(func() {
		ctx = context.Background()
		log = slog.New(slog.NewTextHandler(io.Discard, nil))

		ctr, err := tccassandra.Run(ctx, "cassandra:4.1.3")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(ctr.Terminate(context.Background())).To(Succeed())
		})

		host, err = ctr.ConnectionHost(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should run the liveness query and close once", func() {
		opts := cluster.DefaultOptions(host)
		opts.ConnectTimeout = 10 * time.Second

		client, err := cluster.NewClient(opts, log)
		Expect(err).NotTo(HaveOccurred())

		session, err := client.Connect(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(session.Exec(ctx, "select now() from system.local;")).To(Succeed())

		session.Close()
		session.Close()
		Expect(session.Closed()).To(BeTrue())
		Expect(session.Exec(ctx, "select now() from system.local;")).To(MatchError(cluster.ErrSessionClosed))
	})
})
