package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/cluster-monitor/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("RecordConnectAttempt", func() {
		It("should count attempts and failures", func() {
			m.RecordConnectAttempt(false)
			m.RecordConnectAttempt(false)
			m.RecordConnectAttempt(true)

			snap := m.Snapshot()
			Expect(snap.ConnectAttempts).To(Equal(int64(3)))
			Expect(snap.ConnectFailures).To(Equal(int64(2)))
		})
	})

	Describe("RecordQuery", func() {
		It("should track the last outcome", func() {
			at := time.Now()
			m.RecordQuery(at, 5*time.Millisecond, true, "")

			snap := m.Snapshot()
			Expect(snap.Queries).To(Equal(int64(1)))
			Expect(snap.QueryFailures).To(BeZero())
			Expect(snap.LastQueryOK).To(BeTrue())
			Expect(snap.LastQueryAt).To(Equal(at))
		})

		It("should keep the last error after a failure", func() {
			m.RecordQuery(time.Now(), time.Millisecond, true, "")
			m.RecordQuery(time.Now(), 30*time.Second, false, "read timeout")

			snap := m.Snapshot()
			Expect(snap.Queries).To(Equal(int64(2)))
			Expect(snap.QueryFailures).To(Equal(int64(1)))
			Expect(snap.LastQueryOK).To(BeFalse())
			Expect(snap.LastError).To(Equal("read timeout"))
		})

		It("should compute latency percentiles from successful queries only", func() {
			for i := 1; i <= 100; i++ {
				m.RecordQuery(time.Now(), time.Duration(i)*time.Millisecond, true, "")
			}
			m.RecordQuery(time.Now(), time.Hour, false, "timeout")

			snap := m.Snapshot()
			Expect(snap.P50Latency).To(Equal(51 * time.Millisecond))
			Expect(snap.P95Latency).To(Equal(96 * time.Millisecond))
			Expect(snap.P99Latency).To(Equal(100 * time.Millisecond))
			Expect(snap.AvgLatency).To(Equal(50500 * time.Microsecond))
		})

		It("should bound the latency window", func() {
			for i := 0; i < 1500; i++ {
				m.RecordQuery(time.Now(), time.Second, true, "")
			}
			m.RecordQuery(time.Now(), time.Millisecond, true, "")

			snap := m.Snapshot()
			Expect(snap.Queries).To(Equal(int64(1501)))
			Expect(snap.P50Latency).To(Equal(time.Second))
		})
	})

	Describe("UpdateState", func() {
		It("should return the previous state", func() {
			Expect(m.UpdateState("CONNECTING")).To(BeEmpty())
			Expect(m.UpdateState("RUNNING")).To(Equal("CONNECTING"))
			Expect(m.Snapshot().State).To(Equal("RUNNING"))
		})
	})

	Describe("UpdateAvailability", func() {
		It("should track the cluster availability", func() {
			Expect(m.Snapshot().Up).To(BeFalse())
			m.UpdateAvailability(true)
			Expect(m.Snapshot().Up).To(BeTrue())
		})
	})

	Describe("Snapshot", func() {
		It("should report uptime", func() {
			time.Sleep(5 * time.Millisecond)
			Expect(m.Snapshot().Uptime).To(BeNumerically(">=", 5*time.Millisecond))
		})
	})
})
