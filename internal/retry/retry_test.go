package retry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/cluster-monitor/internal/retry"
)

var errRefused = errors.New("connection refused")

var _ = Describe("Policy", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	failTimes := func(n int32, calls *atomic.Int32) func(context.Context) error {
		return func(context.Context) error {
			if calls.Add(1) <= n {
				return errRefused
			}
			return nil
		}
	}

	It("should not retry a successful operation", func() {
		var calls atomic.Int32
		notified := 0

		err := retry.Fixed(10*time.Millisecond).Do(ctx, failTimes(0, &calls), func(int, error, time.Duration) {
			notified++
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(notified).To(BeZero())
	})

	It("should retry at the fixed delay until the operation succeeds", func() {
		var calls atomic.Int32
		var attempts []int
		var delays []time.Duration

		start := time.Now()
		err := retry.Fixed(20*time.Millisecond).Do(ctx, failTimes(2, &calls), func(attempt int, err error, next time.Duration) {
			Expect(err).To(MatchError(errRefused))
			attempts = append(attempts, attempt)
			delays = append(delays, next)
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(3)))
		Expect(attempts).To(Equal([]int{1, 2}))
		Expect(delays).To(Equal([]time.Duration{20 * time.Millisecond, 20 * time.Millisecond}))
		Expect(time.Since(start)).To(BeNumerically(">=", 40*time.Millisecond))
	})

	It("should keep retrying without a budget", func() {
		var calls atomic.Int32

		err := retry.Fixed(time.Millisecond).Do(ctx, failTimes(50, &calls), nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(51)))
	})

	It("should give up once the attempt budget is spent", func() {
		var calls atomic.Int32
		notified := 0

		err := retry.Fixed(time.Millisecond).WithMaxAttempts(3).Do(ctx, failTimes(100, &calls), func(int, error, time.Duration) {
			notified++
		})

		Expect(err).To(MatchError(retry.ErrAttemptsExhausted))
		Expect(errors.Is(err, errRefused)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
		Expect(calls.Load()).To(Equal(int32(3)))
		Expect(notified).To(Equal(2))
	})

	It("should stop waiting when the context is cancelled", func() {
		var calls atomic.Int32
		ctx, cancel := context.WithCancel(ctx)

		go func() {
			defer GinkgoRecover()
			Eventually(calls.Load).Should(BeNumerically(">=", 1))
			cancel()
		}()

		err := retry.Fixed(time.Hour).Do(ctx, failTimes(100, &calls), nil)

		Expect(err).To(MatchError(context.Canceled))
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})
