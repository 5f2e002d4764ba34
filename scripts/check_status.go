// Check_status queries a running monitor's status server and verifies that
// the probe is running and the cluster answered the last liveness query.
//
// Usage:
//
//	go run check_status.go --url http://localhost:9180 --max-failures 0
//
// The tool verifies:
//   - The monitor reports the RUNNING state
//   - The last liveness query succeeded
//   - Failed queries do not exceed --max-failures (negative disables the check)
//
// Exit codes:
//
//	0 - Verification passed
//	2 - Status server unreachable or malformed response
//	3 - Monitor not running or cluster not answering
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/angeloszaimis/cluster-monitor/internal/metrics"
)

func main() {
	baseURL := pflag.String("url", "http://localhost:9180", "Base URL of the status server")
	maxFailures := pflag.Int64("max-failures", -1, "Maximum tolerated failed queries (optional)")
	timeout := pflag.Duration("timeout", 5*time.Second, "Request timeout")
	pflag.Parse()

	client := &http.Client{Timeout: *timeout}

	res, err := client.Get(*baseURL + "/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to reach status server: %v\n", err)
		os.Exit(2)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "unexpected status code: %d\n", res.StatusCode)
		os.Exit(2)
	}

	var snap metrics.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		fmt.Fprintf(os.Stderr, "failed to decode status: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("State: %s  Up: %t  Uptime: %s\n", snap.State, snap.Up, snap.Uptime)
	fmt.Printf("Connect attempts: %d  failures: %d\n", snap.ConnectAttempts, snap.ConnectFailures)
	fmt.Printf("Queries: %d  failures: %d  last ok: %t\n", snap.Queries, snap.QueryFailures, snap.LastQueryOK)
	fmt.Printf("Latency avg=%s p50=%s p95=%s p99=%s\n", snap.AvgLatency, snap.P50Latency, snap.P95Latency, snap.P99Latency)

	if snap.LastError != "" {
		fmt.Printf("Last error: %s\n", snap.LastError)
	}

	if snap.State != "RUNNING" {
		fmt.Printf("ERROR: monitor is %s\n", snap.State)
		os.Exit(3)
	}

	if !snap.LastQueryOK {
		fmt.Println("ERROR: last liveness query failed")
		os.Exit(3)
	}

	if *maxFailures >= 0 && snap.QueryFailures > *maxFailures {
		fmt.Printf("ERROR: %d failed queries exceed the limit of %d\n", snap.QueryFailures, *maxFailures)
		os.Exit(3)
	}

	fmt.Println("Verification passed: monitor running and cluster answering.")
}
