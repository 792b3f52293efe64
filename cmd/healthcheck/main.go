// Command healthcheck probes the snipecord status API from inside the
// container. It exits 0 when /api/v1/health answers {"status":"ok"}.
//
// The status server only runs when listen_addr is configured, so a
// container that uses this healthcheck must set listen_addr (or
// SNIPECORD_LISTEN_ADDR). The probe reads SNIPECORD_LISTEN_ADDR and falls
// back to 127.0.0.1:8080 when it is unset.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const defaultAddr = "127.0.0.1:8080"

func main() {
	os.Exit(check(os.Getenv("SNIPECORD_LISTEN_ADDR"), os.Stderr))
}

// check probes the health endpoint and returns the process exit code.
// Failure reasons are written to stderr so they show up in the container
// runtime's health log.
func check(listenAddr string, stderr io.Writer) int {
	addr := normalizeAddr(listenAddr)
	if listenAddr == "" {
		fmt.Fprintf(stderr, "healthcheck: SNIPECORD_LISTEN_ADDR not set, probing %s\n", addr)
	}

	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/api/v1/health", addr), nil)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: build request: %v\n", err)
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: status server unreachable at %s (is listen_addr set?): %v\n", addr, err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(stderr, "healthcheck: unexpected status %d\n", resp.StatusCode)
		return 1
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil || body.Status != "ok" {
		fmt.Fprintf(stderr, "healthcheck: unhealthy response (status %q)\n", body.Status)
		return 1
	}

	return 0
}

// normalizeAddr ensures the healthcheck connects to loopback rather than the
// bind-all address. The healthcheck runs inside the same container as the
// watcher, so loopback is always reachable.
func normalizeAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
