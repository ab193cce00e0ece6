// Command ping probes /healthz and exits non-zero when the server or one of
// its stores is down. It is meant for a container HEALTHCHECK.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	healthPath     = "/healthz"
	requestTimeout = 2 * time.Second
)

// Exit codes.
const (
	exitRequestFailed = 2
	exitBadStatus     = 3
	exitBadBody       = 4
	exitUnhealthy     = 5
)

// healthBody is what /healthz answers with, {"status":"ok"} or
// {"status":"down","error":"store unavailable"}.
type healthBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	v := viper.New()
	v.SetDefault("APP_PORT", 8080)
	v.AutomaticEnv()
	port := v.GetInt("APP_PORT")
	if port <= 0 || port > 65535 {
		port = 8080
	}

	url := fmt.Sprintf("http://127.0.0.1:%d%s", port, healthPath)
	code, err := probe(&http.Client{Timeout: requestTimeout}, url)
	if err != nil {
		log.Error("health probe failed", "url", url, "error", err)
		os.Exit(code)
	}
	log.Info("healthy", "port", port)
}

// probe returns an exit code alongside any failure.
func probe(client *http.Client, url string) (int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return exitRequestFailed, err
	}
	defer resp.Body.Close()

	var body healthBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return exitBadBody, fmt.Errorf("decode body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable || body.Status == "down":
		return exitUnhealthy, fmt.Errorf("reported down: %s", body.Error)
	case resp.StatusCode != http.StatusOK:
		return exitBadStatus, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return 0, nil
}
