package orchestrator

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/charSLee013/edgescan/internal/config"
	"github.com/charSLee013/edgescan/internal/logging"
)

func TestRunTCPLatencyEndToEnd(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %q: %v", portStr, err)
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "result.csv")

	cfg := &config.Config{
		AddressSources: []string{"127.0.0.1"},
		Concurrency:    4,
		Attempts:       2,
		Port:           port,
		Timeout:        2 * time.Second,
		Display:        10,
		Output:         out,
		Mode:           config.ModeTCP,
		AvgDelayUpper:  time.Second,
	}

	log := logging.New("error")
	rows, err := Run(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Successes != cfg.Attempts {
		t.Fatalf("Successes = %d, want %d", rows[0].Successes, cfg.Attempts)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected CSV output file: %v", err)
	}
}

