package tcping

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/charSLee013/edgescan/internal/ipaddr"
)

func TestProbeAgainstLocalListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
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

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	ip, ok := ipaddr.Parse(host)
	if !ok {
		t.Fatalf("failed to parse %s", host)
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	rec := Probe(context.Background(), ip, Options{Port: port, Attempts: 3, Timeout: time.Second})
	if rec.Successes != 3 {
		t.Fatalf("Successes = %d, want 3", rec.Successes)
	}
	if rec.MeanRTT <= 0 {
		t.Fatalf("MeanRTT = %v, want > 0", rec.MeanRTT)
	}
}

func TestProbeAgainstClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close() // nothing listens now; connect should be refused.

	ip, _ := ipaddr.Parse("127.0.0.1")
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	rec := Probe(context.Background(), ip, Options{Port: port, Attempts: 2, Timeout: 500 * time.Millisecond})
	if rec.Successes != 0 {
		t.Fatalf("Successes = %d, want 0", rec.Successes)
	}
	if rec.MeanRTT != 0 {
		t.Fatalf("MeanRTT = %v, want 0 (undefined when successes=0)", rec.MeanRTT)
	}
}
