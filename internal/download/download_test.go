package download

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charSLee013/edgescan/internal/ipaddr"
)

func TestURLHostExtraction(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://example.com/", "example.com", false},
		{"https://example.com:8443/path", "example.com", false},
		{"mailto:x@y", "", true},
		{"not a url", "", true},
	}
	for _, c := range cases {
		got, err := urlHost(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("urlHost(%q) expected error, got none", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("urlHost(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("urlHost(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAttemptDownloadsThroughPinnedIP(t *testing.T) {
	payload := make([]byte, 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	host, portStr, _ := net.SplitHostPort(srv.Listener.Addr().String())
	ip, ok := ipaddr.Parse(host)
	if !ok {
		t.Fatalf("failed to parse listener host %s", host)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		t.Fatalf("parse port: %v", err)
	}

	rec, ok := Attempt(context.Background(), ip, Options{
		URL:         srv.URL,
		RequestPort: port,
		ConnTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	if !ok {
		t.Fatalf("Attempt failed")
	}
	if rec.BytesDownloaded != uint64(len(payload)) {
		t.Fatalf("BytesDownloaded = %d, want %d", rec.BytesDownloaded, len(payload))
	}
}
