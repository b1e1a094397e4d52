// Package httping implements the HTTP reachability / routing-consistency
// checker (spec.md §4.4): sends a fixed HTTP/1.1 request for
// /cdn-cgi/trace and classifies routing consistency from a CF-RAY-style
// marker header across repeated attempts.
package httping

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charSLee013/edgescan/internal/fatal"
	"github.com/charSLee013/edgescan/internal/ipaddr"
	"github.com/charSLee013/edgescan/internal/probe"
)

// Status classifies the routing consistency observed across attempts.
type Status int

const (
	// NORMAL: all attempts that returned a code agree.
	NORMAL Status = iota
	// DIFFLOCATION: two attempts returned different non-empty codes.
	DIFFLOCATION
	// NOLOCATION: no attempt returned a code at all.
	NOLOCATION
)

func (s Status) String() string {
	switch s {
	case NORMAL:
		return "NORMAL"
	case DIFFLOCATION:
		return "DIFF_LOCATION"
	default:
		return "NO_LOCATION"
	}
}

// Record is the route outcome for one IP (spec.md §3).
type Record struct {
	IP           ipaddr.Address
	Status       Status
	LocationCode string
}

// Options configures a Probe run.
type Options struct {
	Port         int
	TriesPerIP   int
	ConnTimeout  time.Duration
	ReadTimeout  time.Duration
	MarkerHeader string // default "CF-RAY" when empty
	Fatal        *fatal.Signal // optional; see internal/fatal
}

const (
	readCap    = 1024
	defaultHdr = "CF-RAY"
)

// Probe implements the algorithm in spec.md §4.4: try up to TriesPerIP times
// until a non-empty location code is obtained (k attempts); if still empty,
// NO_LOCATION. Otherwise compare each subsequent code to the first: on
// mismatch, DIFF_LOCATION immediately; if all remaining attempts agree,
// NORMAL.
func Probe(ctx context.Context, ip ipaddr.Address, opt Options) Record {
	header := opt.MarkerHeader
	if header == "" {
		header = defaultHdr
	}

	codes := make([]string, 0, opt.TriesPerIP)
	for attempt := 0; attempt < opt.TriesPerIP; attempt++ {
		codes = append(codes, oneAttempt(ctx, ip, opt, header))
		// early exit on mismatch mirrors Classify's own early return; no need
		// to keep probing once DIFF_LOCATION is certain.
		if status, code := Classify(codes); status == DIFFLOCATION {
			return Record{IP: ip, Status: status, LocationCode: code}
		}
	}

	status, code := Classify(codes)
	return Record{IP: ip, Status: status, LocationCode: code}
}

// Classify implements the pure classification algorithm of spec.md §4.4 over
// an ordered sequence of per-attempt location codes (empty string = no code
// obtained that attempt), independent of how the codes were gathered.
func Classify(codes []string) (Status, string) {
	var first string
	for _, code := range codes {
		if code == "" {
			continue
		}
		if first == "" {
			first = code
			continue
		}
		if code != first {
			return DIFFLOCATION, first
		}
	}
	if first == "" {
		return NOLOCATION, ""
	}
	return NORMAL, first
}

func oneAttempt(ctx context.Context, ip ipaddr.Address, opt Options, header string) string {
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(opt.Port))
	conn, res := probe.Connect(ctx, addr, opt.ConnTimeout)
	if res.Outcome != probe.Connected {
		if res.Outcome == probe.IOError {
			opt.Fatal.Report(res.Err)
		}
		return ""
	}
	defer probe.Shutdown(conn)

	req := fmt.Sprintf("GET /cdn-cgi/trace HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", hostHeaderValue(ip))
	if w := probe.WriteAll(conn, []byte(req), opt.ConnTimeout); w.Outcome != probe.Connected {
		if w.Outcome == probe.IOError {
			opt.Fatal.Report(w.Err)
		}
		return ""
	}

	buf := make([]byte, readCap)
	r := probe.ReadInto(conn, buf, opt.ReadTimeout)
	if r.N == 0 {
		return ""
	}
	return extractLocationCode(string(buf[:r.N]), header)
}

// hostHeaderValue brackets IPv6 literals per RFC 7230 §5.4 ("Host: [::1]");
// IPv4 literals are used bare.
func hostHeaderValue(ip ipaddr.Address) string {
	if ip.Is4() {
		return ip.String()
	}
	return "[" + ip.String() + "]"
}

// extractLocationCode scans response lines for the marker header
// (case-insensitive) and returns the last 3 characters of its value.
func extractLocationCode(response, header string) string {
	lines := strings.Split(response, "\r\n")
	prefix := strings.ToLower(header) + ":"
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			val := strings.TrimSpace(line[len(prefix):])
			if len(val) >= 3 {
				return val[len(val)-3:]
			}
			return val
		}
	}
	return ""
}
