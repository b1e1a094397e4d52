// Package download implements the bulk HTTP download speed meter (spec.md
// §4.5).
//
// Grounded directly on the teacher's github.com/nabbar/golib/httpcli/
// dns-mapper package: that package's dmp.DialContext resolves a logical
// "host:port" to a mapped "ip:port" and hands the *mapped* address to the
// stdlib dialer, while http.Transport.DialContext (not the URL) is the only
// thing rewritten — exactly the "override resolution rather than rewriting
// the URL" contract spec.md §4.5 requires, so the Host header and TLS SNI
// stay intact. This package keeps that shape but narrows it to a single
// fixed mapping per Meter (one candidate IP at a time) instead of a general
// cache, since a speed-test client never needs the dns-mapper's wildcard
// rules or background cache cleaner.
package download

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charSLee013/edgescan/internal/fatal"
	"github.com/charSLee013/edgescan/internal/ipaddr"
)

// Record is the speed outcome for one IP (spec.md §3).
type Record struct {
	IP              ipaddr.Address
	BytesDownloaded uint64
	Elapsed         time.Duration
}

// Options configures a Meter.
type Options struct {
	URL           string
	RequestPort   int
	ConnTimeout   time.Duration
	ReadTimeout   time.Duration
	Tries         int
	UserAgent     string
	TLSMinVersion uint16
	TLSMaxVersion uint16
	Fatal         *fatal.Signal // optional; see internal/fatal
}

const defaultUserAgent = "Mozilla/5.0 (compatible; edgescan/1.0; +https://example.invalid/bot)"

// pinnedDialer resolves exactly one logical host to one candidate IP:port,
// regardless of what DialContext is asked to dial — mirroring dmp.DialContext
// but without the general-purpose mapping table, since each Meter targets one
// candidate at a time.
type pinnedDialer struct {
	target string // "ip:port" the dial is forced to use
	base   *net.Dialer
}

func (p *pinnedDialer) DialContext(ctx context.Context, network, _ string) (net.Conn, error) {
	return p.base.DialContext(ctx, network, p.target)
}

// client builds an *http.Client whose transport dials ip:RequestPort no
// matter what host the URL names, keeping the Host header and TLS SNI
// (ServerName) pointed at the URL's real host — the crux of the "DNS
// pinning" contract.
func client(ip ipaddr.Address, opt Options) (*http.Client, error) {
	host, err := urlHost(opt.URL)
	if err != nil {
		return nil, err
	}

	dialer := &pinnedDialer{
		target: net.JoinHostPort(ip.String(), strconv.Itoa(opt.RequestPort)),
		base:   &net.Dialer{Timeout: opt.ConnTimeout, DualStack: true},
	}

	minV, maxV := opt.TLSMinVersion, opt.TLSMaxVersion
	if minV == 0 {
		minV = tls.VersionTLS12
	}
	if maxV == 0 {
		maxV = tls.VersionTLS13
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			ServerName: host,
			MinVersion: minV,
			MaxVersion: maxV,
		},
		ForceAttemptHTTP2:   true,
		DisableKeepAlives:   true,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: opt.ConnTimeout,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

func urlHost(rawURL string) (string, error) {
	// net/url.Parse handles this, but for the narrow "http(s)://host[:port]"
	// shape we only need host without port (SNI wants just the hostname).
	var scheme, rest string
	if i := strings.Index(rawURL, "://"); i >= 0 {
		scheme, rest = rawURL[:i], rawURL[i+3:]
	} else {
		return "", fmt.Errorf("download: invalid URL %q", rawURL)
	}
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("download: unsupported scheme %q", scheme)
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	host := rest
	if h, _, err := net.SplitHostPort(rest); err == nil {
		host = h
	}
	if host == "" {
		return "", fmt.Errorf("download: missing host in %q", rawURL)
	}
	return host, nil
}

// Attempt runs a single GET through ip and measures bytes/elapsed. The clock
// starts immediately before Do and stops at EOF or at a read error whose
// message contains "timed out" — spec.md §4.5 treats that as the read
// timeout doing its job as the stopping rule for large downloads, not a
// failure. Any other read error aborts the attempt (ok=false).
func Attempt(ctx context.Context, ip ipaddr.Address, opt Options) (Record, bool) {
	cli, err := client(ip, opt)
	if err != nil {
		return Record{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opt.URL, nil)
	if err != nil {
		return Record{}, false
	}
	ua := opt.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := cli.Do(req)
	if err != nil {
		opt.Fatal.Report(err)
		return Record{}, false
	}
	defer resp.Body.Close()

	var total uint64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := readWithDeadline(ctx, resp.Body, buf, opt.ReadTimeout, start)
		total += uint64(n)
		if rerr == nil {
			continue
		}
		if rerr == io.EOF || strings.Contains(rerr.Error(), "timed out") {
			break
		}
		return Record{}, false
	}

	return Record{IP: ip, BytesDownloaded: total, Elapsed: time.Since(start)}, true
}

// readWithDeadline bounds a single Read call by ReadTimeout measured from the
// start of the whole attempt (so a large file can't stall forever one chunk
// at a time while still allowing the body to stream for its full budget).
func readWithDeadline(ctx context.Context, r io.Reader, buf []byte, timeout time.Duration, start time.Time) (int, error) {
	type res struct {
		n   int
		err error
	}
	done := make(chan res, 1)
	go func() {
		n, err := r.Read(buf)
		done <- res{n, err}
	}()

	remaining := timeout - time.Since(start)
	if remaining < 0 {
		remaining = 0
	}
	select {
	case r := <-done:
		return r.n, r.err
	case <-time.After(remaining):
		return 0, fmt.Errorf("download: read timed out")
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Meter runs Attempt up to opt.Tries times for one IP, keeping the first
// success (spec.md §4.5 retry policy).
func Meter(ctx context.Context, ip ipaddr.Address, opt Options) (Record, bool) {
	tries := opt.Tries
	if tries < 1 {
		tries = 1
	}
	for i := 0; i < tries; i++ {
		if rec, ok := Attempt(ctx, ip, opt); ok {
			return rec, true
		}
	}
	return Record{}, false
}
