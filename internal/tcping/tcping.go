// Package tcping implements the TCP-connect latency probe (spec.md §4.3):
// attempts sequential TCP connects per IP, records elapsed for every success,
// and returns a Record with success count and mean RTT.
package tcping

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/charSLee013/edgescan/internal/fatal"
	"github.com/charSLee013/edgescan/internal/ipaddr"
	"github.com/charSLee013/edgescan/internal/probe"
)

// Record is the latency outcome for one IP (spec.md §3).
type Record struct {
	IP         ipaddr.Address
	Attempts   int
	Successes int
	MeanRTT    time.Duration
}

// LossRate returns the fraction of attempts that did not connect.
func (r Record) LossRate() float64 {
	if r.Attempts == 0 {
		return 1
	}
	return 1 - float64(r.Successes)/float64(r.Attempts)
}

// Options configures a Probe run.
type Options struct {
	Port     int
	Attempts int
	Timeout  time.Duration
	Fatal    *fatal.Signal // optional; see internal/fatal
}

// Probe runs Options.Attempts sequential TCP connects against ip:Port, each
// bounded by Options.Timeout, and returns the aggregate Record.
func Probe(ctx context.Context, ip ipaddr.Address, opt Options) Record {
	rec := Record{IP: ip, Attempts: opt.Attempts}
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(opt.Port))

	var total time.Duration
	for i := 0; i < opt.Attempts; i++ {
		conn, res := probe.Connect(ctx, addr, opt.Timeout)
		if res.Outcome == probe.Connected {
			rec.Successes++
			total += res.Elapsed
			probe.Shutdown(conn)
		} else if res.Outcome == probe.IOError {
			opt.Fatal.Report(res.Err)
		}
		// transient failures (timeout/refused/io error) are swallowed into
		// the denominator only, per spec.md §7.
	}

	if rec.Successes > 0 {
		rec.MeanRTT = total / time.Duration(rec.Successes)
	}
	return rec
}

// InRange reports whether rec.MeanRTT falls within [lower, upper), the
// filtering policy described in spec.md §4.3. A record with zero successes
// never passes.
func InRange(rec Record, lower, upper time.Duration) bool {
	if rec.Successes == 0 {
		return false
	}
	return rec.MeanRTT >= lower && rec.MeanRTT < upper
}
