// Package orchestrator chains the candidate source and probe stages into one
// run (spec.md §5 "Orchestrator"): pick a mode, run its stage(s) through
// internal/pool, optionally follow up with the download meter, rank the
// results, and emit them as CSV plus a console table.
//
// Grounded on the teacher's cobra command-body style (github.com/nabbar/
// golib/cobra): a RunE-shaped entrypoint that resolves its collaborators up
// front and returns a single error, rather than the teacher's component
// registry (Start/Stop/Dependencies across many named services) — this tool
// runs one pipeline to completion and exits, so the heavier lifecycle
// machinery has nothing to manage.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charSLee013/edgescan/internal/candidate"
	"github.com/charSLee013/edgescan/internal/config"
	"github.com/charSLee013/edgescan/internal/console"
	"github.com/charSLee013/edgescan/internal/download"
	"github.com/charSLee013/edgescan/internal/errkit"
	"github.com/charSLee013/edgescan/internal/fatal"
	"github.com/charSLee013/edgescan/internal/httping"
	"github.com/charSLee013/edgescan/internal/ipaddr"
	"github.com/charSLee013/edgescan/internal/iouring"
	"github.com/charSLee013/edgescan/internal/logging"
	"github.com/charSLee013/edgescan/internal/pool"
	"github.com/charSLee013/edgescan/internal/rank"
	"github.com/charSLee013/edgescan/internal/rlimit"
	"github.com/charSLee013/edgescan/internal/tcping"
)

// Run executes the full pipeline described by cfg and returns the ranked
// rows that were written out (for tests and for the caller to optionally
// re-print).
func Run(ctx context.Context, cfg *config.Config, log logging.Logger) ([]rank.Row, error) {
	src, err := loadCandidates(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("loaded candidates", logging.Fields{"count": src.Len()})

	if cur, _, rerr := rlimit.Raise(cfg.Concurrency * 4); rerr != nil {
		log.Warning("could not raise open-file limit", logging.Fields{"error": rerr.Error()})
	} else {
		log.Debug("open-file limit", logging.Fields{"current": cur})
	}

	rows, err := runPrimaryStage(ctx, cfg, log, src.All())
	if err != nil {
		return nil, err
	}

	if cfg.EnableDownload {
		rows, err = runDownloadStage(ctx, cfg, log, rows)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return rows, fmt.Errorf("orchestrator: create output: %w", err)
		}
		defer f.Close()
		if err := rank.WriteCSV(f, rows); err != nil {
			return rows, fmt.Errorf("orchestrator: write csv: %w", err)
		}
	}

	display := rows
	if cfg.Display > 0 && cfg.Display < len(display) {
		display = display[:cfg.Display]
	}
	console.PrintTable(os.Stdout, display)

	return rows, nil
}

func loadCandidates(cfg *config.Config) (candidate.Source, error) {
	var sb strings.Builder
	for _, src := range cfg.AddressSources {
		if info, err := os.Stat(src); err == nil && !info.IsDir() {
			data, err := os.ReadFile(src)
			if err != nil {
				return nil, fmt.Errorf("orchestrator: read %s: %w", src, err)
			}
			sb.Write(data)
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(src)
		sb.WriteByte('\n')
	}
	return candidate.LoadString(sb.String(), cfg.RandomNumber)
}

// runPrimaryStage dispatches to the TCP latency scanner, the HTTP routing
// checker, or the io_uring batch scanner depending on cfg.Mode.
func runPrimaryStage(ctx context.Context, cfg *config.Config, log logging.Logger, addrs []ipaddr.Address) ([]rank.Row, error) {
	switch cfg.Mode {
	case config.ModeHTTPRoute:
		return runHTTPRoute(ctx, cfg, log, addrs)
	case config.ModeIOUring:
		if !iouring.Available() {
			return nil, errkit.New(errkit.CodeCapability, "io_uring is not available on this kernel", nil)
		}
		return runIOUring(ctx, cfg, log, addrs)
	default:
		return runTCPLatency(ctx, cfg, log, addrs)
	}
}

func runTCPLatency(ctx context.Context, cfg *config.Config, log logging.Logger, addrs []ipaddr.Address) ([]rank.Row, error) {
	sig := fatal.New()
	opt := tcping.Options{Port: cfg.Port, Attempts: cfg.Attempts, Timeout: cfg.Timeout, Fatal: sig}
	bar := console.NewProgress(os.Stderr, "tcping", len(addrs))

	ch := pool.Run(ctx, addrs, cfg.Concurrency, func(c context.Context, ip ipaddr.Address) tcping.Record {
		return tcping.Probe(c, ip, opt)
	}, func(completed, total int) { bar.Inc(1) }, sig)

	recs := make([]tcping.Record, 0, len(addrs))
	for r := range ch {
		rec := r.Out
		if !tcping.InRange(rec, cfg.AvgDelayLower, cfg.AvgDelayUpper) && rec.Successes > 0 {
			continue
		}
		recs = append(recs, rec)
	}
	bar.Wait()
	if err := sig.Err(); err != nil {
		return nil, errkit.New(errkit.CodeResourceExhausted, "tcp latency scan ran out of file descriptors", err)
	}

	rank.SortLatency(recs)
	log.Info("tcp latency scan complete", logging.Fields{"results": len(recs)})

	rows := make([]rank.Row, len(recs))
	for i, r := range recs {
		rows[i] = rank.Row{IP: r.IP, HasLatency: true, Attempts: r.Attempts, Successes: r.Successes, MeanRTT: float64(r.MeanRTT.Microseconds()) / 1000}
	}
	return rows, nil
}

func runHTTPRoute(ctx context.Context, cfg *config.Config, log logging.Logger, addrs []ipaddr.Address) ([]rank.Row, error) {
	sig := fatal.New()
	opt := httping.Options{
		Port:         cfg.Port,
		TriesPerIP:   cfg.Attempts,
		ConnTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		MarkerHeader: "Cf-Ray",
		Fatal:        sig,
	}
	bar := console.NewProgress(os.Stderr, "httping", len(addrs))

	ch := pool.Run(ctx, addrs, cfg.Concurrency, func(c context.Context, ip ipaddr.Address) httping.Record {
		return httping.Probe(c, ip, opt)
	}, func(completed, total int) { bar.Inc(1) }, sig)

	recs := make([]httping.Record, 0, len(addrs))
	for r := range ch {
		recs = append(recs, r.Out)
	}
	bar.Wait()
	if err := sig.Err(); err != nil {
		return nil, errkit.New(errkit.CodeResourceExhausted, "http route scan ran out of file descriptors", err)
	}

	rank.SortRoute(recs)
	log.Info("http route scan complete", logging.Fields{"results": len(recs)})

	rows := make([]rank.Row, len(recs))
	for i, r := range recs {
		rows[i] = rank.Row{IP: r.IP, HasRoute: true, Status: r.Status}
	}
	return rows, nil
}

func runIOUring(ctx context.Context, cfg *config.Config, log logging.Logger, addrs []ipaddr.Address) ([]rank.Row, error) {
	sc, err := iouring.NewScanner(iouring.Options{Port: cfg.Port, Timeout: cfg.Timeout, Entries: cfg.IOUringEntries})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: io_uring scanner: %w", err)
	}
	defer sc.Close()

	ips := make([]string, len(addrs))
	for i, a := range addrs {
		ips[i] = a.String()
	}
	recs, err := sc.Scan(ctx, ips)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: io_uring scan: %w", err)
	}
	log.Info("io_uring batch scan complete", logging.Fields{"results": len(recs)})

	rank.SortLatency(recs)
	rows := make([]rank.Row, len(recs))
	for i, r := range recs {
		rows[i] = rank.Row{IP: r.IP, HasLatency: true, Attempts: r.Attempts, Successes: r.Successes}
	}
	return rows, nil
}

// downloadOutcome is pool.Run's single Out value for the download stage;
// pool.Run takes one result type per item, so Meter's (Record, bool) pair is
// folded into this struct instead of being returned as two values.
type downloadOutcome struct {
	Rec download.Record
	OK  bool
}

// runDownloadStage meters download speed for valid rows (successful latency
// or NORMAL route rows), stopping early once cfg.DownloadNumber successes
// accumulate (spec.md §4.5 "min_available" early-exit).
func runDownloadStage(ctx context.Context, cfg *config.Config, log logging.Logger, rows []rank.Row) ([]rank.Row, error) {
	candidates := make([]ipaddr.Address, 0, len(rows))
	for _, r := range rows {
		if r.HasLatency && r.Successes == 0 {
			continue
		}
		if r.HasRoute && r.Status != httping.NORMAL {
			continue
		}
		candidates = append(candidates, r.IP)
	}

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := fatal.New()
	opt := download.Options{
		URL:           cfg.DownloadURL,
		RequestPort:   cfg.DownloadPort,
		ConnTimeout:   cfg.Timeout,
		ReadTimeout:   cfg.DownloadTimeout,
		Tries:         cfg.DownloadTries,
		TLSMinVersion: cfg.TLSMinVersion,
		TLSMaxVersion: cfg.TLSMaxVersion,
		Fatal:         sig,
	}
	bar := console.NewProgress(os.Stderr, "download", len(candidates))

	ch := pool.Run(dctx, candidates, cfg.Concurrency, func(c context.Context, ip ipaddr.Address) downloadOutcome {
		rec, ok := download.Meter(c, ip, opt)
		return downloadOutcome{Rec: rec, OK: ok}
	}, func(completed, total int) { bar.Inc(1) }, sig)

	speed := make(map[string]download.Record, len(candidates))
	successes := 0
	for r := range ch {
		out := r.Out
		if !out.OK {
			continue
		}
		rec := out.Rec
		speed[rec.IP.String()] = rec
		successes++
		if cfg.DownloadNumber > 0 && successes >= cfg.DownloadNumber {
			cancel() // min_available reached: stop issuing further downloads
		}
	}
	bar.Wait()
	if err := sig.Err(); err != nil {
		log.Warning("download meter ran out of file descriptors, returning partial results", logging.Fields{"error": err.Error()})
	}
	log.Info("download meter complete", logging.Fields{"successes": successes})

	merged := make([]rank.Row, 0, len(rows))
	for _, row := range rows {
		if rec, ok := speed[row.IP.String()]; ok {
			row.HasSpeed = true
			row.BytesDownloaded = rec.BytesDownloaded
			row.DownloadSeconds = rec.Elapsed.Seconds()
			merged = append(merged, row)
		}
	}
	return merged, nil
}
