// Package config implements the layered configuration system (spec.md §6,
// SPEC_FULL.md §4.11): flags bound through github.com/spf13/cobra, with
// github.com/spf13/viper resolving flag > env > file > default precedence.
// Grounded on the teacher's cobra/viper wiring pattern (github.com/nabbar/
// golib/cobra and .../viper), trimmed from the teacher's dynamic
// component-registry style (many named sub-services configuring themselves)
// down to one static struct, since this tool has exactly one pipeline.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/charSLee013/edgescan/internal/duration"
	"github.com/charSLee013/edgescan/internal/errkit"
)

// Mode selects which of the exclusive probing stages the Orchestrator runs.
type Mode int

const (
	ModeTCP Mode = iota
	ModeHTTPRoute
	ModeIOUring
)

// Config is the fully-resolved, validated run configuration (spec.md §6).
type Config struct {
	AddressSources []string // positional candidate files/inline strings

	Concurrency int           // "number"
	Attempts    int           // "time"
	Port        int           // "port"
	Timeout     time.Duration // "timeout"

	Display int    // top-N rows to print
	Output  string // CSV output path

	Mode Mode // httping / cfhttping / enable_iouring selector

	EnableDownload   bool
	DownloadNumber   int // min_available
	DownloadPort     int
	DownloadTimeout  time.Duration
	DownloadURL      string
	DownloadTries    int

	RandomNumber int // subsample size, 0 = disabled

	AvgDelayLower time.Duration // "al"
	AvgDelayUpper time.Duration // "au"

	IOUringEntries int // advanced override for the ring allocator

	TLSMinVersion uint16
	TLSMaxVersion uint16

	LogLevel   string
	ConfigFile string
}

// BindFlags registers every flag named in spec.md §6 plus the ambient
// extensions from SPEC_FULL.md §6 onto cmd, with sensible defaults.
func BindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("number", 200, "concurrency: max in-flight probes")
	f.Int("time", 4, "attempts (tries) per IP")
	f.Int("port", 443, "TCP/HTTP probe port")
	f.String("timeout", "2s", "per-probe timeout")
	f.Int("display", 10, "number of rows to print")
	f.String("output", "result.csv", "CSV output path")

	f.Bool("httping", false, "use the HTTP route probe instead of TCP latency")
	f.Bool("cfhttping", false, "alias of --httping, kept for CLI compatibility")
	f.Bool("enable_iouring", false, "use the io_uring scanner (Linux only)")

	f.Bool("enable_download", false, "run the download speed meter over valid IPs")
	f.Int("download_number", 5, "min_available: stop once this many downloads succeed")
	f.Int("download_port", 443, "download request port")
	f.String("download_timeout", "10s", "per-attempt download read timeout")
	f.String("download_url", "https://speed.cloudflare.com/__down?bytes=104857600", "download URL")
	f.Int("download_tries", 2, "download attempts per IP before giving up")

	f.Int("random_number", 0, "uniform subsample size, 0 disables subsampling")
	f.Int("al", 0, "lower mean-latency filter bound, ms")
	f.Int("au", 9999, "upper mean-latency filter bound, ms")

	f.Int("iouring_entries", 0, "advanced: override the io_uring ring allocator size")
	f.String("tls-min", "1.2", "minimum TLS version for the download meter")
	f.String("tls-max", "1.3", "maximum TLS version for the download meter")

	f.String("log-level", "info", "log level: debug|info|warn|error")
	f.String("config", "", "optional config file (yaml/toml/json)")
}

// Load resolves the layered configuration from cmd's flags, environment, and
// an optional config file, validating fields that are fatal at startup per
// spec.md §7 ("Configuration error"). args are the positional candidate
// sources (files or inline strings).
func Load(cmd *cobra.Command, args []string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDGESCAN")
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errkit.New(errkit.CodeConfig, "bind flags", err)
	}

	if cf, _ := cmd.Flags().GetString("config"); cf != "" {
		v.SetConfigFile(cf)
		if err := v.ReadInConfig(); err != nil {
			return nil, errkit.New(errkit.CodeConfig, "read config file", err)
		}
	}

	timeout, err := duration.Parse(v.GetString("timeout"))
	if err != nil {
		return nil, errkit.New(errkit.CodeConfig, "invalid --timeout", err)
	}
	dlTimeout, err := duration.Parse(v.GetString("download_timeout"))
	if err != nil {
		return nil, errkit.New(errkit.CodeConfig, "invalid --download_timeout", err)
	}

	mode := ModeTCP
	if v.GetBool("enable_iouring") {
		mode = ModeIOUring
	} else if v.GetBool("httping") || v.GetBool("cfhttping") {
		mode = ModeHTTPRoute
	}

	cfg := &Config{
		AddressSources:  args,
		Concurrency:     v.GetInt("number"),
		Attempts:        v.GetInt("time"),
		Port:            v.GetInt("port"),
		Timeout:         timeout.Time(),
		Display:         v.GetInt("display"),
		Output:          v.GetString("output"),
		Mode:            mode,
		EnableDownload:  v.GetBool("enable_download"),
		DownloadNumber:  v.GetInt("download_number"),
		DownloadPort:    v.GetInt("download_port"),
		DownloadTimeout: dlTimeout.Time(),
		DownloadURL:     v.GetString("download_url"),
		DownloadTries:   v.GetInt("download_tries"),
		RandomNumber:    v.GetInt("random_number"),
		AvgDelayLower:   time.Duration(v.GetInt("al")) * time.Millisecond,
		AvgDelayUpper:   time.Duration(v.GetInt("au")) * time.Millisecond,
		IOUringEntries:  v.GetInt("iouring_entries"),
		LogLevel:        v.GetString("log-level"),
		ConfigFile:      v.GetString("config"),
	}

	if cfg.TLSMinVersion, err = parseTLSVersion(v.GetString("tls-min")); err != nil {
		return nil, errkit.New(errkit.CodeConfig, "invalid --tls-min", err)
	}
	if cfg.TLSMaxVersion, err = parseTLSVersion(v.GetString("tls-max")); err != nil {
		return nil, errkit.New(errkit.CodeConfig, "invalid --tls-max", err)
	}

	if cfg.EnableDownload {
		if _, err := parseHTTPURL(cfg.DownloadURL); err != nil {
			return nil, errkit.New(errkit.CodeConfig, "invalid --download_url", err)
		}
	}
	if cfg.Concurrency < 1 {
		return nil, errkit.New(errkit.CodeConfig, "--number must be >= 1", nil)
	}
	if cfg.Attempts < 1 {
		return nil, errkit.New(errkit.CodeConfig, "--time must be >= 1", nil)
	}

	return cfg, nil
}

func parseTLSVersion(s string) (uint16, error) {
	switch strings.TrimSpace(s) {
	case "1.2":
		return tlsVersion12, nil
	case "1.3":
		return tlsVersion13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", s)
	}
}

// tlsVersionNN mirror crypto/tls.VersionTLS1x without importing crypto/tls
// into the config package (kept dependency-light; internal/download owns the
// actual TLS wiring).
const (
	tlsVersion12 = 0x0303
	tlsVersion13 = 0x0304
)

// parseHTTPURL validates the download URL has a domain host (spec.md §8 S4:
// a bare IP literal or non-http(s) scheme is a configuration error).
func parseHTTPURL(raw string) (host string, err error) {
	i := strings.Index(raw, "://")
	if i < 0 {
		return "", fmt.Errorf("missing scheme in %q", raw)
	}
	scheme, rest := raw[:i], raw[i+3:]
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", scheme)
	}
	if j := strings.IndexAny(rest, "/?"); j >= 0 {
		rest = rest[:j]
	}
	h := rest
	if hp, _, err := net.SplitHostPort(rest); err == nil {
		h = hp
	}
	if h == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	if net.ParseIP(h) != nil {
		return "", fmt.Errorf("host %q must be a domain name, not a bare IP literal", h)
	}
	if !strings.Contains(h, ".") {
		return "", fmt.Errorf("host %q has no domain", h)
	}
	return h, nil
}

// DomainFromURL extracts the domain per spec.md §8 S4.
func DomainFromURL(raw string) (string, error) {
	return parseHTTPURL(raw)
}
