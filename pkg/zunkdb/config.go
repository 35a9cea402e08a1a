package zunkdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zunkfs/zunkdb-go/internal/peer"
	"github.com/zunkfs/zunkdb-go/pkg/constants"
)

// Config is the immutable result of parsing a back-end spec string, per
// spec §4.5/§6: "zunkdb:<host>:<port>[,timeout=<sec>][,concurrency=<n>]".
// Transport and PeerDirPath are SPEC_FULL additions (§6, §11); omitting
// either keeps the original two-option grammar working unchanged.
type Config struct {
	StartAddr      peer.Address
	Timeout        time.Duration
	MaxConcurrency int
	Transport      string // "tcp" (default) or "quic"
	PeerDirPath    string // empty disables peer directory persistence
}

// ParseSpec parses a back-end config spec string. Unknown options, a
// missing port, or a zero numeric value all fail construction, per §6.
func ParseSpec(spec string) (Config, error) {
	const prefix = "zunkdb:"
	if !strings.HasPrefix(spec, prefix) {
		return Config{}, newError(KindInvalidConfig, fmt.Sprintf("spec %q must start with %q", spec, prefix), nil)
	}
	rest := spec[len(prefix):]

	parts := strings.Split(rest, ",")
	hostPort := parts[0]

	host, portStr, err := splitHostPort(hostPort)
	if err != nil {
		return Config{}, newError(KindInvalidConfig, err.Error(), nil)
	}
	addr, err := peer.ParseAddress(host + ":" + portStr)
	if err != nil {
		return Config{}, newError(KindInvalidConfig, fmt.Sprintf("invalid host/port in spec %q", spec), err)
	}

	cfg := Config{
		StartAddr:      addr,
		Timeout:        constants.DefaultTimeout,
		MaxConcurrency: constants.DefaultConcurrency,
		Transport:      "tcp",
	}

	for _, opt := range parts[1:] {
		if opt == "" {
			return Config{}, newError(KindInvalidConfig, fmt.Sprintf("empty option in spec %q", spec), nil)
		}
		key, value, ok := strings.Cut(opt, "=")
		if !ok {
			return Config{}, newError(KindInvalidConfig, fmt.Sprintf("option %q has no value", opt), nil)
		}
		switch key {
		case "timeout":
			seconds, err := strconv.Atoi(value)
			if err != nil || seconds <= 0 {
				return Config{}, newError(KindInvalidConfig, fmt.Sprintf("timeout=%q must be a positive integer", value), nil)
			}
			cfg.Timeout = time.Duration(seconds) * time.Second
		case "concurrency":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return Config{}, newError(KindInvalidConfig, fmt.Sprintf("concurrency=%q must be a positive integer", value), nil)
			}
			cfg.MaxConcurrency = n
		case "transport":
			if value != "tcp" && value != "quic" {
				return Config{}, newError(KindInvalidConfig, fmt.Sprintf("transport=%q must be tcp or quic", value), nil)
			}
			cfg.Transport = value
		case "peerdir":
			cfg.PeerDirPath = value
		default:
			return Config{}, newError(KindInvalidConfig, fmt.Sprintf("unrecognised option %q", key), nil)
		}
	}

	return cfg, nil
}

func splitHostPort(s string) (host, port string, err error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("missing port in %q", s)
	}
	return s[:idx], s[idx+1:], nil
}
