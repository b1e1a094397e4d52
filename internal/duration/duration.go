// Package duration provides a days-aware duration type for configuration
// flags, grounded on the teacher's duration package
// (github.com/nabbar/golib/duration): Duration wraps time.Duration and adds
// a "5d23h15m13s" parse form, trimmed to drop the big-duration sub-package
// and viper/cbor/yaml encoding hooks this CLI tool has no use for (flags use
// plain strings parsed once at startup).
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration extended with a leading "Nd" (days) component.
type Duration time.Duration

// Time converts back to the standard library type.
func (d Duration) Time() time.Duration { return time.Duration(d) }

// String renders with a leading days component when non-zero.
func (d Duration) String() string {
	std := time.Duration(d)
	days := std / (24 * time.Hour)
	rest := std % (24 * time.Hour)
	if days == 0 {
		return rest.String()
	}
	return fmt.Sprintf("%dd%s", days, rest.String())
}

// Parse parses strings like "4s", "250ms", "1h30m", or "5d23h15m13s".
func Parse(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, 'd'); idx > 0 {
		if _, err := strconv.Atoi(s[:idx]); err == nil {
			days, _ := strconv.Atoi(s[:idx])
			rest := s[idx+1:]
			var std time.Duration
			if rest != "" {
				d, err := time.ParseDuration(rest)
				if err != nil {
					return 0, err
				}
				std = d
			}
			return Duration(time.Duration(days)*24*time.Hour + std), nil
		}
	}
	std, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return Duration(std), nil
}
