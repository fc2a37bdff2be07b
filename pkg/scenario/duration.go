package scenario

import (
	"fmt"
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// ParseDuration parses a scenario duration per spec.md §6:
// `^(\d+h)?(\d+m)?(\d+s)?$` or a bare integer (seconds). Returns seconds.
func ParseDuration(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(secs), nil
	}
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	var total float64
	if m[1] != "" {
		h, _ := strconv.ParseInt(m[1], 10, 64)
		total += float64(h) * 3600
	}
	if m[2] != "" {
		mm, _ := strconv.ParseInt(m[2], 10, 64)
		total += float64(mm) * 60
	}
	if m[3] != "" {
		s, _ := strconv.ParseInt(m[3], 10, 64)
		total += float64(s)
	}
	return total, nil
}

// FormatDuration renders seconds back into the compact h/m/s form used by
// the scenario format, omitting zero components (but always printing at
// least "0s").
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	out := ""
	if h > 0 {
		out += fmt.Sprintf("%dh", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dm", m)
	}
	if s > 0 || out == "" {
		out += fmt.Sprintf("%ds", s)
	}
	return out
}
