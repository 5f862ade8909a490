package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var sizeStringPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// isAllowedSizeString reports whether s matches spec.md §6's size grammar:
// a decimal number optionally followed by B, K/KB, M/MB, or G/GB,
// case-insensitive. TB and any other unit are rejected.
func isAllowedSizeString(s string) bool {
	m := sizeStringPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	switch strings.ToUpper(m[2]) {
	case "", "B", "K", "KB", "M", "MB", "G", "GB":
		return true
	default:
		return false
	}
}

// sizeMultiplier maps the unit suffixes spec.md §6 allows to their binary
// byte multiplier, reusing go-humanize's named constants (KiByte = 1024,
// etc.) rather than hand-rolled magic numbers.
func sizeMultiplier(unit string) (uint64, bool) {
	switch strings.ToUpper(unit) {
	case "", "B":
		return humanize.Byte, true
	case "K", "KB":
		return humanize.KiByte, true
	case "M", "MB":
		return humanize.MiByte, true
	case "G", "GB":
		return humanize.GiByte, true
	default:
		return 0, false
	}
}

// parseSizeManual implements spec.md §6's size grammar directly: it does
// not delegate to humanize.ParseBytes because that function treats bare
// "KB"/"MB"/"GB" as decimal (1000-based) multiples, while spec.md requires
// binary multiples (KB=1024) for every unit including the two-letter form.
func parseSizeManual(s string) (uint64, error) {
	m := sizeStringPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("malformed size string %q", s)
	}
	mult, ok := sizeMultiplier(m[2])
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", m[2])
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed size number %q: %w", m[1], err)
	}
	return uint64(value * float64(mult)), nil
}
