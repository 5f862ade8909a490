package spot

import (
	"strconv"
	"strings"
)

// FailureCategory tags why a line failed to parse into a Spot.
type FailureCategory string

const (
	FailureInvalidFormat    FailureCategory = "invalid_format"
	FailureInvalidFrequency FailureCategory = "invalid_frequency"
	FailureInvalidTime      FailureCategory = "invalid_time"
	FailureMissingField     FailureCategory = "missing_field"
	FailureIncomplete       FailureCategory = "incomplete"
)

// ParseError is returned by Parse when a line does not match the spot
// grammar, tagged with the category spec.md §4.2 requires.
type ParseError struct {
	Category FailureCategory
	Detail   string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return "spot: parse failed: " + string(e.Category)
	}
	return "spot: parse failed (" + string(e.Category) + "): " + e.Detail
}

func parseErr(cat FailureCategory, detail string) error {
	return &ParseError{Category: cat, Detail: detail}
}

// LooksLikeSpot is the cheap pre-filter from spec.md §4.2: after trimming,
// the line must be longer than 20 characters and begin, case-insensitively,
// with "DX de ".
func LooksLikeSpot(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) <= 20 {
		return false
	}
	return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "DX de ")
}

// Parse converts one telnet line into a Spot, or returns a *ParseError
// describing why it could not. Only the spotter and dx_call substrings of
// the input are retained; everything else is re-derived as typed values.
func Parse(line string) (Spot, error) {
	s := strings.TrimSpace(line)

	s, ok := consumeKeyword(s, "DX")
	if !ok {
		return Spot{}, parseErr(FailureInvalidFormat, "missing 'DX'")
	}
	s = skipSpaces(s)
	s, ok = consumeKeyword(s, "de")
	if !ok {
		return Spot{}, parseErr(FailureInvalidFormat, "missing 'de'")
	}
	s = skipSpaces(s)

	spotter, rest, ok := consumeSpotterCall(s)
	if !ok {
		return Spot{}, parseErr(FailureMissingField, "spotter callsign")
	}
	s = skipSpaces(rest)

	freq, rest, ok := consumeFrequency(s)
	if !ok {
		return Spot{}, parseErr(FailureInvalidFrequency, s)
	}
	if freq <= 0 {
		return Spot{}, parseErr(FailureInvalidFrequency, s)
	}
	s = rest
	if !hasLeadingSpace(s) {
		return Spot{}, parseErr(FailureIncomplete, "frequency not followed by whitespace")
	}
	s = skipSpaces(s)

	dxCall, rest, ok := consumeCallsign(s)
	if !ok {
		return Spot{}, parseErr(FailureMissingField, "dx callsign")
	}
	s = skipSpaces(rest)

	mode, rest, ok := consumeMode(s)
	if !ok {
		return Spot{}, parseErr(FailureInvalidFormat, "unrecognized mode")
	}
	s = skipSpaces(rest)

	snr, rest, ok := consumeSNR(s)
	if !ok {
		return Spot{}, parseErr(FailureInvalidFormat, "snr/dB")
	}
	s = skipSpaces(rest)

	wpm, rest, ok := consumeWPM(s)
	if !ok {
		return Spot{}, parseErr(FailureInvalidFormat, "wpm")
	}
	s = skipSpaces(rest)

	spotType, rest, ok := consumeSpotType(s)
	if !ok {
		return Spot{}, parseErr(FailureInvalidFormat, "spot type")
	}
	s = skipSpaces(rest)

	timeVal, rest, ok := consumeTime(s)
	if !ok {
		return Spot{}, parseErr(FailureInvalidTime, s)
	}
	s = strings.TrimSpace(rest)
	if s != "" {
		return Spot{}, parseErr(FailureInvalidFormat, "trailing input: "+s)
	}

	return New(spotter, freq, dxCall, mode, snr, wpm, spotType, timeVal)
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

func hasLeadingSpace(s string) bool {
	return len(s) > 0 && isSpaceByte(s[0])
}

func skipSpaces(s string) string {
	i := 0
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return s[i:]
}

// consumeKeyword matches a case-insensitive literal token at the start of
// s, requiring it not be glued to further callsign-like characters.
func consumeKeyword(s, kw string) (string, bool) {
	if len(s) < len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return s, false
	}
	if len(s) > len(kw) && isCallsignChar(s[len(kw)]) {
		return s, false
	}
	return s[len(kw):], true
}

func isCallsignChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') ||
		b == '/' || b == '#' || b == '-'
}

// consumeSpotterCall parses "CALLSIGN:" optionally followed by spaces.
func consumeSpotterCall(s string) (call, rest string, ok bool) {
	i := 0
	for i < len(s) && isCallsignChar(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ':' {
		return "", s, false
	}
	call = s[:i]
	rest = skipSpaces(s[i+1:])
	return call, rest, true
}

func consumeCallsign(s string) (call, rest string, ok bool) {
	i := 0
	for i < len(s) && isCallsignChar(s[i]) {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}

func consumeFrequency(s string) (float64, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > i+1 {
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, s, false
	}
	return v, s[i:], true
}

var modeKeywords = []struct {
	kw   string
	mode Mode
}{
	{"RTTY", ModeRTTY},
	{"PSK31", ModePSK31},
	{"FT8", ModeFT8},
	{"FT4", ModeFT4},
	{"CW", ModeCW},
}

func consumeMode(s string) (Mode, string, bool) {
	for _, m := range modeKeywords {
		if rest, ok := consumeKeyword(s, m.kw); ok {
			if len(rest) > 0 && isCallsignChar(rest[0]) {
				continue // e.g. "CWX" is not the mode "CW"
			}
			return m.mode, rest, true
		}
	}
	return ModeUnknown, s, false
}

func consumeSNR(s string) (int, string, bool) {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, s, false
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	rest := s[i:]
	rest = skipSpaces(rest)
	rest, ok := consumeKeyword(rest, "dB")
	if !ok {
		return 0, s, false
	}
	return v, rest, true
}

func consumeWPM(s string) (uint, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	v, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return 0, s, false
	}
	rest := skipSpaces(s[i:])
	rest, ok := consumeKeyword(rest, "WPM")
	if !ok {
		return 0, s, false
	}
	return uint(v), rest, true
}

// consumeSpotType tries NCDXF B, BEACON and CQ (longest-match order per
// spec.md §4.2) before falling back to the bounded OTHER catch-all, which
// consumes letters/digits/spaces non-greedily up to the time token.
func consumeSpotType(s string) (SpotType, string, bool) {
	if rest, ok := consumeKeyword(s, "NCDXF"); ok {
		rest2 := skipSpaces(rest)
		if rest2 == rest {
			// NCDXF must be followed by whitespace before "B".
		} else if final, ok := consumeKeyword(rest2, "B"); ok {
			if len(final) == 0 || isSpaceByte(final[0]) {
				return SpotTypeNCDXFBeacon, final, true
			}
		}
	}
	if rest, ok := consumeKeyword(s, "BEACON"); ok {
		if len(rest) == 0 || isSpaceByte(rest[0]) {
			return SpotTypeBeacon, rest, true
		}
	}
	if rest, ok := consumeKeyword(s, "CQ"); ok {
		if len(rest) == 0 || isSpaceByte(rest[0]) {
			return SpotTypeCQ, rest, true
		}
	}

	// OTHER: consume alphanumerics/spaces up to (but not including) the
	// trailing time token. We scan the tokens backward from the end for
	// the last whitespace-delimited token that looks like a time and stop
	// right before it.
	idx := findTimeTokenStart(s)
	if idx <= 0 {
		return SpotTypeOther, "", false
	}
	other := strings.TrimSpace(s[:idx])
	if other == "" {
		return SpotTypeOther, "", false
	}
	for _, r := range other {
		if !(r == ' ' || r == '\t' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return SpotTypeOther, "", false
		}
	}
	return SpotTypeOther, s[idx:], true
}

func firstToken(s string) string {
	i := 0
	for i < len(s) && !isSpaceByte(s[i]) {
		i++
	}
	return s[:i]
}

// findTimeTokenStart locates the start offset of a trailing "HHMMZ" token,
// scanning tokens from the end of the (remaining) line.
func findTimeTokenStart(s string) int {
	trimmed := strings.TrimRight(s, " \t")
	fields := splitFieldsWithOffsets(trimmed)
	for i := len(fields) - 1; i >= 0; i-- {
		if isTimeToken(fields[i].text) {
			return fields[i].offset
		}
	}
	return -1
}

type offsetField struct {
	text   string
	offset int
}

func splitFieldsWithOffsets(s string) []offsetField {
	var fields []offsetField
	i := 0
	for i < len(s) {
		for i < len(s) && isSpaceByte(s[i]) {
			i++
		}
		start := i
		for i < len(s) && !isSpaceByte(s[i]) {
			i++
		}
		if i > start {
			fields = append(fields, offsetField{text: s[start:i], offset: start})
		}
	}
	return fields
}

func isTimeToken(tok string) bool {
	if len(tok) != 5 {
		return false
	}
	if tok[4] != 'Z' && tok[4] != 'z' {
		return false
	}
	for i := 0; i < 4; i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}

func consumeTime(s string) (Time, string, bool) {
	tok := firstToken(s)
	if !isTimeToken(tok) {
		return Time{}, s, false
	}
	hh, _ := strconv.Atoi(tok[0:2])
	mm, _ := strconv.Atoi(tok[2:4])
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return Time{}, s, false
	}
	return Time{Hour: hh, Minute: mm}, s[len(tok):], true
}
