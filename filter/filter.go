// Package filter implements the declarative FilterSpec predicate: an
// AND-of-field match over a spot.Spot, with OR-within-list wildcard
// patterns for callsign fields. Grounded in the original rbn-parser's
// filter.rs, reworked around this repo's Spot type and yaml config.
package filter

import (
	"fmt"
	"strings"

	"rbnfeed/spot"
)

// PatternList is a list of wildcard patterns that unmarshals from either a
// single YAML scalar or a sequence, matching the teacher's config style of
// accepting "dx_call: W6*" as shorthand for a one-element list.
type PatternList []string

// UnmarshalYAML accepts either a bare string or a list of strings.
func (p *PatternList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*p = PatternList{single}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return err
	}
	*p = PatternList(list)
	return nil
}

// MatchesAny reports whether any pattern in the list matches value.
func (p PatternList) MatchesAny(value string) bool {
	for _, pat := range p {
		if MatchWildcard(pat, value) {
			return true
		}
	}
	return false
}

// Validate checks every pattern in the list against the single-wildcard,
// prefix-or-suffix-only rule; the first violation is returned.
func (p PatternList) Validate() error {
	for _, pat := range p {
		if err := ValidatePattern(pat); err != nil {
			return err
		}
	}
	return nil
}

// MatchWildcard reports whether value matches pattern. Matching is ASCII
// case-insensitive; pattern must already be valid (see ValidatePattern).
func MatchWildcard(pattern, value string) bool {
	pu := strings.ToUpper(pattern)
	vu := strings.ToUpper(value)
	switch {
	case strings.HasPrefix(pu, "*"):
		return strings.HasSuffix(vu, pu[1:])
	case strings.HasSuffix(pu, "*"):
		return strings.HasPrefix(vu, pu[:len(pu)-1])
	default:
		return pu == vu
	}
}

// ValidatePattern enforces spec.md §4.3: at most one '*', and if present it
// must be the first or last character.
func ValidatePattern(pattern string) error {
	count := strings.Count(pattern, "*")
	if count > 1 {
		return fmt.Errorf("pattern %q has %d wildcards; only one is allowed", pattern, count)
	}
	if count == 1 && !strings.HasPrefix(pattern, "*") && !strings.HasSuffix(pattern, "*") {
		return fmt.Errorf("pattern %q has '*' in the middle; only a leading or trailing wildcard is allowed", pattern)
	}
	return nil
}

// Spec is the declarative predicate described by spec.md §4.3. Every
// non-nil/non-empty field must match for Matches to return true; a field
// left unset acts as a wildcard.
type Spec struct {
	Name            string        `yaml:"name,omitempty"`
	DXCallPatterns  PatternList   `yaml:"dx_call_patterns,omitempty"`
	SpotterPatterns PatternList   `yaml:"spotter_patterns,omitempty"`
	Bands           []string      `yaml:"bands,omitempty"`
	Modes           []spot.Mode   `yaml:"modes,omitempty"`
	SpotTypes       []spot.SpotType `yaml:"spot_types,omitempty"`
	MinSNR          *int          `yaml:"min_snr,omitempty"`
	MaxSNR          *int          `yaml:"max_snr,omitempty"`
	MinWPM          *uint         `yaml:"min_wpm,omitempty"`
	MaxWPM          *uint         `yaml:"max_wpm,omitempty"`
	MaxKeptEntries  *int          `yaml:"max_kept_entries,omitempty"`
}

// Matches reports whether s satisfies every field this spec specifies.
func (f Spec) Matches(s spot.Spot) bool {
	if len(f.DXCallPatterns) > 0 && !f.DXCallPatterns.MatchesAny(s.DXCall()) {
		return false
	}
	if len(f.SpotterPatterns) > 0 && !f.SpotterPatterns.MatchesAny(s.Spotter()) {
		return false
	}
	if len(f.Bands) > 0 {
		band, ok := spot.BandForFrequency(s.FrequencyKHz())
		if !ok || !bandListContains(f.Bands, band) {
			return false
		}
	}
	if len(f.Modes) > 0 && !modeListContains(f.Modes, s.Mode()) {
		return false
	}
	if len(f.SpotTypes) > 0 && !spotTypeListContains(f.SpotTypes, s.SpotType()) {
		return false
	}
	if f.MinSNR != nil && s.SNRDB() < *f.MinSNR {
		return false
	}
	if f.MaxSNR != nil && s.SNRDB() > *f.MaxSNR {
		return false
	}
	if f.MinWPM != nil && s.WPM() < *f.MinWPM {
		return false
	}
	if f.MaxWPM != nil && s.WPM() > *f.MaxWPM {
		return false
	}
	return true
}

// Validate checks the spec's pattern lists; called at config load time so
// invalid filters abort startup before any network I/O (spec.md §7).
func (f Spec) Validate() error {
	if err := f.DXCallPatterns.Validate(); err != nil {
		return fmt.Errorf("dx_call_patterns: %w", err)
	}
	if err := f.SpotterPatterns.Validate(); err != nil {
		return fmt.Errorf("spotter_patterns: %w", err)
	}
	return nil
}

// AnyMatches reports whether any of the given specs matches s; false on an
// empty list.
func AnyMatches(specs []Spec, s spot.Spot) bool {
	for _, f := range specs {
		if f.Matches(s) {
			return true
		}
	}
	return false
}

func bandListContains(bands []string, band string) bool {
	for _, b := range bands {
		if strings.EqualFold(b, band) {
			return true
		}
	}
	return false
}

func modeListContains(modes []spot.Mode, m spot.Mode) bool {
	for _, candidate := range modes {
		if candidate == m {
			return true
		}
	}
	return false
}

func spotTypeListContains(types []spot.SpotType, t spot.SpotType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
