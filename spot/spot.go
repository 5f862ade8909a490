// Package spot defines the RBN spot record, its derived band attribute,
// and the grammar-driven parser for the telnet wire line format.
package spot

import (
	"strconv"
	"strings"
)

// Mode is the transmission mode reported for a spot.
type Mode string

const (
	ModeCW      Mode = "CW"
	ModeRTTY    Mode = "RTTY"
	ModeFT8     Mode = "FT8"
	ModeFT4     Mode = "FT4"
	ModePSK31   Mode = "PSK31"
	ModeUnknown Mode = "UNKNOWN"
)

// SpotType classifies what the DX station was doing when spotted.
type SpotType string

const (
	SpotTypeCQ          SpotType = "CQ"
	SpotTypeBeacon      SpotType = "BEACON"
	SpotTypeNCDXFBeacon SpotType = "NCDXF_BEACON"
	SpotTypeOther       SpotType = "OTHER"
)

// Time is a wall-clock HH:MM with no date component, as reported by RBN.
type Time struct {
	Hour   int
	Minute int
}

func (t Time) String() string {
	return strconv.Itoa(t.Hour/10) + strconv.Itoa(t.Hour%10) + ":" + strconv.Itoa(t.Minute/10) + strconv.Itoa(t.Minute%10)
}

// Spot is an immutable value record describing one reception report.
// Construct only via New or the parser; all fields are unexported to
// preserve the immutability invariant once a Spot exists.
type Spot struct {
	spotter      string
	frequencyKHz float64
	dxCall       string
	mode         Mode
	snrDB        int
	wpm          uint
	spotType     SpotType
	timeUTC      Time
}

// New constructs a Spot, validating the non-empty-string and
// positive-frequency invariants spec.md requires.
func New(spotter string, frequencyKHz float64, dxCall string, mode Mode, snrDB int, wpm uint, spotType SpotType, timeUTC Time) (Spot, error) {
	if strings.TrimSpace(spotter) == "" {
		return Spot{}, ErrEmptyField("spotter")
	}
	if strings.TrimSpace(dxCall) == "" {
		return Spot{}, ErrEmptyField("dx_call")
	}
	if frequencyKHz <= 0 {
		return Spot{}, ErrInvalidFrequency(frequencyKHz)
	}
	return Spot{
		spotter:      spotter,
		frequencyKHz: frequencyKHz,
		dxCall:       dxCall,
		mode:         mode,
		snrDB:        snrDB,
		wpm:          wpm,
		spotType:     spotType,
		timeUTC:      timeUTC,
	}, nil
}

func (s Spot) Spotter() string        { return s.spotter }
func (s Spot) FrequencyKHz() float64  { return s.frequencyKHz }
func (s Spot) DXCall() string         { return s.dxCall }
func (s Spot) Mode() Mode             { return s.mode }
func (s Spot) SNRDB() int             { return s.snrDB }
func (s Spot) WPM() uint              { return s.wpm }
func (s Spot) SpotType() SpotType     { return s.spotType }
func (s Spot) TimeUTC() Time          { return s.timeUTC }

// Band returns the band label for this spot's frequency, or "" if the
// frequency falls outside every defined amateur band.
func (s Spot) Band() string {
	band, _ := BandForFrequency(s.frequencyKHz)
	return band
}

// IsCWSpot reports whether the spot's mode is CW. Mirrors spec.md's
// is_cw_spot helper.
func IsCWSpot(s Spot) bool {
	return s.mode == ModeCW
}

type bandRange struct {
	lowKHz, highKHz int
	label            string
}

// bandTable is the closed piecewise function from spec.md §4.1. Ranges are
// inclusive on both ends and compared against the integer floor of the
// frequency in kHz.
var bandTable = []bandRange{
	{135, 138, "2200m"},
	{472, 479, "630m"},
	{1800, 2000, "160m"},
	{3500, 4000, "80m"},
	{5330, 5410, "60m"},
	{7000, 7300, "40m"},
	{10100, 10150, "30m"},
	{14000, 14350, "20m"},
	{18068, 18168, "17m"},
	{21000, 21450, "15m"},
	{24890, 24990, "12m"},
	{28000, 29700, "10m"},
	{50000, 54000, "6m"},
	{144000, 148000, "2m"},
}

// BandForFrequency maps a frequency in kHz to its amateur band label. The
// second return value is false when the frequency falls in no band.
func BandForFrequency(frequencyKHz float64) (string, bool) {
	khz := int(frequencyKHz)
	for _, b := range bandTable {
		if khz >= b.lowKHz && khz <= b.highKHz {
			return b.label, true
		}
	}
	return "", false
}
