package spot

import jsoniter "github.com/json-iterator/go"

// jsonAPI is configured once and reused; json-iterator's compiled codecs
// make repeated marshaling of the same struct shape cheap, which matters
// here since Size is called on the hot storage-accounting path.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// wireSpot is the canonical textual serialization used solely to measure
// a Spot's storage footprint; its shape is not part of any external
// contract (spec.md §4.1 only requires that implementations measure
// consistently, not that this exact shape is stable).
type wireSpot struct {
	Spotter      string  `json:"spotter"`
	FrequencyKHz float64 `json:"frequency_khz"`
	DXCall       string  `json:"dx_call"`
	Mode         Mode    `json:"mode"`
	SNRDB        int     `json:"snr_db"`
	WPM          uint    `json:"wpm"`
	SpotType     SpotType `json:"spot_type"`
	TimeUTC      string  `json:"time_utc"`
}

// Size returns the byte length of the canonical JSON serialization of the
// spot, used by storage to account for per-queue and global byte budgets.
func (s Spot) Size() int {
	b, err := jsonAPI.Marshal(s.toWire())
	if err != nil {
		// Marshaling a plain value struct of primitives cannot fail; if it
		// somehow does, fall back to a conservative fixed estimate rather
		// than propagating an error through a pure accounting path.
		return 128
	}
	return len(b)
}

func (s Spot) toWire() wireSpot {
	return wireSpot{
		Spotter:      s.spotter,
		FrequencyKHz: s.frequencyKHz,
		DXCall:       s.dxCall,
		Mode:         s.mode,
		SNRDB:        s.snrDB,
		WPM:          s.wpm,
		SpotType:     s.spotType,
		TimeUTC:      s.timeUTC.String(),
	}
}

// MarshalJSON implements json.Marshaler (and is also picked up by
// json-iterator) so a Spot embedded in an HTTP response body serializes
// the same way it is measured for storage accounting.
func (s Spot) MarshalJSON() ([]byte, error) {
	return jsonAPI.Marshal(s.toWire())
}
