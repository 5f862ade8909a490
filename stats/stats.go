// Package stats tracks running counters and fixed-range histograms over
// the spot stream: lock-free atomic counters for totals, reader-preferring
// concurrent maps for per-dimension tallies, matching spec.md §4.4 and the
// locking discipline of §5.
package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"rbnfeed/spot"
)

const (
	sizeHistogramLow, sizeHistogramHigh = 1, 10000
	snrHistogramLow, snrHistogramHigh   = 1, 99
	wpmHistogramLow, wpmHistogramHigh   = 1, 99
	snrOffset                           = 30
)

// Collector is the thread-safe statistics collector described by
// spec.md §4.4. Counters live as plain atomics (as in the teacher's own
// stats tracker) plus sync.Map-backed per-dimension tallies so that
// producers never contend with each other or with readers beyond a single
// record-or-read operation.
type Collector struct {
	totalSpots     atomic.Uint64
	parseFailures  atomic.Uint64
	nonSpotLines   atomic.Uint64
	bytesProcessed atomic.Uint64

	sizeHist *fixedHistogram
	snrHist  *fixedHistogram
	wpmHist  *fixedHistogram

	byBand    sync.Map // string -> *atomic.Uint64
	byMode    sync.Map // spot.Mode -> *atomic.Uint64
	byType    sync.Map // spot.SpotType -> *atomic.Uint64
	bySpotter sync.Map // string -> *atomic.Uint64

	start time.Time
}

// NewCollector constructs a Collector with its start timestamp set to now.
func NewCollector() *Collector {
	return &Collector{
		sizeHist: newFixedHistogram(sizeHistogramLow, sizeHistogramHigh),
		snrHist:  newFixedHistogram(snrHistogramLow, snrHistogramHigh),
		wpmHist:  newFixedHistogram(wpmHistogramLow, wpmHistogramHigh),
		start:    time.Now(),
	}
}

// RecordSpot records a successfully parsed spot across every dimension
// spec.md §4.4 names.
func (c *Collector) RecordSpot(s spot.Spot) {
	c.totalSpots.Add(1)

	c.sizeHist.Record(clampInt(s.Size(), sizeHistogramLow, sizeHistogramHigh))
	c.snrHist.Record(clampInt(s.SNRDB()+snrOffset, snrHistogramLow, snrHistogramHigh))
	c.wpmHist.Record(clampInt(int(s.WPM()), wpmHistogramLow, wpmHistogramHigh))

	if band, ok := spot.BandForFrequency(s.FrequencyKHz()); ok {
		incrementCounter(&c.byBand, band)
	}
	incrementCounter(&c.byMode, s.Mode())
	incrementCounter(&c.byType, s.SpotType())
	incrementCounter(&c.bySpotter, s.Spotter())
}

// RecordParseFailure records a line that failed to parse as a spot.
func (c *Collector) RecordParseFailure() { c.parseFailures.Add(1) }

// RecordNonSpot records a line recognized early as not a spot.
func (c *Collector) RecordNonSpot() { c.nonSpotLines.Add(1) }

// RecordBytes records raw input bytes processed, spot or not.
func (c *Collector) RecordBytes(n uint64) { c.bytesProcessed.Add(n) }

// Elapsed returns the time since the collector was constructed.
func (c *Collector) Elapsed() time.Duration { return time.Since(c.start) }

// SpotsPerSecond derives the current ingest rate from total spots and
// elapsed time.
func (c *Collector) SpotsPerSecond() float64 {
	elapsed := c.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(c.totalSpots.Load()) / elapsed
}

// SpotterCount is one entry in the top-10 spotters list.
type SpotterCount struct {
	Spotter string
	Count   uint64
}

// Summary holds one reading of every counter, histogram and tally. The
// readings are taken one after another, not under a common lock, so the
// fields are not guaranteed to be mutually consistent.
type Summary struct {
	TotalSpots     uint64
	ParseFailures  uint64
	NonSpotLines   uint64
	BytesProcessed uint64

	SizePercentiles Percentiles
	SNRPercentiles  Percentiles
	WPMPercentiles  Percentiles

	ByBand    map[string]uint64
	ByMode    map[spot.Mode]uint64
	ByType    map[spot.SpotType]uint64
	TopSpotters []SpotterCount

	ElapsedSeconds float64
	SpotsPerSecond float64
}

// Summary produces a snapshot of the collector. Each dimension is read
// independently (no global lock): concurrent producers may land between
// two reads within this call, so the snapshot as a whole is not
// consistent, but each individual counter read is atomic.
func (c *Collector) Summary() Summary {
	snr := c.snrHist.Snapshot()
	snr = Percentiles{
		P50:  snr.P50 - snrOffset,
		P90:  snr.P90 - snrOffset,
		P99:  snr.P99 - snrOffset,
		Min:  snr.Min - snrOffset,
		Max:  snr.Max - snrOffset,
		Mean: snr.Mean - float64(snrOffset),
	}

	return Summary{
		TotalSpots:      c.totalSpots.Load(),
		ParseFailures:   c.parseFailures.Load(),
		NonSpotLines:    c.nonSpotLines.Load(),
		BytesProcessed:  c.bytesProcessed.Load(),
		SizePercentiles: c.sizeHist.Snapshot(),
		SNRPercentiles:  snr,
		WPMPercentiles:  c.wpmHist.Snapshot(),
		ByBand:          snapshotStringMap(&c.byBand),
		ByMode:          snapshotModeMap(&c.byMode),
		ByType:          snapshotSpotTypeMap(&c.byType),
		TopSpotters:     topSpotters(&c.bySpotter, 10),
		ElapsedSeconds:  c.Elapsed().Seconds(),
		SpotsPerSecond:  c.SpotsPerSecond(),
	}
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// incrementCounter bumps a sync.Map-backed atomic counter keyed by any
// comparable type; this is the teacher stats tracker's sync.Map +
// atomic.Uint64 idiom, generalized across string/Mode/SpotType keys.
func incrementCounter[K comparable](m *sync.Map, key K) {
	if v, ok := m.Load(key); ok {
		v.(*atomic.Uint64).Add(1)
		return
	}
	counter := &atomic.Uint64{}
	actual, loaded := m.LoadOrStore(key, counter)
	if loaded {
		actual.(*atomic.Uint64).Add(1)
		return
	}
	counter.Add(1)
}

func snapshotStringMap(m *sync.Map) map[string]uint64 {
	out := make(map[string]uint64)
	m.Range(func(key, value any) bool {
		out[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return out
}

func snapshotModeMap(m *sync.Map) map[spot.Mode]uint64 {
	out := make(map[spot.Mode]uint64)
	m.Range(func(key, value any) bool {
		out[key.(spot.Mode)] = value.(*atomic.Uint64).Load()
		return true
	})
	return out
}

func snapshotSpotTypeMap(m *sync.Map) map[spot.SpotType]uint64 {
	out := make(map[spot.SpotType]uint64)
	m.Range(func(key, value any) bool {
		out[key.(spot.SpotType)] = value.(*atomic.Uint64).Load()
		return true
	})
	return out
}

// topSpotters returns the top n spotters by count, ties broken by name
// ascending, per spec.md §4.4.
func topSpotters(m *sync.Map, n int) []SpotterCount {
	var all []SpotterCount
	m.Range(func(key, value any) bool {
		all = append(all, SpotterCount{Spotter: key.(string), Count: value.(*atomic.Uint64).Load()})
		return true
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Spotter < all[j].Spotter
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
