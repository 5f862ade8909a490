package stats

import (
	"testing"

	"rbnfeed/spot"
)

func mustSpot(t *testing.T, spotter string, freq float64, mode spot.Mode, snr int, wpm uint, typ spot.SpotType) spot.Spot {
	t.Helper()
	s, err := spot.New(spotter, freq, "K1ABC", mode, snr, wpm, typ, spot.Time{})
	if err != nil {
		t.Fatalf("spot.New: %v", err)
	}
	return s
}

func TestRecordSpotUpdatesCounters(t *testing.T) {
	c := NewCollector()
	s := mustSpot(t, "W1AW-#", 14025, spot.ModeCW, 19, 18, spot.SpotTypeCQ)
	c.RecordSpot(s)

	summary := c.Summary()
	if summary.TotalSpots != 1 {
		t.Errorf("TotalSpots = %d, want 1", summary.TotalSpots)
	}
	if summary.ByBand["20m"] != 1 {
		t.Errorf("ByBand[20m] = %d, want 1", summary.ByBand["20m"])
	}
	if summary.ByMode[spot.ModeCW] != 1 {
		t.Errorf("ByMode[CW] = %d, want 1", summary.ByMode[spot.ModeCW])
	}
	if summary.ByType[spot.SpotTypeCQ] != 1 {
		t.Errorf("ByType[CQ] = %d, want 1", summary.ByType[spot.SpotTypeCQ])
	}
	if len(summary.TopSpotters) != 1 || summary.TopSpotters[0].Spotter != "W1AW-#" {
		t.Errorf("TopSpotters = %+v, want a single W1AW-# entry", summary.TopSpotters)
	}
}

func TestRecordParseFailureAndNonSpotAndBytes(t *testing.T) {
	c := NewCollector()
	c.RecordParseFailure()
	c.RecordParseFailure()
	c.RecordNonSpot()
	c.RecordBytes(42)

	summary := c.Summary()
	if summary.ParseFailures != 2 {
		t.Errorf("ParseFailures = %d, want 2", summary.ParseFailures)
	}
	if summary.NonSpotLines != 1 {
		t.Errorf("NonSpotLines = %d, want 1", summary.NonSpotLines)
	}
	if summary.BytesProcessed != 42 {
		t.Errorf("BytesProcessed = %d, want 42", summary.BytesProcessed)
	}
}

func TestSNRPercentilesRoundTripOffset(t *testing.T) {
	c := NewCollector()
	for _, snr := range []int{-29, 0, 19, 69} {
		c.RecordSpot(mustSpot(t, "W1AW-#", 14025, spot.ModeCW, snr, 10, spot.SpotTypeCQ))
	}
	p := c.Summary().SNRPercentiles
	if p.Min != -29 {
		t.Errorf("SNR min = %d, want -29", p.Min)
	}
	if p.Max != 69 {
		t.Errorf("SNR max = %d, want 69", p.Max)
	}
}

func TestTopSpottersOrderingTieBreak(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 3; i++ {
		c.RecordSpot(mustSpot(t, "AAA", 14025, spot.ModeCW, 10, 10, spot.SpotTypeCQ))
	}
	for i := 0; i < 3; i++ {
		c.RecordSpot(mustSpot(t, "BBB", 14025, spot.ModeCW, 10, 10, spot.SpotTypeCQ))
	}
	c.RecordSpot(mustSpot(t, "CCC", 14025, spot.ModeCW, 10, 10, spot.SpotTypeCQ))

	top := c.Summary().TopSpotters
	if len(top) != 3 {
		t.Fatalf("len(top) = %d, want 3", len(top))
	}
	if top[0].Spotter != "AAA" || top[1].Spotter != "BBB" {
		t.Errorf("expected AAA before BBB on tie-break by name, got %+v", top)
	}
	if top[2].Spotter != "CCC" {
		t.Errorf("expected CCC last, got %+v", top)
	}
}

func TestTopSpottersLimitsToTen(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 15; i++ {
		call := string(rune('A' + i))
		c.RecordSpot(mustSpot(t, call, 14025, spot.ModeCW, 10, 10, spot.SpotTypeCQ))
	}
	top := c.Summary().TopSpotters
	if len(top) != 10 {
		t.Errorf("len(top) = %d, want 10", len(top))
	}
}

func TestSpotsPerSecondAndElapsed(t *testing.T) {
	c := NewCollector()
	if c.SpotsPerSecond() != 0 {
		t.Errorf("SpotsPerSecond() = %v before any elapsed time/spots, want 0", c.SpotsPerSecond())
	}
	if c.Elapsed() < 0 {
		t.Error("Elapsed() should never be negative")
	}
}
