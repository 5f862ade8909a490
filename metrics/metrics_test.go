package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"rbnfeed/filter"
	"rbnfeed/polo"
	"rbnfeed/spot"
	"rbnfeed/stats"
	"rbnfeed/storage"
)

func collectAll(t *testing.T, c prometheus.Collector) []prometheus.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 256)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	var out []prometheus.Metric
	for m := range ch {
		out = append(out, m)
	}
	return out
}

func TestCollectWithoutStorageEmitsCoreMetricsOnly(t *testing.T) {
	sc := stats.NewCollector()
	c := New(sc, nil, nil)
	metrics := collectAll(t, c)
	if len(metrics) == 0 {
		t.Fatal("expected at least the core metrics")
	}
	for _, m := range metrics {
		if m.Desc() == filterStoredSpotsDesc {
			t.Error("did not expect per-filter metrics when storage is nil")
		}
	}
}

func TestCollectEmitsZeroValueSpotsTotalWhenNoModeObserved(t *testing.T) {
	sc := stats.NewCollector()
	c := New(sc, nil, nil)
	metrics := collectAll(t, c)

	found := false
	for _, m := range metrics {
		if m.Desc() == spotsTotalUnlabeledDesc {
			var pb dto.Metric
			if err := m.Write(&pb); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if pb.GetCounter().GetValue() != 0 {
				t.Errorf("expected zero-value rbn_spots_total, got %v", pb.GetCounter().GetValue())
			}
			if len(pb.GetLabel()) != 0 {
				t.Errorf("expected rbn_spots_total with no labels, got %v", pb.GetLabel())
			}
			found = true
		}
		if m.Desc() == spotsTotalDesc {
			t.Error("did not expect a mode-labeled rbn_spots_total when no mode has been observed")
		}
	}
	if !found {
		t.Error("expected an unlabeled rbn_spots_total metric even with no spots recorded")
	}
}

func TestCollectWithStorageEmitsPerFilterMetrics(t *testing.T) {
	sc := stats.NewCollector()
	st := storage.New([]filter.Spec{{Name: "a"}}, 10, 1<<20)
	s, err := spot.New("W1AW-#", 14025, "K1ABC", spot.ModeCW, 10, 20, spot.SpotTypeCQ, spot.Time{})
	if err != nil {
		t.Fatalf("spot.New: %v", err)
	}
	st.TryStore(s)

	c := New(sc, st, nil)
	metrics := collectAll(t, c)

	var sawStoredSpots bool
	for _, m := range metrics {
		if m.Desc() == filterStoredSpotsDesc {
			sawStoredSpots = true
		}
	}
	if !sawStoredSpots {
		t.Error("expected rbn_filter_stored_spots when storage is configured")
	}
}

func TestCollectOmitsWatchlistGaugeWhenNil(t *testing.T) {
	sc := stats.NewCollector()
	c := New(sc, nil, nil)
	metrics := collectAll(t, c)
	for _, m := range metrics {
		if m.Desc() == poloWatchlistSizeDesc {
			t.Error("did not expect rbn_polo_watchlist_size when watchlist is nil")
		}
	}
}

func TestCollectEmitsWatchlistGaugeWhenConfigured(t *testing.T) {
	sc := stats.NewCollector()
	wl := polo.NewWatchlist()
	c := New(sc, nil, wl)
	metrics := collectAll(t, c)

	found := false
	for _, m := range metrics {
		if m.Desc() == poloWatchlistSizeDesc {
			found = true
			var pb dto.Metric
			if err := m.Write(&pb); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if pb.GetGauge().GetValue() != 0 {
				t.Errorf("expected zero-value rbn_polo_watchlist_size for an empty watchlist, got %v", pb.GetGauge().GetValue())
			}
		}
	}
	if !found {
		t.Error("expected rbn_polo_watchlist_size when a watchlist is configured")
	}
}

func TestSummaryMetricQuantiles(t *testing.T) {
	p := stats.Percentiles{P50: 10, P90: 20, P99: 30, Min: 5, Max: 35, Mean: 15}
	m := summaryMetric(snrSummaryDesc, p, 7)
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if pb.GetSummary().GetSampleCount() != 7 {
		t.Errorf("sample count = %d, want 7", pb.GetSummary().GetSampleCount())
	}
	if len(pb.GetSummary().GetQuantile()) != 3 {
		t.Errorf("expected 3 quantiles, got %d", len(pb.GetSummary().GetQuantile()))
	}
}
