// Package metrics bridges a stats.Collector, an optional storage.Storage,
// and an optional polo.Watchlist into the Prometheus exposition contract
// from spec.md §6. Grounded in the pack's shared dependency on
// github.com/prometheus/client_golang: rather than hand-format the text
// exposition, this implements the library's
// prometheus.Collector interface so promhttp can serialize it, which keeps
// the metric/label contract centralized in one Collect method instead of
// scattered Sprintf calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rbnfeed/polo"
	"rbnfeed/stats"
	"rbnfeed/storage"
)

var (
	uptimeDesc = prometheus.NewDesc(
		"rbn_uptime_seconds", "Seconds since the process started.", nil, nil)
	spotsTotalDesc = prometheus.NewDesc(
		"rbn_spots_total", "Total spots successfully parsed.", []string{"mode"}, nil)
	spotsTotalUnlabeledDesc = prometheus.NewDesc(
		"rbn_spots_total", "Total spots successfully parsed.", nil, nil)
	parseFailuresDesc = prometheus.NewDesc(
		"rbn_parse_failures_total", "Total lines that failed to parse as a spot.", nil, nil)
	nonSpotLinesDesc = prometheus.NewDesc(
		"rbn_non_spot_lines_total", "Total lines recognized early as not a spot.", nil, nil)
	bytesProcessedDesc = prometheus.NewDesc(
		"rbn_bytes_processed_total", "Total raw bytes processed from the upstream feed.", nil, nil)
	spotsPerSecondDesc = prometheus.NewDesc(
		"rbn_spots_per_second", "Current spot ingest rate.", nil, nil)
	spotsByBandDesc = prometheus.NewDesc(
		"rbn_spots_by_band_total", "Total spots observed per band.", []string{"band"}, nil)
	spotsByTypeDesc = prometheus.NewDesc(
		"rbn_spots_by_type_total", "Total spots observed per spot type.", []string{"type"}, nil)
	snrSummaryDesc = prometheus.NewDesc(
		"rbn_snr_db", "SNR distribution in decibels.", nil, nil)
	wpmSummaryDesc = prometheus.NewDesc(
		"rbn_wpm", "CW speed distribution in words per minute.", nil, nil)

	filterStoredSpotsDesc = prometheus.NewDesc(
		"rbn_filter_stored_spots", "Entries currently retained per filter queue.", []string{"filter"}, nil)
	filterStoredBytesDesc = prometheus.NewDesc(
		"rbn_filter_stored_bytes", "Bytes currently retained per filter queue.", []string{"filter"}, nil)
	filterOverflowDesc = prometheus.NewDesc(
		"rbn_filter_overflow_total", "Total entries ever evicted per filter queue.", []string{"filter"}, nil)
	filterMaxKeptDesc = prometheus.NewDesc(
		"rbn_filter_max_kept_entries", "Effective entry cap per filter queue.", []string{"filter"}, nil)

	storageTotalBytesDesc = prometheus.NewDesc(
		"rbn_storage_total_bytes", "Aggregate bytes retained across every filter queue.", nil, nil)
	storageGlobalMaxBytesDesc = prometheus.NewDesc(
		"rbn_storage_global_max_bytes", "Configured global storage byte budget.", nil, nil)
	storageGlobalEvictionsDesc = prometheus.NewDesc(
		"rbn_storage_global_evictions_total", "Total evictions performed by global preemption.", nil, nil)

	poloWatchlistSizeDesc = prometheus.NewDesc(
		"rbn_polo_watchlist_size", "Callsigns currently held in the PoLo watchlist.", nil, nil)
)

// Collector adapts a stats.Collector, an optional storage.Storage, and an
// optional polo.Watchlist to the prometheus.Collector interface. Storage
// may be nil when no storage block is configured, per spec.md §4.7's "if
// storage is configured" qualifier; watchlist may be nil when no PoLo
// block is configured.
type Collector struct {
	stats     *stats.Collector
	storage   *storage.Storage
	watchlist *polo.Watchlist
}

// New builds a Collector. storage and watchlist may each be nil.
func New(statsCollector *stats.Collector, storageState *storage.Storage, watchlist *polo.Watchlist) *Collector {
	return &Collector{stats: statsCollector, storage: storageState, watchlist: watchlist}
}

// Describe implements prometheus.Collector. spotsTotalUnlabeledDesc is not
// sent: it shares its name with spotsTotalDesc but has no label names, and
// a registry rejects a collector describing one name with two label sets.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- uptimeDesc
	ch <- spotsTotalDesc
	ch <- parseFailuresDesc
	ch <- nonSpotLinesDesc
	ch <- bytesProcessedDesc
	ch <- spotsPerSecondDesc
	ch <- spotsByBandDesc
	ch <- spotsByTypeDesc
	ch <- snrSummaryDesc
	ch <- wpmSummaryDesc
	ch <- filterStoredSpotsDesc
	ch <- filterStoredBytesDesc
	ch <- filterOverflowDesc
	ch <- filterMaxKeptDesc
	ch <- storageTotalBytesDesc
	ch <- storageGlobalMaxBytesDesc
	ch <- storageGlobalEvictionsDesc
	ch <- poloWatchlistSizeDesc
}

// Collect implements prometheus.Collector, taking one consistent snapshot
// of the statistics collector (and storage, if configured) per call.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	summary := c.stats.Summary()

	ch <- prometheus.MustNewConstMetric(uptimeDesc, prometheus.GaugeValue, summary.ElapsedSeconds)
	ch <- prometheus.MustNewConstMetric(parseFailuresDesc, prometheus.CounterValue, float64(summary.ParseFailures))
	ch <- prometheus.MustNewConstMetric(nonSpotLinesDesc, prometheus.CounterValue, float64(summary.NonSpotLines))
	ch <- prometheus.MustNewConstMetric(bytesProcessedDesc, prometheus.CounterValue, float64(summary.BytesProcessed))
	ch <- prometheus.MustNewConstMetric(spotsPerSecondDesc, prometheus.GaugeValue, summary.SpotsPerSecond)

	if len(summary.ByMode) == 0 {
		ch <- prometheus.MustNewConstMetric(spotsTotalUnlabeledDesc, prometheus.CounterValue, 0)
	} else {
		for mode, count := range summary.ByMode {
			ch <- prometheus.MustNewConstMetric(spotsTotalDesc, prometheus.CounterValue, float64(count), string(mode))
		}
	}
	for band, count := range summary.ByBand {
		ch <- prometheus.MustNewConstMetric(spotsByBandDesc, prometheus.CounterValue, float64(count), band)
	}
	for typ, count := range summary.ByType {
		ch <- prometheus.MustNewConstMetric(spotsByTypeDesc, prometheus.CounterValue, float64(count), string(typ))
	}

	ch <- summaryMetric(snrSummaryDesc, summary.SNRPercentiles, summary.TotalSpots)
	ch <- summaryMetric(wpmSummaryDesc, summary.WPMPercentiles, summary.TotalSpots)

	if c.watchlist != nil {
		ch <- prometheus.MustNewConstMetric(poloWatchlistSizeDesc, prometheus.GaugeValue, float64(c.watchlist.Count()))
	}

	if c.storage == nil {
		return
	}
	for _, name := range c.storage.FilterNames() {
		h, ok := c.storage.GetFilterByName(name)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(filterStoredSpotsDesc, prometheus.GaugeValue, float64(h.Len()), name)
		ch <- prometheus.MustNewConstMetric(filterStoredBytesDesc, prometheus.GaugeValue, float64(h.CurrentSizeBytes()), name)
		ch <- prometheus.MustNewConstMetric(filterOverflowDesc, prometheus.CounterValue, float64(h.OverflowCount()), name)
		ch <- prometheus.MustNewConstMetric(filterMaxKeptDesc, prometheus.GaugeValue, float64(h.MaxKeptEntries()), name)
	}
	ch <- prometheus.MustNewConstMetric(storageTotalBytesDesc, prometheus.GaugeValue, float64(c.storage.TotalSizeBytes()))
	ch <- prometheus.MustNewConstMetric(storageGlobalMaxBytesDesc, prometheus.GaugeValue, float64(c.storage.GlobalMaxSize()))
	ch <- prometheus.MustNewConstMetric(storageGlobalEvictionsDesc, prometheus.CounterValue, float64(c.storage.GlobalEvictions()))
}

func summaryMetric(desc *prometheus.Desc, p stats.Percentiles, count uint64) prometheus.Metric {
	quantileValues := map[float64]float64{
		0.5:  float64(p.P50),
		0.9:  float64(p.P90),
		0.99: float64(p.P99),
	}
	sum := p.Mean * float64(count)
	return prometheus.MustNewConstSummary(desc, count, sum, quantileValues)
}
