// Command rbnfeed connects to a Reverse Beacon Network telnet feed,
// parses each line into a Spot, maintains running statistics, retains
// recent spots matching configured filters, and serves all of it over a
// small read-only HTTP API. See package config for the configuration
// surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rbnfeed/config"
	"rbnfeed/httpd"
	"rbnfeed/internal/rlog"
	"rbnfeed/metrics"
	"rbnfeed/polo"
	"rbnfeed/spot"
	"rbnfeed/stats"
	"rbnfeed/storage"
	"rbnfeed/telnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	maxRuntime := flag.Duration("max-runtime", 0, "stop the process after this duration (0 disables)")
	flag.Parse()

	if *showVersion {
		fmt.Println("rbnfeed", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	rlog.Infof("rbnfeed %s starting (instance %s)", Version, cfg.InstanceID)
	rlog.Infof("telnet target %s:%d as %s", cfg.Host, cfg.Port, cfg.Callsign)

	globalMaxSize, err := cfg.GlobalMaxSizeBytes()
	if err != nil {
		log.Fatalf("storage.global_max_size: %v", err)
	}
	store := storage.New(cfg.Filters, cfg.DefaultMaxKeptEntries(), globalMaxSize)
	statsCollector := stats.NewCollector()

	var watchlist *polo.Watchlist
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Polo != nil && cfg.Polo.URL != "" {
		fetcher := polo.NewFetcher(cfg.Polo.URL, cfg.Polo.RefreshInterval.Duration())
		watchlist = fetcher.Watchlist
		go fetcher.Run(ctx)
		rlog.Infof("PoLo watchlist enabled, refreshing from %s every %s", cfg.Polo.URL, cfg.Polo.RefreshInterval.Duration())
	}

	metricsCollector := metrics.New(statsCollector, store, watchlist)

	client := telnet.New(telnet.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Callsign:       cfg.Callsign,
		ConnectTimeout: cfg.ConnectTimeout.Duration(),
		ReadTimeout:    cfg.ReadTimeout.Duration(),
		AutoReconnect:  *cfg.AutoReconnect,
		ReconnectDelay: cfg.ReconnectDelay.Duration(),
	})
	client.Start()

	var httpServer *http.Server
	if cfg.HTTPEnabled {
		handler := httpd.New(metricsCollector, store)
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: handler,
		}
		go func() {
			rlog.Infof("http api listening on %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				rlog.Errorf("http server: %v", err)
			}
		}()
	}

	if cfg.StatsPrintInterval.Duration() > 0 {
		go printStats(ctx, cfg.StatsPrintInterval.Duration(), statsCollector, store, watchlist)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runtimeTimer <-chan time.Time
	if *maxRuntime > 0 {
		timer := time.NewTimer(*maxRuntime)
		defer timer.Stop()
		runtimeTimer = timer.C
	}

	done := make(chan struct{})
	go dispatch(client, statsCollector, store, cfg.CWOnly, done)

	select {
	case sig := <-sigCh:
		rlog.Infof("received signal %v, shutting down", sig)
	case <-runtimeTimer:
		rlog.Infof("max runtime elapsed, shutting down")
	}

	cancel()
	client.Stop()
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}
	<-done
	rlog.Infof("rbnfeed stopped")
}

// dispatch drains the telnet client's event channel, turning each line
// into a parsed spot (or a tallied non-spot/failure), and feeds the result
// to statistics and storage. It returns once the event channel closes,
// which the client's supervisor does when it exits after Stop.
func dispatch(client *telnet.Client, statsCollector *stats.Collector, store *storage.Storage, cwOnly bool, done chan<- struct{}) {
	defer close(done)
	for ev := range client.Events() {
		switch ev.Kind {
		case telnet.EventLine:
			statsCollector.RecordBytes(uint64(len(ev.Line)))
			handleLine(ev.Line, statsCollector, store, cwOnly)
		case telnet.EventConnected:
			rlog.Infof("telnet connected")
		case telnet.EventDisconnected:
			rlog.Warnf("telnet disconnected: %s", ev.Text)
		case telnet.EventError:
			rlog.Warnf("telnet error: %s", ev.Text)
		}
	}
}

func handleLine(line string, statsCollector *stats.Collector, store *storage.Storage, cwOnly bool) {
	if !spot.LooksLikeSpot(line) {
		statsCollector.RecordNonSpot()
		return
	}

	s, err := spot.Parse(line)
	if err != nil {
		statsCollector.RecordParseFailure()
		return
	}

	if cwOnly && !spot.IsCWSpot(s) {
		return
	}

	statsCollector.RecordSpot(s)
	store.TryStore(s)
}

func printStats(ctx context.Context, interval time.Duration, statsCollector *stats.Collector, store *storage.Storage, watchlist *polo.Watchlist) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary := statsCollector.Summary()
			rlog.Infof("spots=%d parse_failures=%d non_spot=%d rate=%.1f/s",
				summary.TotalSpots, summary.ParseFailures, summary.NonSpotLines, summary.SpotsPerSecond)
			if store != nil {
				rlog.Infof("storage: total_bytes=%d/%d global_evictions=%d",
					store.TotalSizeBytes(), store.GlobalMaxSize(), store.GlobalEvictions())
			}
			if watchlist != nil {
				rlog.Infof("polo watchlist: %d callsigns", watchlist.Count())
			}
		}
	}
}
