// Package httpd exposes the thin read-only HTTP API from spec.md §4.7:
// health, Prometheus metrics, the list of filter names, and cursor-based
// spot retrieval for one named filter. Routes are registered on a single
// gorilla/mux router (path variables via mux.Vars), wired to this
// service's own stats/storage/metrics packages.
package httpd

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rbnfeed/storage"
)

// Server wires the HTTP handlers described by spec.md §4.7 onto a
// gorilla/mux router.
type Server struct {
	router  *mux.Router
	storage *storage.Storage
}

// New builds a Server. storage may be nil; in that case /spots/* routes
// always answer 404, per spec.md §4.7.
func New(metricsCollector prometheus.Collector, storageState *storage.Storage) *Server {
	s := &Server{router: mux.NewRouter(), storage: storageState}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metricsCollector)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc("/spots/filters", s.handleFilterList).Methods(http.MethodGet)
	s.router.HandleFunc("/spots/filter/{name}", s.handleFilterSpots).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleFilterList(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, s.storage.FilterNames())
}

// filterResponse is the JSON schema for GET /spots/filter/{name} from
// spec.md §6.
type filterResponse struct {
	Filter        string           `json:"filter"`
	Spots         []storedSpotView `json:"spots"`
	LatestSeq     uint64           `json:"latest_seq"`
	OverflowCount uint64           `json:"overflow_count"`
}

type storedSpotView struct {
	Seq  uint64      `json:"seq"`
	Spot interface{} `json:"spot"`
}

func (s *Server) handleFilterSpots(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		http.NotFound(w, r)
		return
	}
	name := mux.Vars(r)["name"]
	handle, ok := s.storage.GetFilterByName(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	since := uint64(0)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid since cursor", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	stored := handle.GetSpotsSince(since)
	views := make([]storedSpotView, len(stored))
	for i, e := range stored {
		views[i] = storedSpotView{Seq: e.Seq, Spot: e.Spot}
	}

	writeJSON(w, filterResponse{
		Filter:        handle.Name(),
		Spots:         views,
		LatestSeq:     handle.LatestSeq(),
		OverflowCount: handle.OverflowCount(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
