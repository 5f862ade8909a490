package polo

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseNotesSkipsBlankAndCommentLines(t *testing.T) {
	input := `
# a comment
W1AW  Famous callsign
K1ABC some note text

N2WQ
`
	entries, err := parseNotes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseNotes: %v", err)
	}
	want := []string{"W1AW", "K1ABC", "N2WQ"}
	for _, call := range want {
		if _, ok := entries[call]; !ok {
			t.Errorf("expected %s in parsed entries, got %v", call, entries)
		}
	}
	if len(entries) != len(want) {
		t.Errorf("len(entries) = %d, want %d", len(entries), len(want))
	}
}

func TestWatchlistContainsIsCaseInsensitive(t *testing.T) {
	w := NewWatchlist()
	w.replace(map[string]struct{}{"W1AW": {}})
	if !w.Contains("w1aw") {
		t.Error("expected case-insensitive match")
	}
	if w.Contains("K1ABC") {
		t.Error("unexpected match for an absent callsign")
	}
}

func TestWatchlistContainsOnNilReceiverIsFalse(t *testing.T) {
	var w *Watchlist
	if w.Contains("W1AW") {
		t.Error("nil Watchlist should never match")
	}
}

func TestFetchParsesHTTPResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte("W1AW some note\nK1ABC another note\n"))
	}))
	defer srv.Close()

	entries, err := Fetch(t.Context(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, ok := entries["W1AW"]; !ok {
		t.Errorf("expected W1AW in fetched entries, got %v", entries)
	}
}

func TestFetchRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(t.Context(), srv.Client(), srv.URL); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestFetcherRefreshOnceLeavesPreviousSetOnFailure(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:0/does-not-exist", time.Hour)
	f.Watchlist.replace(map[string]struct{}{"W1AW": {}})
	f.refreshOnce(t.Context())
	if !f.Watchlist.Contains("W1AW") {
		t.Error("a failed refresh should leave the previous watchlist in place")
	}
}
