package varz

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

var (
	testCounter    = NewCounter("test_events_total", "events seen by the varz test")
	testCounterVec = NewCounterVec("test_modes_total", "modes seen by the varz test", "mode")
)

func TestHandlerServesCounters(t *testing.T) {
	testCounter.Add(3)
	testCounterVec.WithLabelValues("pko").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	for _, want := range []string{
		"ggsc_varz_test_events_total 3",
		`ggsc_varz_test_modes_total{mode="pko"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output lacks %q", want)
		}
	}
}
