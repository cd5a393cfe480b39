package stats

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pathway",
	Subsystem: "stats_test",
	Name:      "hits_total",
	Help:      "Counter exercised by the stats tests",
})

func TestHandler(t *testing.T) {
	is := is.New(t)
	testCounter.Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	is.Equal(w.Code, http.StatusOK)

	body, err := io.ReadAll(w.Body)
	is.NoErr(err)
	is.True(strings.Contains(string(body), "pathway_stats_test_hits_total 1"))
}

func TestNewStatsServer(t *testing.T) {
	is := is.New(t)
	_, err := NewStatsServer(context.TODO())
	is.Equal(err, config.ErrNilConfig)

	cfg := config.DefaultConfig()
	s, err := NewStatsServer(config.WithContext(context.TODO(), cfg))
	is.NoErr(err)
	is.Equal(s.Enabled(), cfg.Stats.ListenAddr != "")
}
