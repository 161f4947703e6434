// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("count1").Add(1)
	CounterVec("countVec1", []string{"zeroOrOne"}).AddWithLabel(1, map[string]string{"thisIsNonsense": "butDoesntBreak"})
	Gauge("gauge1").Set(3)
	HistogramVec("hist1", []string{"zeroOrOne"}, nil).ObserveWithLabels(1, map[string]string{"zeroOrOne": "0"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noopGauge"),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, discard{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count1 := Counter("prom_count1")
	countVec := CounterVec("prom_count_vec", []string{"zeroOrOne"})
	gauge := Gauge("prom_gauge")

	count1.Add(1)
	randCount := rand.N(100) + 1
	for range randCount {
		Counter("prom_count1").Add(1)
	}

	total := 0
	for i := range rand.N(100) + 2 {
		countVec.AddWithLabel(int64(i), map[string]string{"zeroOrOne": strconv.Itoa(i % 2)})
		HistogramVec("prom_hist", []string{"zeroOrOne"}, BucketHTTPReqs).
			ObserveWithLabels(int64(i), map[string]string{"zeroOrOne": strconv.Itoa(i % 2)})
		total += i
	}
	gauge.Set(42)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	require.Equal(t, float64(randCount+1), byName["decaygame_prom_count1"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(42), byName["decaygame_prom_gauge"].Metric[0].GetGauge().GetValue())

	vec := byName["decaygame_prom_count_vec"]
	require.Equal(t, float64(total), vec.Metric[0].GetCounter().GetValue()+vec.Metric[1].GetCounter().GetValue())

	hist := byName["decaygame_prom_hist"]
	require.Equal(t, float64(total), hist.Metric[0].GetHistogram().GetSampleSum()+hist.Metric[1].GetHistogram().GetSampleSum())
}
