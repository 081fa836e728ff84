// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	// 2 ways of accessing it - useful to avoid lookups
	count1 := Counter("deposit_count")
	Counter("withdraw_count")
	countVec := CounterVec("op_count", []string{"status"})

	hist := Histogram("settled_amount", Bucket1B)
	gauge := Gauge("total_staked")

	count1.Add(1)
	randWithdraws := rand.Intn(100) + 1
	for j := 0; j < randWithdraws; j++ {
		Counter("withdraw_count").Add(1)
	}

	histTotal := 0
	histN := rand.Intn(100) + 2
	for i := 0; i < histN; i++ {
		hist.Observe(int64(i))
		histTotal += i
	}

	totalCountVec := 0
	countVecN := rand.Intn(100) + 2
	for i := 0; i < countVecN; i++ {
		status := i % 2
		countVec.AddWithLabel(int64(i), map[string]string{"status": strconv.Itoa(status)})
		totalCountVec += i
	}

	gauge.Set(42)
	gauge.Add(8)

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	metricFamilies, err := gatherers.Gather()
	require.NoError(t, err)

	families := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		families[mf.GetName()] = mf
	}

	require.Equal(t, float64(1), families["lode_metrics_deposit_count"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(randWithdraws), families["lode_metrics_withdraw_count"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(histTotal), families["lode_metrics_settled_amount"].Metric[0].GetHistogram().GetSampleSum())

	sumCountVec := families["lode_metrics_op_count"].Metric[0].GetCounter().GetValue() +
		families["lode_metrics_op_count"].Metric[1].GetCounter().GetValue()
	require.Equal(t, float64(totalCountVec), sumCountVec)

	require.Equal(t, float64(50), families["lode_metrics_total_staked"].Metric[0].GetGauge().GetValue())
}

func TestMetricsHTTPEndpoint(t *testing.T) {
	InitializePrometheusMetrics()
	Counter("endpoint_probe_count").Add(3)
	HistogramVec("api_probe_ms", []string{"path"}, BucketHTTPReqs).
		ObserveWithLabels(7, map[string]string{"path": "staking"})

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	require.NoError(t, err)
	require.Contains(t, families, "lode_metrics_endpoint_probe_count")
	require.Contains(t, families, "lode_metrics_api_probe_ms")
}

func TestLazyLoadCreatesOnce(t *testing.T) {
	calls := 0
	counter := LazyLoad(func() CountMeter {
		calls++
		return Counter("lazy_probe_count")
	})

	require.Equal(t, 0, calls)
	first := counter()
	second := counter()
	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
}

func TestNoopMetrics(t *testing.T) {
	// the noop service must swallow everything without a prometheus registry
	m := defaultNoopMetrics()
	m.GetOrCreateCountMeter("a").Add(1)
	m.GetOrCreateCountVecMeter("b", []string{"l"}).AddWithLabel(1, map[string]string{"l": "v"})
	m.GetOrCreateGaugeMeter("c").Set(1)
	m.GetOrCreateHistogramMeter("d", nil).Observe(1)
	m.GetOrCreateHistogramVecMeter("e", []string{"l"}, nil).ObserveWithLabels(1, map[string]string{"l": "v"})
	require.NotNil(t, m.GetOrCreateHandler())
}
