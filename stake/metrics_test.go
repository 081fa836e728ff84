// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/lodestake/lode/metrics"
)

func TestMain(m *testing.M) {
	// select the backend before any meter binds, as main does at startup
	metrics.InitializePrometheusMetrics()
	os.Exit(m.Run())
}

// The package meters are lazy: they must bind to the backend selected at
// startup, not the no-op default in place when the package initialized.
func TestOpMetersReachPrometheus(t *testing.T) {
	s, tok := newTestVault(t)
	fund(tok, alice, 1000)
	require.NoError(t, s.Deposit(alice, big.NewInt(1000), t0))

	families, err := prometheus.Gatherers{prometheus.DefaultGatherer}.Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	require.True(t, found["lode_metrics_stake_op_count"])
	require.True(t, found["lode_metrics_stake_holder_count"])
}
