// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/lvldb"
	"github.com/lodestake/lode/stake"
	"github.com/lodestake/lode/token"
)

func initAdmin(t *testing.T) (string, *stake.Staker, *token.Mem) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	vault := lode.BytesToAddress([]byte("vault"))
	tok := token.NewMem(vault)
	tok.Mint(vault, big.NewInt(1_000_000))

	staker, err := stake.New(tok, db, stake.Config{
		Owner:    lode.BytesToAddress([]byte("owner")),
		Treasury: lode.BytesToAddress([]byte("treasury")),
		Vault:    vault,
	})
	require.NoError(t, err)

	var logLevel slog.LevelVar
	url, cancel, err := NewAdmin("127.0.0.1:0", staker, &logLevel).Start()
	require.NoError(t, err)
	t.Cleanup(cancel)
	return url, staker, tok
}

func adminPost(t *testing.T, url string, obj interface{}) (map[string]interface{}, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	var out map[string]interface{}
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return out, res.StatusCode
}

func TestAdminLogLevel(t *testing.T) {
	url, _, _ := initAdmin(t)

	res, err := http.Get(url + "/loglevel")
	require.NoError(t, err)
	var lvl logLevelResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&lvl))
	require.NoError(t, res.Body.Close())
	assert.Equal(t, "info", lvl.CurrentLevel)

	out, status := adminPost(t, url+"/loglevel", logLevelRequest{Level: "debug"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "debug", out["currentLevel"])

	_, status = adminPost(t, url+"/loglevel", logLevelRequest{Level: "noisy"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminPauseFlow(t *testing.T) {
	url, staker, _ := initAdmin(t)

	out, status := adminPost(t, url+"/pause", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["paused"])
	assert.True(t, staker.Paused())

	_, status = adminPost(t, url+"/pause", nil)
	assert.Equal(t, http.StatusConflict, status)

	out, status = adminPost(t, url+"/unpause", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["paused"])

	_, status = adminPost(t, url+"/unpause", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAdminPoolWithdraw(t *testing.T) {
	url, staker, tok := initAdmin(t)

	// requires the paused state
	_, status := adminPost(t, url+"/pool/withdraw", map[string]string{"amount": "100"})
	assert.Equal(t, http.StatusConflict, status)

	require.NoError(t, staker.Pause(staker.Owner()))

	_, status = adminPost(t, url+"/pool/withdraw", map[string]string{"amount": "2000000"})
	assert.Equal(t, http.StatusForbidden, status)

	_, status = adminPost(t, url+"/pool/withdraw", map[string]string{"amount": "100"})
	require.Equal(t, http.StatusOK, status)

	b, err := tok.BalanceOf(staker.Owner())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), b)
}

func TestAdminRateAndPenalty(t *testing.T) {
	url, staker, _ := initAdmin(t)

	out, status := adminPost(t, url+"/rate", rateRequest{AnnualRate: 20000})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(20000), out["annualRate"])
	assert.Equal(t, uint64(20000), staker.AnnualRate())

	out, status = adminPost(t, url+"/penalty", penaltyRequest{Enabled: true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["penaltyEnabled"])
	assert.True(t, staker.PenaltyEnabled())
}
