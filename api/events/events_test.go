// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestake/lode/eventdb"
	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

func initServer(t *testing.T) (*httptest.Server, lode.Address) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	alice := lode.BytesToAddress([]byte("alice"))
	bob := lode.BytesToAddress([]byte("bob"))
	require.NoError(t, db.Insert(100,
		&stake.Event{Seq: 1, Kind: stake.KindDeposit, Account: alice, Amount: big.NewInt(1000)},
		&stake.Event{Seq: 2, Kind: stake.KindDeposit, Account: bob, Amount: big.NewInt(500)},
	))
	require.NoError(t, db.Insert(200,
		&stake.Event{Seq: 3, Kind: stake.KindWithdraw, Account: alice, Amount: big.NewInt(1000)},
		&stake.Event{Seq: 4, Kind: stake.KindPaused},
	))

	router := mux.NewRouter()
	New(db, 100).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, alice
}

func get(t *testing.T, url string) ([]*FilteredEvent, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	if res.StatusCode != http.StatusOK {
		return nil, res.StatusCode
	}
	var out []*FilteredEvent
	require.NoError(t, json.Unmarshal(body, &out))
	return out, res.StatusCode
}

func TestFilterAll(t *testing.T) {
	ts, _ := initServer(t)

	got, status := get(t, ts.URL+"/events")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, got, 4)
	assert.Equal(t, stake.KindDeposit, got[0].Kind)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(got[0].Amount))
	// control events carry neither account nor amount
	assert.Nil(t, got[3].Account)
	assert.Nil(t, got[3].Amount)
}

func TestFilterByKindAndAccount(t *testing.T) {
	ts, alice := initServer(t)

	got, status := get(t, ts.URL+"/events?kind=deposit")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, got, 2)

	got, status = get(t, ts.URL+"/events?account="+alice.String())
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, got, 2)

	got, status = get(t, ts.URL+"/events?kind=withdraw&account="+alice.String())
	require.Equal(t, http.StatusOK, status)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].Seq)
}

func TestFilterRangePagingOrder(t *testing.T) {
	ts, _ := initServer(t)

	got, status := get(t, ts.URL+"/events?from=200")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, got, 2)

	got, status = get(t, ts.URL+"/events?to=100")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, got, 2)

	got, status = get(t, ts.URL+"/events?order=desc&limit=1")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(4), got[0].Seq)
}

func TestFilterBadParams(t *testing.T) {
	ts, _ := initServer(t)

	_, status := get(t, ts.URL+"/events?account=zzz")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = get(t, ts.URL+"/events?from=abc")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = get(t, ts.URL+"/events?order=sideways")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = get(t, ts.URL+"/events?limit=101")
	assert.Equal(t, http.StatusForbidden, status)
}
