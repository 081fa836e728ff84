// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/lvldb"
	"github.com/lodestake/lode/stake"
	"github.com/lodestake/lode/token"
)

var (
	owner    = lode.BytesToAddress([]byte("owner"))
	treasury = lode.BytesToAddress([]byte("treasury"))
	vault    = lode.BytesToAddress([]byte("vault"))
	alice    = lode.BytesToAddress([]byte("alice"))
)

func initSubServer(t *testing.T) (*httptest.Server, *stake.Staker, *token.Mem) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tok := token.NewMem(vault)
	tok.Mint(vault, big.NewInt(1_000_000))

	staker, err := stake.New(tok, db, stake.Config{
		Owner:    owner,
		Treasury: treasury,
		Vault:    vault,
	})
	require.NoError(t, err)

	subs := New(staker, []string{"*"}, 32)
	t.Cleanup(subs.Close)

	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, staker, tok
}

func TestSubscribeEventsStream(t *testing.T) {
	ts, staker, tok := initSubServer(t)

	url := strings.Replace(ts.URL, "http://", "ws://", 1) + "/subscriptions/events"
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer res.Body.Close()

	tok.Mint(alice, big.NewInt(1000))
	tok.Approve(alice, vault, big.NewInt(1000))
	require.NoError(t, staker.Deposit(alice, big.NewInt(1000), 1700000000))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg EventMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, stake.KindDeposit, msg.Kind)
	require.NotNil(t, msg.Account)
	assert.Equal(t, alice, *msg.Account)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(msg.Amount))
	assert.NotZero(t, msg.Seq)
}

func TestSubscribeRejectsDisallowedOrigin(t *testing.T) {
	// the origin check runs before any ledger access, a nil staker is fine
	subs := New(nil, []string{"https://trusted.example"}, 8)
	defer subs.Close()
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	guarded := httptest.NewServer(router)
	defer guarded.Close()

	url := strings.Replace(guarded.URL, "http://", "ws://", 1) + "/subscriptions/events"
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, res, err := websocket.DefaultDialer.Dial(url, header)
	assert.Error(t, err)
	if res != nil {
		res.Body.Close()
	}
}
