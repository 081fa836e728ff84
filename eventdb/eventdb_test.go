// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

func newDB(t *testing.T) *EventDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func seed(t *testing.T, db *EventDB) (alice, bob lode.Address) {
	alice = lode.BytesToAddress([]byte("alice"))
	bob = lode.BytesToAddress([]byte("bob"))

	require.NoError(t, db.Insert(100,
		&stake.Event{Seq: 1, Kind: stake.KindDeposit, Account: alice, Amount: big.NewInt(1000)},
	))
	require.NoError(t, db.Insert(200,
		&stake.Event{Seq: 2, Kind: stake.KindDeposit, Account: bob, Amount: big.NewInt(500)},
		&stake.Event{Seq: 3, Kind: stake.KindRewardsTransferred, Account: alice, Amount: big.NewInt(9)},
		&stake.Event{Seq: 4, Kind: stake.KindWithdraw, Account: alice, Amount: big.NewInt(1000)},
	))
	require.NoError(t, db.Insert(300, &stake.Event{Seq: 5, Kind: stake.KindPaused}))
	return
}

func TestInsertAndFilterAll(t *testing.T) {
	db := newDB(t)
	alice, _ := seed(t, db)

	records, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, uint64(100), records[0].Ts)
	assert.Equal(t, stake.KindDeposit, records[0].Kind)
	assert.Equal(t, alice, records[0].Account)
	assert.Equal(t, big.NewInt(1000), records[0].Amount)

	// paused events carry no amount
	assert.Nil(t, records[4].Amount)

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
}

func TestFilterByKind(t *testing.T) {
	db := newDB(t)
	seed(t, db)

	records, err := db.Filter(context.Background(), &Filter{
		Kinds: []stake.EventKind{stake.KindDeposit, stake.KindWithdraw},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Contains(t, []stake.EventKind{stake.KindDeposit, stake.KindWithdraw}, r.Kind)
	}
}

func TestFilterByAccount(t *testing.T) {
	db := newDB(t)
	alice, _ := seed(t, db)

	records, err := db.Filter(context.Background(), &Filter{Account: &alice})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, alice, r.Account)
	}
}

func TestFilterRangeOrderAndPaging(t *testing.T) {
	db := newDB(t)
	seed(t, db)

	records, err := db.Filter(context.Background(), &Filter{
		Range: &Range{From: 200, To: 200},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	records, err = db.Filter(context.Background(), &Filter{
		Order:   DESC,
		Options: &Options{Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(4), records[0].Seq)
	assert.Equal(t, uint64(3), records[1].Seq)
}

func TestInsertIgnoresDuplicateSeq(t *testing.T) {
	db := newDB(t)
	alice, _ := seed(t, db)

	require.NoError(t, db.Insert(999,
		&stake.Event{Seq: 1, Kind: stake.KindWithdraw, Account: alice, Amount: big.NewInt(7)},
	))

	records, err := db.Filter(context.Background(), &Filter{Options: &Options{Offset: 0, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	// first write wins
	assert.Equal(t, stake.KindDeposit, records[0].Kind)
	assert.Equal(t, uint64(100), records[0].Ts)
}

func TestHistorySurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	alice := lode.BytesToAddress([]byte("alice"))

	// first lifetime: a fresh feed numbers from 1
	db, err := New(path)
	require.NoError(t, err)
	feed := stake.NewFeed()
	ch, unsub := feed.Subscribe(1)
	feed.Publish(&stake.Event{Kind: stake.KindDeposit, Account: alice, Amount: big.NewInt(1000)})
	require.NoError(t, db.Insert(100, <-ch))
	unsub()
	db.Close()

	// second lifetime: the feed must be seeded past the stored history or
	// its events collide with persisted sequence numbers
	db, err = New(path)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	newest, err := db.NewestSeq()
	require.NoError(t, err)
	require.Equal(t, uint64(1), newest)

	feed = stake.NewFeed()
	feed.SeedSeq(newest)
	ch, unsub = feed.Subscribe(1)
	defer unsub()
	feed.Publish(&stake.Event{Kind: stake.KindWithdraw, Account: alice, Amount: big.NewInt(1000)})
	require.NoError(t, db.Insert(200, <-ch))

	records, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, stake.KindDeposit, records[0].Kind)
	assert.Equal(t, stake.KindWithdraw, records[1].Kind)
	assert.Equal(t, uint64(2), records[1].Seq)
}

func TestFilterCanceledContext(t *testing.T) {
	db := newDB(t)
	seed(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.Filter(ctx, nil)
	assert.Error(t, err)
}
