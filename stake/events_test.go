// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedAssignsSequence(t *testing.T) {
	f := NewFeed()
	ch, unsub := f.Subscribe(4)
	defer unsub()

	f.Publish(
		&Event{Kind: KindDeposit, Account: addr("a"), Amount: big.NewInt(1)},
		&Event{Kind: KindWithdraw, Account: addr("a"), Amount: big.NewInt(1)},
	)
	f.Publish(&Event{Kind: KindPaused})

	assert.Equal(t, uint64(1), (<-ch).Seq)
	assert.Equal(t, uint64(2), (<-ch).Seq)
	assert.Equal(t, uint64(3), (<-ch).Seq)
}

func TestFeedSeedSeqContinuesNumbering(t *testing.T) {
	f := NewFeed()
	f.SeedSeq(5)
	f.SeedSeq(2) // never backwards

	ch, unsub := f.Subscribe(1)
	defer unsub()

	f.Publish(&Event{Kind: KindDeposit, Account: addr("a"), Amount: big.NewInt(1)})
	assert.Equal(t, uint64(6), (<-ch).Seq)
}

func TestFeedFansOut(t *testing.T) {
	f := NewFeed()
	ch1, unsub1 := f.Subscribe(1)
	ch2, unsub2 := f.Subscribe(1)
	defer unsub1()
	defer unsub2()

	f.Publish(&Event{Kind: KindPaused})
	assert.Equal(t, KindPaused, (<-ch1).Kind)
	assert.Equal(t, KindPaused, (<-ch2).Kind)
}

func TestFeedDropsForSlowSubscriber(t *testing.T) {
	f := NewFeed()
	ch, unsub := f.Subscribe(1)
	defer unsub()

	f.Publish(&Event{Kind: KindPaused})
	f.Publish(&Event{Kind: KindUnpaused}) // buffer full, dropped

	assert.Equal(t, KindPaused, (<-ch).Kind)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev.Kind)
	default:
	}
}

func TestFeedUnsubscribeClosesChannel(t *testing.T) {
	f := NewFeed()
	ch, unsub := f.Subscribe(1)

	unsub()
	unsub() // idempotent

	_, ok := <-ch
	assert.False(t, ok)

	// publishing after unsubscribe must not panic on the closed channel
	f.Publish(&Event{Kind: KindPaused})
}
