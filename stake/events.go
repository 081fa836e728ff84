// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"sync"

	"github.com/lodestake/lode/lode"
)

// EventKind names an observable vault event.
type EventKind string

const (
	KindDeposit                EventKind = "deposit"
	KindWithdraw               EventKind = "withdraw"
	KindEmergencyWithdraw      EventKind = "emergency_withdraw"
	KindRewardsTransferred     EventKind = "rewards_transferred"
	KindRewardsPoolTransferred EventKind = "rewards_pool_transferred"
	KindPaused                 EventKind = "paused"
	KindUnpaused               EventKind = "unpaused"
)

// Event is published on the feed after an operation commits. Events of an
// aborted operation are never observable.
type Event struct {
	Seq     uint64       // assigned by the feed, strictly increasing
	Kind    EventKind    //
	Account lode.Address // zero for paused/unpaused; admin for pool transfers
	Amount  *big.Int     // nil for paused/unpaused
}

// Feed fans committed events out to subscribers. Slow subscribers drop
// events rather than stall the ledger.
type Feed struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]chan *Event
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan *Event)}
}

// SeedSeq continues numbering after a previously stored history: the next
// published event gets seq+1. Never moves the counter backwards.
func (f *Feed) SeedSeq(seq uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq > f.seq {
		f.seq = seq
	}
}

// Subscribe registers a subscriber with the given channel buffer. The
// returned func unsubscribes and closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan *Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan *Event, buffer)
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
}

// Publish assigns sequence numbers and delivers the events to every
// subscriber.
func (f *Feed) Publish(events ...*Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ev := range events {
		f.seq++
		ev.Seq = f.seq
		for _, sub := range f.subs {
			select {
			case sub <- ev:
			default:
				logger.Warn("event dropped for slow subscriber", "seq", ev.Seq, "kind", ev.Kind)
			}
		}
	}
}
