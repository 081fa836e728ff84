// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

// Record is a stored vault event together with the wall time it was
// committed at.
type Record struct {
	Seq     uint64
	Ts      uint64
	Kind    stake.EventKind
	Account lode.Address
	Amount  *big.Int
}

// Range filters by commit time, inclusive on both ends. A zero To means
// no upper bound.
type Range struct {
	From uint64
	To   uint64
}

// Options paginates query results.
type Options struct {
	Offset uint64
	Limit  uint64
}

// Order decides the sequence ordering of query results.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Filter narrows an event query. Zero-value fields match everything.
type Filter struct {
	Kinds   []stake.EventKind
	Account *lode.Address
	Range   *Range
	Options *Options
	Order   Order
}
