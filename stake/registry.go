// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/lodestake/lode/lode"
)

// registry is the deduplicated, enumerable set of addresses with non-zero
// stake. Positions are stable between mutations; removal swaps the last
// element into the vacated slot.
type registry struct {
	addrs []lode.Address
	index map[lode.Address]int
}

func newRegistry() *registry {
	return &registry{
		index: make(map[lode.Address]int),
	}
}

// add inserts addr. Idempotent.
func (r *registry) add(addr lode.Address) {
	if _, ok := r.index[addr]; ok {
		return
	}
	r.index[addr] = len(r.addrs)
	r.addrs = append(r.addrs, addr)
}

// remove deletes addr. No-op if absent.
func (r *registry) remove(addr lode.Address) {
	i, ok := r.index[addr]
	if !ok {
		return
	}
	last := len(r.addrs) - 1
	if i != last {
		moved := r.addrs[last]
		r.addrs[i] = moved
		r.index[moved] = i
	}
	r.addrs = r.addrs[:last]
	delete(r.index, addr)
}

func (r *registry) contains(addr lode.Address) bool {
	_, ok := r.index[addr]
	return ok
}

func (r *registry) count() int {
	return len(r.addrs)
}

// at returns the member at the given position.
func (r *registry) at(i int) lode.Address {
	return r.addrs[i]
}

// enumerate returns the members in the half-open range [start, end).
func (r *registry) enumerate(start, end uint64) ([]lode.Address, error) {
	if start >= end || end > uint64(len(r.addrs)) {
		return nil, ErrInvalidRange
	}
	out := make([]lode.Address, end-start)
	copy(out, r.addrs[start:end])
	return out, nil
}

// clone returns a deep copy, used to stage membership changes.
func (r *registry) clone() *registry {
	out := &registry{
		addrs: make([]lode.Address, len(r.addrs)),
		index: make(map[lode.Address]int, len(r.index)),
	}
	copy(out.addrs, r.addrs)
	for addr, i := range r.index {
		out.index[addr] = i
	}
	return out
}

// snapshot returns a copy of the member list, used for persistence.
func (r *registry) snapshot() []lode.Address {
	out := make([]lode.Address, len(r.addrs))
	copy(out, r.addrs)
	return out
}
