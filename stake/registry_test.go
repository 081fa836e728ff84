// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lodestake/lode/lode"
)

func addr(s string) lode.Address {
	return lode.BytesToAddress([]byte(s))
}

func TestRegistryAddRemove(t *testing.T) {
	r := newRegistry()
	assert.Equal(t, 0, r.count())
	assert.False(t, r.contains(addr("a")))

	r.add(addr("a"))
	r.add(addr("b"))
	r.add(addr("c"))
	r.add(addr("a")) // idempotent
	assert.Equal(t, 3, r.count())
	assert.True(t, r.contains(addr("a")))
	assert.Equal(t, addr("b"), r.at(1))

	// swap-remove moves the last member into the hole
	r.remove(addr("a"))
	assert.Equal(t, 2, r.count())
	assert.False(t, r.contains(addr("a")))
	assert.Equal(t, addr("c"), r.at(0))

	r.remove(addr("missing")) // no-op
	assert.Equal(t, 2, r.count())
}

func TestRegistryEnumerate(t *testing.T) {
	r := newRegistry()
	for _, s := range []string{"a", "b", "c", "d"} {
		r.add(addr(s))
	}

	got, err := r.enumerate(1, 3)
	assert.Nil(t, err)
	assert.Equal(t, []lode.Address{addr("b"), addr("c")}, got)

	_, err = r.enumerate(2, 2)
	assert.Equal(t, ErrInvalidRange, err)
	_, err = r.enumerate(3, 1)
	assert.Equal(t, ErrInvalidRange, err)
	_, err = r.enumerate(0, 5)
	assert.Equal(t, ErrInvalidRange, err)
}

func TestRegistryClone(t *testing.T) {
	r := newRegistry()
	r.add(addr("a"))

	c := r.clone()
	c.add(addr("b"))
	c.remove(addr("a"))

	assert.Equal(t, 1, r.count())
	assert.True(t, r.contains(addr("a")))
	assert.Equal(t, 1, c.count())
	assert.True(t, c.contains(addr("b")))
}
