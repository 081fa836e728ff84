// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"sync"

	"github.com/lodestake/lode/lode"
)

type allowanceKey struct {
	owner   lode.Address
	spender lode.Address
}

// Mem is an in-memory Gateway implementation with ERC20-like semantics:
// balances, per-spender allowances and mint. It keeps an undo journal so
// Snapshot/RevertTo behave exactly like transaction scopes, and offers a
// fault hook for tests.
type Mem struct {
	mu         sync.Mutex
	vault      lode.Address
	balances   map[lode.Address]*big.Int
	allowances map[allowanceKey]*big.Int
	journal    []func()
	breakErr   error
	breakAfter int
}

var _ Gateway = (*Mem)(nil)

// NewMem creates an in-memory token whose Push operations spend from the
// given vault custody account.
func NewMem(vault lode.Address) *Mem {
	return &Mem{
		vault:      vault,
		balances:   make(map[lode.Address]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

// Break makes every following gateway call fail with err. Passing nil
// restores normal operation.
func (m *Mem) Break(err error) {
	m.BreakAfter(0, err)
}

// BreakAfter lets the next n gateway calls succeed and fails every call
// after that with err.
func (m *Mem) BreakAfter(n int, err error) {
	m.mu.Lock()
	m.breakErr = err
	m.breakAfter = n
	m.mu.Unlock()
}

// callers must hold m.mu
func (m *Mem) broken() error {
	if m.breakErr == nil {
		return nil
	}
	if m.breakAfter > 0 {
		m.breakAfter--
		return nil
	}
	return m.breakErr
}

// Mint credits amount to the given account.
func (m *Mem) Mint(to lode.Address, amount *big.Int) {
	m.mu.Lock()
	m.setBalance(to, new(big.Int).Add(m.balanceOf(to), amount))
	m.mu.Unlock()
}

// Approve lets spender pull up to amount from owner.
func (m *Mem) Approve(owner, spender lode.Address, amount *big.Int) {
	m.mu.Lock()
	m.setAllowance(owner, spender, new(big.Int).Set(amount))
	m.mu.Unlock()
}

// Allowance reports the remaining allowance from owner to spender.
func (m *Mem) Allowance(owner, spender lode.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.allowanceOf(owner, spender))
}

func (m *Mem) Pull(from, to lode.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.broken(); err != nil {
		return err
	}
	allowance := m.allowanceOf(from, to)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if m.balanceOf(from).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	m.setAllowance(from, to, new(big.Int).Sub(allowance, amount))
	m.move(from, to, amount)
	return nil
}

func (m *Mem) Push(to lode.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.broken(); err != nil {
		return err
	}
	if m.balanceOf(m.vault).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	m.move(m.vault, to, amount)
	return nil
}

func (m *Mem) BalanceOf(addr lode.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.broken(); err != nil {
		return nil, err
	}
	return new(big.Int).Set(m.balanceOf(addr)), nil
}

func (m *Mem) Snapshot() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.journal)
}

func (m *Mem) RevertTo(revision int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.journal) > revision {
		last := len(m.journal) - 1
		m.journal[last]()
		m.journal = m.journal[:last]
	}
}

// callers must hold m.mu

func (m *Mem) balanceOf(addr lode.Address) *big.Int {
	if b, ok := m.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (m *Mem) allowanceOf(owner, spender lode.Address) *big.Int {
	if a, ok := m.allowances[allowanceKey{owner, spender}]; ok {
		return a
	}
	return new(big.Int)
}

func (m *Mem) setBalance(addr lode.Address, val *big.Int) {
	prev, had := m.balances[addr]
	m.journal = append(m.journal, func() {
		if had {
			m.balances[addr] = prev
		} else {
			delete(m.balances, addr)
		}
	})
	m.balances[addr] = val
}

func (m *Mem) setAllowance(owner, spender lode.Address, val *big.Int) {
	key := allowanceKey{owner, spender}
	prev, had := m.allowances[key]
	m.journal = append(m.journal, func() {
		if had {
			m.allowances[key] = prev
		} else {
			delete(m.allowances, key)
		}
	})
	m.allowances[key] = val
}

func (m *Mem) move(from, to lode.Address, amount *big.Int) {
	m.setBalance(from, new(big.Int).Sub(m.balanceOf(from), amount))
	m.setBalance(to, new(big.Int).Add(m.balanceOf(to), amount))
}
