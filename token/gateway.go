// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lodestake/lode/lode"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the sender's balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance is returned when a pull exceeds the approved allowance.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

// Gateway abstracts the external token the vault keeps custody of.
//
// All value movement can fail and failures are reported as errors, never as
// partially applied state. Snapshot/RevertTo delimit an operation scope: every
// transfer performed after Snapshot is undone by RevertTo with the returned
// revision. A chain-backed gateway maps the scope onto transaction boundaries;
// the in-memory implementation keeps an undo journal.
type Gateway interface {
	// Pull moves amount from the holder into custody at `to`.
	Pull(from, to lode.Address, amount *big.Int) error
	// Push moves amount out of vault custody to the given account.
	Push(to lode.Address, amount *big.Int) error
	// BalanceOf reports the token balance of an account.
	BalanceOf(addr lode.Address) (*big.Int, error)

	Snapshot() int
	RevertTo(revision int)
}
