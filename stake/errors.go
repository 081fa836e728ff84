// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"errors"

	"github.com/lodestake/lode/token"
)

// Every error aborts the whole enclosing operation; no partial ledger
// mutation survives a failure.
var (
	// ErrInvalidAmount rejects zero or otherwise disallowed amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance rejects withdrawals exceeding the staked amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrTransferFailure wraps a token gateway rejection.
	ErrTransferFailure = errors.New("transfer failure")
	// ErrInsufficientAllowance is the gateway's allowance rejection.
	ErrInsufficientAllowance = token.ErrInsufficientAllowance
	// ErrInvalidRange rejects malformed pagination bounds.
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnauthorized rejects administrative calls from non-owners.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPaused rejects participant operations while the vault is paused.
	ErrPaused = errors.New("paused")
	// ErrNotPaused rejects recovery operations outside the paused state.
	ErrNotPaused = errors.New("not paused")
	// ErrInvalidToken rejects rescuing the staking token itself.
	ErrInvalidToken = errors.New("invalid token")
)

// asTransferErr folds a gateway error into the vault taxonomy. Allowance
// rejections keep their identity; everything else becomes ErrTransferFailure.
func asTransferErr(err error) error {
	if errors.Is(err, token.ErrInsufficientAllowance) {
		return err
	}
	return errors.Join(ErrTransferFailure, err)
}
