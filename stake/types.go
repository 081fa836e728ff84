// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/lodestake/lode/lode"
)

const (
	// SecondsPerYear is the accrual year used by the reward formula.
	SecondsPerYear = 365 * 24 * 3600

	// RateDenominator is the fixed-point denominator shared by the annual
	// rate and the penalty schedule. A rate of 10000 means 100.00%.
	RateDenominator = 10000

	// DefaultAnnualRate corresponds to 333.00% per year.
	DefaultAnnualRate = 33300
)

// Account is the per-address ledger entry. Entries are created on first
// deposit and never deleted; a zero Staked only removes the address from the
// holder registry.
type Account struct {
	Staked      *big.Int // amount currently deposited
	StakeStart  uint64   // set on first deposit, never reset by top-ups
	LastSettled uint64   // timestamp of the most recent reward settlement
	TotalEarned *big.Int // cumulative rewards ever paid to this account
}

func newAccount() *Account {
	return &Account{
		Staked:      new(big.Int),
		TotalEarned: new(big.Int),
	}
}

// IsEmpty returns whether the entry can be treated as never populated.
func (a *Account) IsEmpty() bool {
	return a.Staked.Sign() == 0 &&
		a.TotalEarned.Sign() == 0 &&
		a.StakeStart == 0 &&
		a.LastSettled == 0
}

func (a *Account) clone() *Account {
	return &Account{
		Staked:      new(big.Int).Set(a.Staked),
		StakeStart:  a.StakeStart,
		LastSettled: a.LastSettled,
		TotalEarned: new(big.Int).Set(a.TotalEarned),
	}
}

// StakerInfo is the read-model row returned by ListStakers.
type StakerInfo struct {
	Address     lode.Address
	Staked      *big.Int
	StakeStart  uint64
	LastSettled uint64
}

// Config carries the vault construction parameters.
type Config struct {
	// Owner holds the administrative capability.
	Owner lode.Address
	// Treasury receives early-withdrawal penalties.
	Treasury lode.Address
	// Vault is the custody account at the token gateway.
	Vault lode.Address
	// AnnualRate in RateDenominator fixed units; DefaultAnnualRate if zero.
	AnnualRate uint64
	// PenaltyEnabled toggles the early-withdrawal penalty schedule.
	PenaltyEnabled bool
}
