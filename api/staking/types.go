// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lodestake/lode/lode"
)

// VaultStatus is the aggregate view over the whole ledger.
type VaultStatus struct {
	TotalStaked    *math.HexOrDecimal256 `json:"totalStaked"`
	TotalClaimed   *math.HexOrDecimal256 `json:"totalClaimed"`
	HolderCount    uint64                `json:"holderCount"`
	AnnualRate     uint64                `json:"annualRate"`
	PenaltyEnabled bool                  `json:"penaltyEnabled"`
	Paused         bool                  `json:"paused"`
}

// AccountDetail is the per-address ledger view.
type AccountDetail struct {
	Address       lode.Address          `json:"address"`
	Staked        *math.HexOrDecimal256 `json:"staked"`
	StakeStart    uint64                `json:"stakeStart"`
	LastSettled   uint64                `json:"lastSettled"`
	TotalEarned   *math.HexOrDecimal256 `json:"totalEarned"`
	PendingReward *math.HexOrDecimal256 `json:"pendingReward"`
	PenaltyRate   uint64                `json:"penaltyRate"`
}

// Holder is one row of the registry listing.
type Holder struct {
	Address     lode.Address          `json:"address"`
	Staked      *math.HexOrDecimal256 `json:"staked"`
	StakeStart  uint64                `json:"stakeStart"`
	LastSettled uint64                `json:"lastSettled"`
}

// AmountRequest is the body of deposit and withdraw calls.
type AmountRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// PendingReward is the response of the reward query.
type PendingReward struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
	At     uint64                `json:"at"`
}
