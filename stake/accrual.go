// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
)

var accrualDivisor = new(big.Int).Mul(
	big.NewInt(SecondsPerYear),
	big.NewInt(RateDenominator),
)

// CalcReward returns the reward accrued by the given stake over elapsed
// seconds at the given annual rate:
//
//	staked * annualRate * elapsed / (SecondsPerYear * RateDenominator)
//
// Integer division floors the result; the sub-unit fraction is lost, not
// carried forward.
func CalcReward(staked *big.Int, annualRate, elapsed uint64) *big.Int {
	if staked == nil || staked.Sign() <= 0 || annualRate == 0 || elapsed == 0 {
		return new(big.Int)
	}
	reward := new(big.Int).Mul(staked, new(big.Int).SetUint64(annualRate))
	reward.Mul(reward, new(big.Int).SetUint64(elapsed))
	return reward.Quo(reward, accrualDivisor)
}
