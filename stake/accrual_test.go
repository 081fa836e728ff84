// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcReward(t *testing.T) {
	tests := []struct {
		name     string
		staked   *big.Int
		rate     uint64
		elapsed  uint64
		expected int64
	}{
		{"zero stake", big.NewInt(0), DefaultAnnualRate, day, 0},
		{"nil stake", nil, DefaultAnnualRate, day, 0},
		{"zero rate", big.NewInt(1000), 0, day, 0},
		{"zero elapsed", big.NewInt(1000), DefaultAnnualRate, 0, 0},
		// 1000 * 33300 * 86400 / (31536000 * 10000) = 9.12... -> 9
		{"one day", big.NewInt(1000), DefaultAnnualRate, day, 9},
		// a full year returns exactly rate/denominator of the stake
		{"one year", big.NewInt(10000), DefaultAnnualRate, SecondsPerYear, 33300},
		// fraction below one unit is floored away entirely
		{"dust", big.NewInt(1), DefaultAnnualRate, 1, 0},
		{"100% for half a year", big.NewInt(1000), 10000, SecondsPerYear / 2, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, big.NewInt(tt.expected), CalcReward(tt.staked, tt.rate, tt.elapsed))
		})
	}
}

func TestCalcRewardFloors(t *testing.T) {
	// 999 * 33300 * 86400 = 2874243120000; / 315360000000 = 9.114 -> 9
	assert.Equal(t, big.NewInt(9), CalcReward(big.NewInt(999), DefaultAnnualRate, day))

	// two half-interval settlements never exceed one full-interval one
	full := CalcReward(big.NewInt(777), DefaultAnnualRate, 2*day)
	half := CalcReward(big.NewInt(777), DefaultAnnualRate, day)
	sum := new(big.Int).Add(half, half)
	assert.True(t, sum.Cmp(full) <= 0)
}
