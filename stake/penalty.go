// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

const day = 24 * 3600

// PenaltyRate maps the elapsed stake duration (seconds since the account's
// first deposit) to an early-withdrawal penalty rate in RateDenominator
// fixed units. The tiers are contiguous and exact at the boundaries.
func PenaltyRate(elapsed uint64) uint64 {
	switch {
	case elapsed <= 5*day:
		return 500 // 5%
	case elapsed <= 14*day:
		return 400 // 4%
	case elapsed <= 30*day:
		return 300 // 3%
	case elapsed < 60*day:
		return 200 // 2%
	default:
		return 0
	}
}
