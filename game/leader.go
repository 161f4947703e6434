// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package game

import (
	"math"

	"github.com/wenruji/decaygame/types"
)

// CheckLeader returns the leader after addr reached points.
// Only a strictly greater score replaces the cached one, so the earlier
// leader keeps ties.
func CheckLeader(cached *Leader, addr types.Address, points uint64) *Leader {
	if cached == nil || points > cached.Points {
		return &Leader{Address: addr, Points: points}
	}
	return cached
}

// RescanLeader finds the top scorer of players, which must be in
// ascending address order. The first of equal scores wins, so after a
// rescan a tie goes to the lowest address, not to whoever reached the
// score first. Play rescans with the actor's new points already stored.
func RescanLeader(players []*Player) *Leader {
	var leader *Leader
	for _, p := range players {
		if leader == nil || p.Points > leader.Points {
			leader = &Leader{Address: p.Address, Points: p.Points}
		}
	}
	return leader
}

// applyPoints adds delta to points, saturating at MaxInt64 and flooring at 0.
func applyPoints(points uint64, delta int64) uint64 {
	if points > math.MaxInt64 {
		points = math.MaxInt64
	}
	if delta >= 0 {
		if sum := points + uint64(delta); sum <= math.MaxInt64 {
			return sum
		}
		return math.MaxInt64
	}
	neg := uint64(-(delta + 1)) + 1
	if neg >= points {
		return 0
	}
	return points - neg
}
