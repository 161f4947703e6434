// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math"
	"strconv"
	"time"
)

// Timestamp is a point in time in unix seconds.
type Timestamp uint64

// Now converts a wall clock reading into a Timestamp.
func Now(t time.Time) Timestamp {
	if t.Unix() < 0 {
		return 0
	}
	return Timestamp(t.Unix())
}

// Add returns ts moved forward by the given number of seconds, saturating at the max value.
func (ts Timestamp) Add(seconds uint64) Timestamp {
	if uint64(ts) > math.MaxUint64-seconds {
		return Timestamp(math.MaxUint64)
	}
	return ts + Timestamp(seconds)
}

// Time converts ts back into a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(int64(ts), 0).UTC() // #nosec G115
}

func (ts Timestamp) String() string {
	return strconv.FormatUint(uint64(ts), 10)
}
