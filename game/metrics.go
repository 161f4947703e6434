// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package game

import "github.com/wenruji/decaygame/metrics"

var (
	metricJoins        = metrics.LazyLoadCounter("game_joins_count")
	metricExits        = metrics.LazyLoadCounter("game_exits_count")
	metricPlays        = metrics.LazyLoadCounterVec("game_plays_count", []string{"action"})
	metricRescans      = metrics.LazyLoadCounter("game_leader_rescans_count")
	metricRoundsEnded  = metrics.LazyLoadCounter("game_rounds_ended_count")
	metricRestarts     = metrics.LazyLoadCounter("game_restarts_count")
	metricRoundIndex   = metrics.LazyLoadGauge("game_round_index")
	metricSnapshotSize = metrics.LazyLoadHistogramVec("game_snapshot_bytes", []string{"kind"}, metrics.BucketBytes)
)
