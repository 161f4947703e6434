// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package game

import "github.com/wenruji/decaygame/reverts"

var (
	ErrNotInitialized     = reverts.New(reverts.KindNotFound, "game not initialized")
	ErrAlreadyInitialized = reverts.New(reverts.KindConflict, "game already initialized")

	ErrRoundStarted      = reverts.New(reverts.KindTemporal, "round has started")
	ErrRoundNotStarted   = reverts.New(reverts.KindTemporal, "round has not started")
	ErrRoundNotCompleted = reverts.New(reverts.KindTemporal, "round not completed")
	ErrCooldownActive    = reverts.New(reverts.KindTemporal, "play cooldown active")

	ErrAlreadyJoined = reverts.New(reverts.KindConflict, "already joined")
	ErrNotJoined     = reverts.New(reverts.KindNotFound, "not joined")
	ErrNoWinner      = reverts.New(reverts.KindConflict, "no winner")

	ErrSelfTarget     = reverts.New(reverts.KindAuthorization, "cannot target self")
	ErrTargetNotFound = reverts.New(reverts.KindNotFound, "target not joined")
	ErrInvalidAction  = reverts.New(reverts.KindInvalid, "invalid action")

	ErrSnapshotNotFound = reverts.New(reverts.KindNotFound, "snapshot not found")
)
