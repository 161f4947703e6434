// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package game

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/decay"
	"github.com/wenruji/decaygame/types"
)

// ActionKind enumerates what a player can do on its turn.
type ActionKind uint8

const (
	Keep ActionKind = iota
	Hit
	Help
)

func (k ActionKind) String() string {
	switch k {
	case Keep:
		return "keep"
	case Hit:
		return "hit"
	case Help:
		return "help"
	}
	return "unknown"
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "keep":
		*k = Keep
	case "hit":
		*k = Hit
	case "help":
		*k = Help
	default:
		return errors.Errorf("unknown action %q", text)
	}
	return nil
}

// Action is one play. Target is nil for Keep.
type Action struct {
	Kind   ActionKind     `json:"kind"`
	Target *types.Address `json:"target,omitempty" rlp:"nil"`
}

func KeepAction() Action { return Action{Kind: Keep} }

func HitAction(target types.Address) Action { return Action{Kind: Hit, Target: &target} }

func HelpAction(target types.Address) Action { return Action{Kind: Help, Target: &target} }

// Rules are the point deltas of each action and the minimal delay between
// two plays of the same player.
type Rules struct {
	Keep      int64  `json:"keep" yaml:"keep"`
	Hit       int64  `json:"hit" yaml:"hit"`
	HelpSelf  int64  `json:"helpSelf" yaml:"helpSelf"`
	HelpOther int64  `json:"helpOther" yaml:"helpOther"`
	Cooldown  uint64 `json:"cooldown" yaml:"cooldown"`
}

// deltas returns the point change of the actor and of the target.
func (r *Rules) deltas(kind ActionKind) (self, other int64) {
	switch kind {
	case Keep:
		return r.Keep, 0
	case Hit:
		return 0, r.Hit
	case Help:
		return r.HelpSelf, r.HelpOther
	}
	return 0, 0
}

// Player is the per round score card of a participant.
type Player struct {
	Address  types.Address   `json:"address"`
	Points   uint64          `json:"points"`
	History  []Action        `json:"history"`
	LastPlay types.Timestamp `json:"lastPlay"`
}

// Leader is the cached top scorer.
type Leader struct {
	Address types.Address `json:"address"`
	Points  uint64        `json:"points"`
}

// Is reports whether the leader is addr. A nil leader is nobody.
func (l *Leader) Is(addr types.Address) bool {
	return l != nil && l.Address == addr
}

// Base is the round record: the decay pool and the cached leader.
type Base struct {
	Pool   decay.Pool `json:"pool"`
	Leader *Leader    `json:"leader" rlp:"nil"`
}

// RefWeight counts the players an ambassador brought into the round.
type RefWeight struct {
	Address types.Address `json:"address"`
	Weight  uint64        `json:"weight"`
}

// AccountEntry pairs an address with its pool account.
type AccountEntry struct {
	Address types.Address `json:"address"`
	Account decay.Account `json:"account"`
}

// Snapshot is the full state of one round.
type Snapshot struct {
	Pool      decay.Pool     `json:"pool"`
	Leader    *Leader        `json:"leader" rlp:"nil"`
	Accounts  []AccountEntry `json:"accounts"`
	Players   []Player       `json:"players"`
	Referrals []RefWeight    `json:"referrals"`
}

// Phase is where a round stands relative to now.
type Phase uint8

const (
	NotStarted Phase = iota
	Open
	Ended
	// Completed is Ended with the pot handed out.
	Completed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not-started"
	case Open:
		return "open"
	case Ended:
		return "ended"
	case Completed:
		return "completed"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
