// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package game overlays a point game on a decay pool. Players score by
// playing actions while the round is open; the top scorer takes the pot.
package game

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/decay"
	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/log"
	"github.com/wenruji/decaygame/storage"
	"github.com/wenruji/decaygame/types"
)

var logger = log.WithContext("pkg", "game")

const (
	baseKey  = "gm/b"
	indexKey = "game_idx"

	accountsBucket   = kv.Bucket("gm/a/")
	refWeightsBucket = kv.Bucket("gm/rf/")
	playersBucket    = kv.Bucket("gm/p/")
	snapshotsBucket  = kv.Bucket("snap/")

	// SnapshotRetention is the number of past rounds kept.
	SnapshotRetention = 10
)

// Machine is the round state machine. It holds no state of its own, every
// call reads and writes the underlying store.
type Machine struct {
	base       *storage.Item[*Base]
	index      *storage.Item[uint64]
	accounts   *storage.Mapping[types.Address, *decay.Account]
	refWeights *storage.Mapping[types.Address, uint64]
	players    *storage.Mapping[types.Address, *Player]
	snapshots  *storage.Mapping[storage.Uint64Key, []byte]
}

func New(store kv.Store) *Machine {
	return &Machine{
		base:       storage.NewItem[*Base](store, baseKey),
		index:      storage.NewItem[uint64](store, indexKey),
		accounts:   storage.NewMapping[types.Address, *decay.Account](store, accountsBucket, storage.DecodeAddress),
		refWeights: storage.NewMapping[types.Address, uint64](store, refWeightsBucket, storage.DecodeAddress),
		players:    storage.NewMapping[types.Address, *Player](store, playersBucket, storage.DecodeAddress),
		snapshots:  storage.NewMapping[storage.Uint64Key, []byte](store, snapshotsBucket, storage.DecodeUint64),
	}
}

// Initialize opens the first round over [start, end] with index 1.
func (m *Machine) Initialize(now, start, end types.Timestamp) error {
	if _, ok, err := m.base.MayGet(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	pool, err := decay.NewPool(start, end)
	if err != nil {
		return err
	}
	if err := pool.Validate(now); err != nil {
		return err
	}
	if err := m.base.Set(&Base{Pool: *pool}); err != nil {
		return err
	}
	if err := m.index.Set(1); err != nil {
		return err
	}
	metricRoundIndex().Set(1)
	logger.Info("game initialized", "start", start, "end", end)
	return nil
}

// Base returns the round record.
func (m *Machine) Base() (*Base, error) {
	base, ok, err := m.base.MayGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return base, nil
}

func (m *Machine) Phase(now types.Timestamp) (Phase, error) {
	base, err := m.Base()
	if err != nil {
		return 0, err
	}
	return phaseOf(&base.Pool, now), nil
}

func phaseOf(pool *decay.Pool, now types.Timestamp) Phase {
	switch {
	case !pool.IsStarted(now):
		return NotStarted
	case !pool.IsEnded(now):
		return Open
	case pool.IsFinalized():
		return Completed
	}
	return Ended
}

// Index returns the number of the current round.
func (m *Machine) Index() (uint64, error) {
	return m.index.Get()
}

func (m *Machine) Leader() (*Leader, error) {
	base, err := m.Base()
	if err != nil {
		return nil, err
	}
	return base.Leader, nil
}

func (m *Machine) HasJoined(addr types.Address) (bool, error) {
	return m.accounts.Has(addr)
}

func (m *Machine) HasExited(addr types.Address) (bool, error) {
	acc, ok, err := m.accounts.MayGet(addr)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotJoined
	}
	return acc.HasExited(), nil
}

func (m *Machine) Account(addr types.Address) (*decay.Account, error) {
	acc, ok, err := m.accounts.MayGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotJoined
	}
	return acc, nil
}

func (m *Machine) Player(addr types.Address) (*Player, error) {
	p, ok, err := m.players.MayGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotJoined
	}
	return p, nil
}

// Players lists the players in ascending address order.
func (m *Machine) Players() ([]*Player, error) {
	var players []*Player
	err := m.players.Iterate(func(_ types.Address, p *Player) (bool, error) {
		players = append(players, p)
		return true, nil
	})
	return players, err
}

// IncreaseRef adds one to the referral weight of addr.
func (m *Machine) IncreaseRef(addr types.Address) error {
	weight, err := m.refWeights.Get(addr)
	if err != nil {
		return err
	}
	return m.refWeights.Set(addr, weight+1)
}

// RefWeights lists referral weights in ascending address order.
func (m *Machine) RefWeights() ([]RefWeight, error) {
	var weights []RefWeight
	err := m.refWeights.Iterate(func(addr types.Address, w uint64) (bool, error) {
		weights = append(weights, RefWeight{Address: addr, Weight: w})
		return true, nil
	})
	return weights, err
}

// Join stakes amount for addr. Joining is only possible before the round starts.
func (m *Machine) Join(now types.Timestamp, addr types.Address, amount *uint256.Int) (*decay.Account, error) {
	base, err := m.Base()
	if err != nil {
		return nil, err
	}
	if base.Pool.IsStarted(now) {
		return nil, ErrRoundStarted
	}
	joined, err := m.accounts.Has(addr)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, ErrAlreadyJoined
	}

	acc, err := base.Pool.Join(amount, now)
	if err != nil {
		return nil, err
	}
	base.Leader = CheckLeader(base.Leader, addr, 0)

	if err := m.base.Set(base); err != nil {
		return nil, err
	}
	if err := m.accounts.Set(addr, acc); err != nil {
		return nil, err
	}
	if err := m.players.Set(addr, &Player{Address: addr}); err != nil {
		return nil, err
	}
	metricJoins().Add(1)
	logger.Debug("joined", "account", addr, "amount", amount, "total", base.Pool.Total)
	return acc, nil
}

// Exit takes addr out of the round and returns the decayed stake it may
// withdraw, together with the decay fraction applied.
func (m *Machine) Exit(now types.Timestamp, addr types.Address) (*uint256.Int, types.Fraction, error) {
	base, err := m.Base()
	if err != nil {
		return nil, types.Fraction{}, err
	}
	if now >= base.Pool.End {
		return nil, types.Fraction{}, decay.ErrRoundEnded
	}
	acc, err := m.Account(addr)
	if err != nil {
		return nil, types.Fraction{}, err
	}
	if err := base.Pool.Exit(now, acc); err != nil {
		return nil, types.Fraction{}, err
	}
	amount := base.Pool.Claim(acc)

	if err := m.base.Set(base); err != nil {
		return nil, types.Fraction{}, err
	}
	if err := m.accounts.Set(addr, acc); err != nil {
		return nil, types.Fraction{}, err
	}
	metricExits().Add(1)
	logger.Debug("exited", "account", addr, "amount", amount, "fraction", acc.DecaySnapshot)
	return amount, acc.DecaySnapshot, nil
}

// Play applies action for addr under rules.
func (m *Machine) Play(now types.Timestamp, addr types.Address, action Action, rules *Rules) error {
	base, err := m.Base()
	if err != nil {
		return err
	}
	switch phaseOf(&base.Pool, now) {
	case NotStarted:
		return ErrRoundNotStarted
	case Ended, Completed:
		return decay.ErrRoundEnded
	}
	if err := checkAction(addr, action); err != nil {
		return err
	}
	exited, err := m.HasExited(addr)
	if err != nil {
		return err
	}
	if exited {
		return decay.ErrAlreadyExited
	}
	player, err := m.Player(addr)
	if err != nil {
		return err
	}
	if len(player.History) > 0 && now < player.LastPlay.Add(rules.Cooldown) {
		return errors.Wrapf(ErrCooldownActive, "next play at %d", player.LastPlay.Add(rules.Cooldown))
	}
	var target *Player
	if action.Target != nil {
		p, ok, err := m.players.MayGet(*action.Target)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTargetNotFound
		}
		target = p
	}

	selfDelta, otherDelta := rules.deltas(action.Kind)
	player.Points = applyPoints(player.Points, selfDelta)
	player.History = append(player.History, action)
	player.LastPlay = now

	// a penalty on the cached leader may hand the lead to anyone
	rescan := false
	if target != nil {
		target.Points = applyPoints(target.Points, otherDelta)
		if otherDelta < 0 && base.Leader.Is(target.Address) {
			rescan = true
		} else {
			base.Leader = CheckLeader(base.Leader, target.Address, target.Points)
		}
	}
	if selfDelta < 0 && base.Leader.Is(addr) {
		rescan = true
	}
	if !rescan {
		base.Leader = CheckLeader(base.Leader, addr, player.Points)
	}

	if target != nil {
		if err := m.players.Set(target.Address, target); err != nil {
			return err
		}
	}
	if err := m.players.Set(addr, player); err != nil {
		return err
	}
	if rescan {
		players, err := m.Players()
		if err != nil {
			return err
		}
		base.Leader = RescanLeader(players)
		metricRescans().Add(1)
	}
	if err := m.base.Set(base); err != nil {
		return err
	}

	metricPlays().AddWithLabel(1, map[string]string{"action": action.Kind.String()})
	logger.Debug("played", "account", addr, "action", action.Kind, "points", player.Points, "leader", base.Leader.Address, "rescan", rescan)
	return nil
}

func checkAction(addr types.Address, action Action) error {
	switch action.Kind {
	case Keep:
		if action.Target != nil {
			return errors.Wrap(ErrInvalidAction, "keep takes no target")
		}
	case Hit, Help:
		if action.Target == nil {
			return errors.Wrapf(ErrInvalidAction, "%s needs a target", action.Kind)
		}
		if *action.Target == addr {
			return ErrSelfTarget
		}
	default:
		return errors.Wrapf(ErrInvalidAction, "kind %d", action.Kind)
	}
	return nil
}

// EndRound finalizes the pot and returns the winner with the amount won.
func (m *Machine) EndRound(now types.Timestamp) (*Leader, *uint256.Int, error) {
	base, err := m.Base()
	if err != nil {
		return nil, nil, err
	}
	amount, err := base.Pool.FinalizeRewards(now)
	if err != nil {
		logger.Info("end round rejected", "err", err)
		return nil, nil, err
	}
	if base.Leader == nil {
		return nil, nil, ErrNoWinner
	}
	if err := m.base.Set(base); err != nil {
		return nil, nil, err
	}
	metricRoundsEnded().Add(1)
	logger.Info("round ended", "winner", base.Leader.Address, "points", base.Leader.Points, "rewards", amount)
	return base.Leader, amount, nil
}

// Restart archives the completed round and opens the next one. The new
// window starts delay seconds after now and lasts duration seconds.
func (m *Machine) Restart(now types.Timestamp, duration, delay uint64) (uint64, error) {
	base, err := m.Base()
	if err != nil {
		return 0, err
	}
	if phaseOf(&base.Pool, now) != Completed {
		return 0, ErrRoundNotCompleted
	}
	start := now.Add(delay)
	pool, err := decay.NewPool(start, start.Add(duration))
	if err != nil {
		return 0, err
	}
	snap, err := m.Snapshot()
	if err != nil {
		return 0, err
	}
	idx, err := m.index.Get()
	if err != nil {
		return 0, err
	}

	if idx > SnapshotRetention {
		if err := m.snapshots.Delete(storage.Uint64Key(idx - SnapshotRetention)); err != nil {
			return 0, err
		}
	}
	if err := m.snapshots.Set(storage.Uint64Key(idx), snap); err != nil {
		return 0, err
	}
	for _, clearTable := range []func() error{m.accounts.Clear, m.refWeights.Clear, m.players.Clear} {
		if err := clearTable(); err != nil {
			return 0, err
		}
	}
	if err := m.base.Set(&Base{Pool: *pool}); err != nil {
		return 0, err
	}
	if err := m.index.Set(idx + 1); err != nil {
		return 0, err
	}

	metricRestarts().Add(1)
	metricRoundIndex().Set(int64(idx + 1)) // #nosec G115
	logger.Info("round restarted", "index", idx+1, "start", pool.Start, "end", pool.End)
	return idx + 1, nil
}
