// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package game

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenruji/decaygame/decay"
	"github.com/wenruji/decaygame/lvldb"
	"github.com/wenruji/decaygame/stage"
	"github.com/wenruji/decaygame/types"
)

var rules = &Rules{Keep: 6, Hit: -4, HelpSelf: 6, HelpOther: 4, Cooldown: 10}

func addr(i byte) types.Address {
	return types.BytesToAddress([]byte{i})
}

func newDB(t *testing.T) *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// newMachine opens a round over [10, 110] with n players, who join at 0.
func newMachine(t *testing.T, n int) *Machine {
	m := New(newDB(t))
	require.NoError(t, m.Initialize(0, 10, 110))
	for i := 1; i <= n; i++ {
		_, err := m.Join(0, addr(byte(i)), uint256.NewInt(100))
		require.NoError(t, err)
	}
	return m
}

func TestInitialize(t *testing.T) {
	m := New(newDB(t))

	_, err := m.Base()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, m.Initialize(0, 10, 10), decay.ErrInvalidWindow)

	assert.ErrorIs(t, m.Initialize(1, 0, 100), decay.ErrInvalidWindow, "start in the past")

	require.NoError(t, m.Initialize(0, 0, 100))
	assert.ErrorIs(t, m.Initialize(0, 0, 100), ErrAlreadyInitialized)

	base, err := m.Base()
	require.NoError(t, err)
	assert.Equal(t, types.Timestamp(0), base.Pool.Start)
	assert.Equal(t, types.Timestamp(100), base.Pool.End)
	assert.Nil(t, base.Leader)

	idx, err := m.Index()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)
}

func TestPhase(t *testing.T) {
	m := newMachine(t, 1)

	for now, want := range map[types.Timestamp]Phase{0: NotStarted, 9: NotStarted, 10: Open, 110: Open, 111: Ended} {
		phase, err := m.Phase(now)
		require.NoError(t, err)
		assert.Equal(t, want, phase, "now %d", now)
	}

	_, _, err := m.EndRound(111)
	require.NoError(t, err)
	phase, err := m.Phase(111)
	require.NoError(t, err)
	assert.Equal(t, Completed, phase)
}

func TestJoin(t *testing.T) {
	m := newMachine(t, 0)

	_, err := m.Join(0, addr(1), uint256.NewInt(100))
	require.NoError(t, err)
	leader, err := m.Leader()
	require.NoError(t, err)
	assert.Equal(t, &Leader{Address: addr(1)}, leader, "first joiner leads")

	_, err = m.Join(5, addr(2), uint256.NewInt(100))
	require.NoError(t, err)
	leader, _ = m.Leader()
	assert.Equal(t, addr(1), leader.Address, "ties keep the first")

	_, err = m.Join(5, addr(1), uint256.NewInt(100))
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	_, err = m.Join(10, addr(3), uint256.NewInt(100))
	assert.ErrorIs(t, err, ErrRoundStarted)

	base, _ := m.Base()
	assert.Equal(t, uint256.NewInt(200), base.Pool.Total)

	joined, err := m.HasJoined(addr(2))
	require.NoError(t, err)
	assert.True(t, joined)
	joined, _ = m.HasJoined(addr(3))
	assert.False(t, joined)
}

func TestExit(t *testing.T) {
	m := newMachine(t, 2)

	amount, f, err := m.Exit(60, addr(1))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(50), amount)
	assert.Equal(t, types.MustFraction(1, 2), f)

	_, _, err = m.Exit(61, addr(1))
	assert.ErrorIs(t, err, decay.ErrAlreadyExited)
	_, _, err = m.Exit(61, addr(9))
	assert.ErrorIs(t, err, ErrNotJoined)
	_, _, err = m.Exit(110, addr(2))
	assert.ErrorIs(t, err, decay.ErrRoundEnded)

	exited, err := m.HasExited(addr(1))
	require.NoError(t, err)
	assert.True(t, exited)
	exited, _ = m.HasExited(addr(2))
	assert.False(t, exited)
	_, err = m.HasExited(addr(9))
	assert.ErrorIs(t, err, ErrNotJoined)

	base, _ := m.Base()
	assert.Equal(t, uint256.NewInt(200), base.Pool.Total)
	assert.Equal(t, uint256.NewInt(50), base.Pool.Exited)

	acc, err := m.Account(addr(1))
	require.NoError(t, err)
	assert.True(t, acc.Pending.IsZero(), "exit hands the amount out")
}

func TestPlayPreconditions(t *testing.T) {
	m := newMachine(t, 3)

	tests := []struct {
		name   string
		now    types.Timestamp
		actor  types.Address
		action Action
		err    error
	}{
		{"not started", 9, addr(1), KeepAction(), ErrRoundNotStarted},
		{"ended", 111, addr(1), KeepAction(), decay.ErrRoundEnded},
		{"not joined", 10, addr(9), KeepAction(), ErrNotJoined},
		{"self hit", 10, addr(1), HitAction(addr(1)), ErrSelfTarget},
		{"self help", 10, addr(1), HelpAction(addr(1)), ErrSelfTarget},
		{"unknown target", 10, addr(1), HitAction(addr(9)), ErrTargetNotFound},
		{"keep with target", 10, addr(1), Action{Kind: Keep, Target: &types.Address{}}, ErrInvalidAction},
		{"hit without target", 10, addr(1), Action{Kind: Hit}, ErrInvalidAction},
		{"unknown kind", 10, addr(1), Action{Kind: 7}, ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, m.Play(tt.now, tt.actor, tt.action, rules), tt.err)
		})
	}

	_, _, err := m.Exit(20, addr(3))
	require.NoError(t, err)
	assert.ErrorIs(t, m.Play(20, addr(3), KeepAction(), rules), decay.ErrAlreadyExited)
}

func TestPlayCooldown(t *testing.T) {
	m := newMachine(t, 2)

	require.NoError(t, m.Play(10, addr(1), KeepAction(), rules), "first play is never cooling down")
	assert.ErrorIs(t, m.Play(19, addr(1), KeepAction(), rules), ErrCooldownActive)
	require.NoError(t, m.Play(20, addr(1), HelpAction(addr(2)), rules), "boundary is allowed")

	p, err := m.Player(addr(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), p.Points)
	assert.Equal(t, []Action{KeepAction(), HelpAction(addr(2))}, p.History)
	assert.Equal(t, types.Timestamp(20), p.LastPlay)

	target, err := m.Player(addr(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), target.Points)
	assert.Empty(t, target.History, "being targeted is not playing")
}

func TestPlayHitFloorsAtZero(t *testing.T) {
	m := newMachine(t, 2)

	require.NoError(t, m.Play(10, addr(1), HitAction(addr(2)), rules))
	p, err := m.Player(addr(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), p.Points)

	attacker, _ := m.Player(addr(1))
	assert.Equal(t, uint64(0), attacker.Points, "hit does not credit the attacker")
}

func TestLeaderRescanOnHit(t *testing.T) {
	m := newMachine(t, 3)

	require.NoError(t, m.Play(10, addr(1), KeepAction(), rules))
	require.NoError(t, m.Play(10, addr(2), KeepAction(), rules))
	leader, _ := m.Leader()
	assert.Equal(t, &Leader{Address: addr(1), Points: 6}, leader, "ties keep the incumbent")

	require.NoError(t, m.Play(10, addr(3), HitAction(addr(1)), rules))
	leader, _ = m.Leader()
	assert.Equal(t, &Leader{Address: addr(2), Points: 6}, leader)

	// hitting a non leader keeps the cache
	require.NoError(t, m.Play(20, addr(1), HitAction(addr(3)), rules))
	leader, _ = m.Leader()
	assert.Equal(t, &Leader{Address: addr(2), Points: 6}, leader)
}

func TestLeaderRescanOnNegativeSelfDelta(t *testing.T) {
	m := newMachine(t, 2)
	penalty := &Rules{Keep: -3, HelpSelf: 5, HelpOther: 1}

	require.NoError(t, m.Play(10, addr(1), HelpAction(addr(2)), penalty))
	leader, _ := m.Leader()
	assert.Equal(t, &Leader{Address: addr(1), Points: 5}, leader)

	require.NoError(t, m.Play(11, addr(1), KeepAction(), penalty))
	leader, _ = m.Leader()
	assert.Equal(t, &Leader{Address: addr(1), Points: 2}, leader)

	require.NoError(t, m.Play(12, addr(1), KeepAction(), penalty))
	leader, _ = m.Leader()
	assert.Equal(t, &Leader{Address: addr(2), Points: 1}, leader)
}

func TestLeaderRescanTieGoesToLowestAddress(t *testing.T) {
	m := newMachine(t, 3)
	help := &Rules{HelpSelf: 5, HelpOther: 1}

	for i, target := range []byte{2, 2, 1, 1} {
		require.NoError(t, m.Play(types.Timestamp(10+i), addr(3), HelpAction(addr(target)), help))
	}
	leader, _ := m.Leader()
	assert.Equal(t, &Leader{Address: addr(3), Points: 20}, leader)

	// addr(2) reached 2 points before addr(1) did.
	require.NoError(t, m.Play(14, addr(3), KeepAction(), &Rules{Keep: -20}))
	leader, _ = m.Leader()
	assert.Equal(t, &Leader{Address: addr(1), Points: 2}, leader)
}

// TestLeaderInvariant drives random plays and checks the cached leader
// against a full scan after every step.
func TestLeaderInvariant(t *testing.T) {
	const players = 6
	m := newMachine(t, players)
	random := &Rules{Keep: 3, Hit: -5, HelpSelf: 1, HelpOther: 4}
	f := fuzz.NewWithSeed(42).NilChance(0)

	var rescans int
	for step := range 2000 {
		var op struct {
			Actor, Target, Kind uint8
		}
		f.Fuzz(&op)
		actor := addr(op.Actor%players + 1)
		target := addr(op.Target%players + 1)

		var action Action
		switch op.Kind % 3 {
		case 0:
			action = KeepAction()
		case 1:
			action = HitAction(target)
		case 2:
			action = HelpAction(target)
		}
		before, _ := m.Leader()
		err := m.Play(types.Timestamp(10+step/50), actor, action, random)
		if action.Target != nil && *action.Target == actor {
			require.ErrorIs(t, err, ErrSelfTarget)
			continue
		}
		require.NoError(t, err)
		if action.Kind == Hit && before.Is(target) {
			rescans++
		}

		all, err := m.Players()
		require.NoError(t, err)
		want := RescanLeader(all)
		got, err := m.Leader()
		require.NoError(t, err)
		require.Equal(t, want.Points, got.Points, "step %d", step)

		p, err := m.Player(got.Address)
		require.NoError(t, err)
		require.Equal(t, got.Points, p.Points, "step %d", step)
	}
	assert.Positive(t, rescans, "forced rescan path exercised")
}

func TestFailedPlayWritesNothing(t *testing.T) {
	st := stage.New(newDB(t))
	m := New(st)
	require.NoError(t, m.Initialize(0, 10, 110))
	for i := byte(1); i <= 2; i++ {
		_, err := m.Join(0, addr(i), uint256.NewInt(100))
		require.NoError(t, err)
	}
	require.NoError(t, m.Play(10, addr(1), KeepAction(), rules))
	require.NoError(t, st.Commit())

	assert.Error(t, m.Play(15, addr(1), HitAction(addr(2)), rules))
	assert.Error(t, m.Play(15, addr(2), HitAction(addr(9)), rules))
	_, err := m.Join(15, addr(3), uint256.NewInt(1))
	assert.Error(t, err)
	_, err = m.Restart(15, 10, 10)
	assert.Error(t, err)
	assert.Zero(t, st.Changes())
}

func TestEndRound(t *testing.T) {
	m := newMachine(t, 0)
	_, _, err := m.EndRound(111)
	assert.ErrorIs(t, err, decay.ErrNoRewards)

	m = newMachine(t, 2)
	require.NoError(t, m.Play(10, addr(2), KeepAction(), rules))
	_, _, err = m.Exit(60, addr(1))
	require.NoError(t, err)

	_, _, err = m.EndRound(110)
	assert.ErrorIs(t, err, decay.ErrRoundNotEnded)

	winner, amount, err := m.EndRound(111)
	require.NoError(t, err)
	assert.Equal(t, &Leader{Address: addr(2), Points: 6}, winner)
	assert.Equal(t, uint256.NewInt(150), amount)

	_, _, err = m.EndRound(112)
	assert.ErrorIs(t, err, decay.ErrNoRewards)
}

func TestRestart(t *testing.T) {
	m := newMachine(t, 2)
	require.NoError(t, m.IncreaseRef(addr(7)))
	require.NoError(t, m.IncreaseRef(addr(7)))
	require.NoError(t, m.Play(10, addr(1), KeepAction(), rules))

	_, err := m.Restart(111, 100, 5)
	assert.ErrorIs(t, err, ErrRoundNotCompleted)
	_, _, err = m.EndRound(111)
	require.NoError(t, err)
	_, err = m.Restart(111, 0, 5)
	assert.ErrorIs(t, err, decay.ErrInvalidWindow)

	idx, err := m.Restart(111, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), idx)

	base, err := m.Base()
	require.NoError(t, err)
	assert.Equal(t, types.Timestamp(116), base.Pool.Start)
	assert.Equal(t, types.Timestamp(216), base.Pool.End)
	assert.Nil(t, base.Leader)
	players, err := m.Players()
	require.NoError(t, err)
	assert.Empty(t, players)
	refs, err := m.RefWeights()
	require.NoError(t, err)
	assert.Empty(t, refs)

	one := uint64(1)
	snap, err := m.GetSnapshot(&one)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(200), snap.Pool.Total)
	assert.Equal(t, uint256.NewInt(200), snap.Pool.Rewards)
	assert.Equal(t, &Leader{Address: addr(1), Points: 6}, snap.Leader)
	assert.Len(t, snap.Accounts, 2)
	assert.Len(t, snap.Players, 2)
	assert.Equal(t, []RefWeight{{Address: addr(7), Weight: 2}}, snap.Referrals)

	live, err := m.GetSnapshot(nil)
	require.NoError(t, err)
	assert.Empty(t, live.Players)
}

func TestSnapshotRetention(t *testing.T) {
	m := New(newDB(t))
	require.NoError(t, m.Initialize(0, 10, 20))

	for range 11 {
		base, err := m.Base()
		require.NoError(t, err)
		_, err = m.Restart(base.Pool.End+1, 10, 5)
		require.NoError(t, err)
	}
	idx, err := m.Index()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), idx)

	for i := uint64(1); i <= 11; i++ {
		_, err := m.GetSnapshot(&i)
		if i == 1 {
			assert.ErrorIs(t, err, ErrSnapshotNotFound)
		} else {
			assert.NoError(t, err, "round %d", i)
		}
	}
	current := idx
	_, err = m.EncodedSnapshot(&current)
	assert.ErrorIs(t, err, ErrSnapshotNotFound, "the live round is not archived yet")
}

func TestSnapshotEncoding(t *testing.T) {
	m := newMachine(t, 2)
	require.NoError(t, m.IncreaseRef(addr(5)))
	require.NoError(t, m.Play(10, addr(1), HitAction(addr(2)), rules))

	raw, err := m.Snapshot()
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	live, err := m.Live()
	require.NoError(t, err)
	assert.Equal(t, live, decoded)
}

func TestCheckLeader(t *testing.T) {
	a, b := addr(1), addr(2)

	assert.Equal(t, &Leader{a, 0}, CheckLeader(nil, a, 0))
	assert.Equal(t, &Leader{a, 5}, CheckLeader(&Leader{a, 5}, b, 5))
	assert.Equal(t, &Leader{b, 6}, CheckLeader(&Leader{a, 5}, b, 6))
	assert.Equal(t, &Leader{a, 7}, CheckLeader(&Leader{a, 5}, a, 7))
}

func TestRescanLeader(t *testing.T) {
	assert.Nil(t, RescanLeader(nil))
	players := []*Player{
		{Address: addr(1), Points: 3},
		{Address: addr(2), Points: 9},
		{Address: addr(3), Points: 9},
		{Address: addr(4), Points: 0},
	}
	assert.Equal(t, &Leader{addr(2), 9}, RescanLeader(players))
}

func TestApplyPoints(t *testing.T) {
	tests := []struct {
		points uint64
		delta  int64
		want   uint64
	}{
		{0, 6, 6},
		{6, -4, 2},
		{2, -4, 0},
		{0, math.MinInt64, 0},
		{math.MaxInt64 - 1, 2, math.MaxInt64},
		{math.MaxInt64, math.MaxInt64, math.MaxInt64},
		{math.MaxInt64, math.MinInt64, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, applyPoints(tt.points, tt.delta), "%d%+d", tt.points, tt.delta)
	}
}

func TestActionKindText(t *testing.T) {
	for _, k := range []ActionKind{Keep, Hit, Help} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back ActionKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	var k ActionKind
	assert.Error(t, k.UnmarshalText([]byte("rug")))
}
