// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hitnrug

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenruji/decaygame/builtin/referral"
	"github.com/wenruji/decaygame/decay"
	"github.com/wenruji/decaygame/game"
	"github.com/wenruji/decaygame/kv"
	"github.com/wenruji/decaygame/lvldb"
	"github.com/wenruji/decaygame/types"
)

var (
	self     = types.BytesToAddress([]byte("hitnrug"))
	owner    = types.BytesToAddress([]byte("owner"))
	platform = types.BytesToAddress([]byte("platform"))
	refAddr  = types.BytesToAddress([]byte("referral"))
	alice    = types.BytesToAddress([]byte("alice"))
	bob      = types.BytesToAddress([]byte("bob"))
	carol    = types.BytesToAddress([]byte("carol"))
	dave     = types.BytesToAddress([]byte("dave"))
)

func ticket(amount uint64) types.Coins {
	return types.Coins{types.NewCoin64("uusdc", amount)}
}

func instantiateMsg() *InstantiateMsg {
	return &InstantiateMsg{
		Owner:            owner,
		TicketDenom:      "uusdc",
		TicketAmount:     uint256.NewInt(1000),
		StartsAt:         100,
		DurationSeconds:  100,
		GameDelaySeconds: 10,
		PlayDelaySeconds: 5,
		Fees: Fees{
			Platform: Fee{Address: platform, Share: types.Percent(10)},
			Referral: Fee{Address: refAddr, Share: types.Percent(20)},
		},
		Points: Points{Keep: 6, Hit: -4, Help: HelpPoint{Self: 6, Other: 4}},
	}
}

type fixture struct {
	h   *HitNRug
	ref *referral.Referral
}

func newDB(t *testing.T) *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newFixture(t *testing.T) *fixture {
	db := newDB(t)

	ref := referral.New(kv.Bucket("referral/").NewStore(db))
	require.NoError(t, ref.Instantiate(&referral.Config{Owner: owner, Contracts: []types.Address{self}}))
	h := New(self, kv.Bucket("hitnrug/").NewStore(db), ref)
	_, err := h.Instantiate(0, instantiateMsg())
	require.NoError(t, err)
	return &fixture{h, ref}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(instantiateMsg())
	require.NoError(t, err)
	assert.Equal(t, types.Percent(70), cfg.WinnerShare)
	assert.NoError(t, cfg.Validate())

	msg := instantiateMsg()
	msg.Fees.Platform.Share = types.Percent(90)
	msg.Fees.Referral.Share = types.Percent(15)
	_, err = NewConfig(msg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	msg = instantiateMsg()
	msg.Fees.Referral.Share = types.Percent(90)
	_, err = NewConfig(msg)
	assert.ErrorIs(t, err, ErrInvalidConfig, "fees equal to the whole pot")

	for name, mutate := range map[string]func(*InstantiateMsg){
		"owner":    func(m *InstantiateMsg) { m.Owner = types.Address{} },
		"denom":    func(m *InstantiateMsg) { m.TicketDenom = "" },
		"amount":   func(m *InstantiateMsg) { m.TicketAmount = nil },
		"duration": func(m *InstantiateMsg) { m.DurationSeconds = 0 },
		"delay":    func(m *InstantiateMsg) { m.GameDelaySeconds = 0 },
		"platform": func(m *InstantiateMsg) { m.Fees.Platform.Address = types.Address{} },
	} {
		msg := instantiateMsg()
		mutate(msg)
		cfg, err := NewConfig(msg)
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}

func TestApplyUpdate(t *testing.T) {
	cfg, err := NewConfig(instantiateMsg())
	require.NoError(t, err)

	newOwner := alice
	denom := "uatom"
	duration := uint64(7200)
	err = cfg.ApplyUpdate(&ConfigUpdate{
		Owner:           &newOwner,
		TicketDenom:     &denom,
		TicketAmount:    uint256.NewInt(200),
		DurationSeconds: &duration,
		Fees: &Fees{
			Platform: Fee{Address: platform, Share: types.Percent(2)},
			Referral: Fee{Address: refAddr, Share: types.Percent(3)},
		},
		Points: &Points{Keep: 10, Hit: -5, Help: HelpPoint{Self: 10, Other: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, alice, cfg.Owner)
	assert.Equal(t, "uatom", cfg.TicketDenom)
	assert.Equal(t, uint256.NewInt(200), cfg.TicketAmount)
	assert.Equal(t, uint64(7200), cfg.DurationSeconds)
	assert.Equal(t, types.Percent(95), cfg.WinnerShare)
	assert.Equal(t, int64(-5), cfg.Points.Hit)

	err = cfg.ApplyUpdate(&ConfigUpdate{Fees: &Fees{
		Platform: Fee{Address: platform, Share: types.Percent(60)},
		Referral: Fee{Address: refAddr, Share: types.Percent(40)},
	}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigRLP(t *testing.T) {
	cfg, err := NewConfig(instantiateMsg())
	require.NoError(t, err)
	cfg.Points.Hit = -9223372036854775808

	raw, err := rlp.EncodeToBytes(cfg)
	require.NoError(t, err)
	var back Config
	require.NoError(t, rlp.DecodeBytes(raw, &back))
	assert.Equal(t, cfg, &back)
}

func TestInstantiate(t *testing.T) {
	f := newFixture(t)

	_, err := f.h.Instantiate(0, instantiateMsg())
	assert.ErrorIs(t, err, ErrAlreadyInstantiated)

	late := New(self, kv.Bucket("late/").NewStore(newDB(t)), f.ref)
	_, err = late.Instantiate(101, instantiateMsg())
	assert.ErrorIs(t, err, decay.ErrInvalidWindow, "starts in the past")
	_, err = late.Instantiate(100, instantiateMsg())
	assert.NoError(t, err, "starts now")

	idx, err := f.h.GameIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)

	status, err := f.h.GameStatus(nil)
	require.NoError(t, err)
	assert.Equal(t, types.Timestamp(100), status.Pool.Start)
	assert.Equal(t, types.Timestamp(200), status.Pool.End)
}

func TestJoin(t *testing.T) {
	f := newFixture(t)

	_, err := f.h.Join(50, alice, ticket(999), "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = f.h.Join(50, alice, types.Coins{types.NewCoin64("uatom", 1000)}, "")
	assert.ErrorIs(t, err, ErrInvalidPayment)
	_, err = f.h.Join(50, alice, append(ticket(1000), types.NewCoin64("uatom", 1)), "")
	assert.ErrorIs(t, err, ErrInvalidPayment)
	_, err = f.h.Join(50, alice, ticket(1000), "nope")
	assert.ErrorIs(t, err, referral.ErrCodeNotFound)

	rcpt, err := f.h.Join(50, alice, ticket(1000), "")
	require.NoError(t, err)
	assert.Equal(t, "hitnrug/join", rcpt.Events[0].Type)
	assert.Equal(t, "", rcpt.Events[0].Attr("ambassador"))

	_, err = f.h.Join(50, alice, ticket(1000), "")
	assert.ErrorIs(t, err, game.ErrAlreadyJoined)
	_, err = f.h.Join(100, bob, ticket(1000), "")
	assert.ErrorIs(t, err, game.ErrRoundStarted)
}

func TestJoinWithReferral(t *testing.T) {
	f := newFixture(t)
	_, err := f.ref.GenCode(dave, "dave")
	require.NoError(t, err)

	rcpt, err := f.h.Join(50, alice, ticket(1000), "dave")
	require.NoError(t, err)
	assert.Equal(t, dave.String(), rcpt.Events[0].Attr("ambassador"))

	// bob was referred earlier, its referrer counts without a code
	_, err = f.ref.AddReferee(self, bob, "dave")
	require.NoError(t, err)
	_, err = f.h.Join(50, bob, ticket(1000), "")
	require.NoError(t, err)

	weights, err := f.h.Game().RefWeights()
	require.NoError(t, err)
	assert.Equal(t, []game.RefWeight{{Address: dave, Weight: 2}}, weights)
}

func TestExitAndPlay(t *testing.T) {
	f := newFixture(t)
	for _, a := range []types.Address{alice, bob, carol} {
		_, err := f.h.Join(50, a, ticket(1000), "")
		require.NoError(t, err)
	}

	_, err := f.h.Exit(99, alice, nil)
	assert.ErrorIs(t, err, game.ErrRoundNotStarted)
	_, err = f.h.Exit(150, alice, ticket(1))
	assert.ErrorIs(t, err, ErrNonPayable)

	rcpt, err := f.h.Exit(150, alice, nil)
	require.NoError(t, err)
	sent, err := rcpt.Sent(alice)
	require.NoError(t, err)
	assert.Equal(t, ticket(500), sent)
	assert.Equal(t, "1/2", rcpt.Events[0].Attr("decay_snap"))

	_, err = f.h.Play(150, alice, nil, game.KeepAction())
	assert.ErrorIs(t, err, decay.ErrAlreadyExited)
	_, err = f.h.Play(150, bob, ticket(1), game.KeepAction())
	assert.ErrorIs(t, err, ErrNonPayable)

	rcpt, err = f.h.Play(150, bob, nil, game.HitAction(carol))
	require.NoError(t, err)
	assert.Equal(t, "hit", rcpt.Events[0].Attr("action"))
	assert.Equal(t, carol.String(), rcpt.Events[0].Attr("target"))

	_, err = f.h.Play(154, bob, nil, game.KeepAction())
	assert.ErrorIs(t, err, game.ErrCooldownActive)
	_, err = f.h.Play(155, bob, nil, game.KeepAction())
	require.NoError(t, err)

	leader, err := f.h.Game().Leader()
	require.NoError(t, err)
	assert.Equal(t, bob, leader.Address)
	assert.Equal(t, uint64(6), leader.Points)
}

func TestEndRoundWithReferrals(t *testing.T) {
	f := newFixture(t)
	_, err := f.ref.GenCode(dave, "dave")
	require.NoError(t, err)
	_, err = f.h.Join(50, alice, ticket(1000), "dave")
	require.NoError(t, err)
	_, err = f.h.Join(50, bob, ticket(1000), "")
	require.NoError(t, err)
	_, err = f.h.Play(150, bob, nil, game.KeepAction())
	require.NoError(t, err)

	_, err = f.h.EndRound(200, nil)
	assert.ErrorIs(t, err, decay.ErrRoundNotEnded)

	rcpt, err := f.h.EndRound(201, nil)
	require.NoError(t, err)

	for addr, want := range map[types.Address]uint64{bob: 1400, platform: 200, refAddr: 400} {
		sent, err := rcpt.Sent(addr)
		require.NoError(t, err)
		assert.Equal(t, ticket(want), sent, addr.String())
	}
	pending, err := f.ref.PendingRewards(dave)
	require.NoError(t, err)
	assert.Equal(t, ticket(400), pending)

	last := rcpt.Events[len(rcpt.Events)-1]
	assert.Equal(t, "hitnrug/endgame", last.Type)
	assert.Equal(t, bob.String(), last.Attr("winner"))
	assert.Equal(t, "6", last.Attr("points"))

	_, err = f.h.EndRound(202, nil)
	assert.ErrorIs(t, err, decay.ErrNoRewards)
}

func TestEndRoundWithoutReferrals(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.Join(50, alice, ticket(1000), "")
	require.NoError(t, err)

	rcpt, err := f.h.EndRound(201, nil)
	require.NoError(t, err)
	sent, err := rcpt.Sent(alice)
	require.NoError(t, err)
	// 70/80 of the pot, the referral share is left out of the split
	assert.Equal(t, ticket(875), sent)
	sent, err = rcpt.Sent(platform)
	require.NoError(t, err)
	assert.Equal(t, ticket(125), sent)
	sent, err = rcpt.Sent(refAddr)
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestRestartAndUpdateConfig(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.Join(50, alice, ticket(1000), "")
	require.NoError(t, err)

	amount := uint64(2000)
	update := &ConfigUpdate{DurationSeconds: &amount}
	_, err = f.h.UpdateConfig(201, alice, update)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.h.UpdateConfig(201, owner, update)
	assert.ErrorIs(t, err, game.ErrRoundNotCompleted)
	_, err = f.h.Restart(201)
	assert.ErrorIs(t, err, game.ErrRoundNotCompleted)

	_, err = f.h.EndRound(201, nil)
	require.NoError(t, err)
	_, err = f.h.UpdateConfig(201, owner, update)
	require.NoError(t, err)

	rcpt, err := f.h.Restart(201)
	require.NoError(t, err)
	ev := rcpt.Events[0]
	assert.Equal(t, "2", ev.Attr("game_idx"))
	assert.Equal(t, "211", ev.Attr("game_starts_at"))
	assert.Equal(t, "2211", ev.Attr("game_ends_at"))

	one := uint64(1)
	snap, err := f.h.GameStatus(&one)
	require.NoError(t, err)
	assert.Len(t, snap.Players, 1)

	_, err = f.h.Join(205, alice, ticket(1000), "")
	require.NoError(t, err, "players join the new round again")
}
