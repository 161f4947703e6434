// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package game

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/decay"
	"github.com/wenruji/decaygame/storage"
	"github.com/wenruji/decaygame/types"
)

// Live collects the state of the current round.
func (m *Machine) Live() (*Snapshot, error) {
	base, err := m.Base()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Pool:   base.Pool,
		Leader: base.Leader,
	}
	if err := m.accounts.Iterate(func(addr types.Address, acc *decay.Account) (bool, error) {
		snap.Accounts = append(snap.Accounts, AccountEntry{Address: addr, Account: *acc})
		return true, nil
	}); err != nil {
		return nil, err
	}
	if err := m.players.Iterate(func(_ types.Address, p *Player) (bool, error) {
		snap.Players = append(snap.Players, *p)
		return true, nil
	}); err != nil {
		return nil, err
	}
	if snap.Referrals, err = m.RefWeights(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Snapshot returns the encoded state of the current round.
func (m *Machine) Snapshot() ([]byte, error) {
	snap, err := m.Live()
	if err != nil {
		return nil, err
	}
	raw, err := rlp.EncodeToBytes(snap)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	metricSnapshotSize().ObserveWithLabels(int64(len(raw)), map[string]string{"kind": "live"})
	return raw, nil
}

// EncodedSnapshot returns the stored snapshot of round idx, or the live
// round when idx is nil.
func (m *Machine) EncodedSnapshot(idx *uint64) ([]byte, error) {
	if idx == nil {
		return m.Snapshot()
	}
	raw, ok, err := m.snapshots.MayGet(storage.Uint64Key(*idx))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrSnapshotNotFound, "round %d", *idx)
	}
	return raw, nil
}

// GetSnapshot is EncodedSnapshot, decoded.
func (m *Machine) GetSnapshot(idx *uint64) (*Snapshot, error) {
	if idx == nil {
		return m.Live()
	}
	raw, err := m.EncodedSnapshot(idx)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(raw)
}

func DecodeSnapshot(raw []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := rlp.DecodeBytes(raw, &snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snap, nil
}
