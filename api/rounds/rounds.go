// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rounds

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/api/utils"
	"github.com/wenruji/decaygame/builtin/hitnrug"
	"github.com/wenruji/decaygame/cache"
	"github.com/wenruji/decaygame/game"
	"github.com/wenruji/decaygame/types"
)

// Rounds serves the hit'n'rug round state.
type Rounds struct {
	contract *hitnrug.HitNRug
	clock    clockwork.Clock
	archive  *cache.LRU[uint64, *game.Snapshot]
}

// New creates the handlers. Archived rounds never change, up to cacheSize of
// them are kept decoded.
func New(contract *hitnrug.HitNRug, clock clockwork.Clock, cacheSize int) (*Rounds, error) {
	archive, err := cache.NewLRU[uint64, *game.Snapshot]("snapshots", cacheSize)
	if err != nil {
		return nil, err
	}
	return &Rounds{contract, clock, archive}, nil
}

// Status is a round snapshot with its phase at request time. Phase is only
// set for the live round.
type Status struct {
	Index uint64 `json:"index"`
	Phase string `json:"phase,omitempty"`
	*game.Snapshot
}

func (r *Rounds) snapshot(idx *uint64) (*game.Snapshot, error) {
	if idx == nil {
		return r.contract.GameStatus(nil)
	}
	return r.archive.GetOrLoad(*idx, func(idx uint64) (*game.Snapshot, error) {
		return r.contract.GameStatus(&idx)
	})
}

func (r *Rounds) handleGetStatus(w http.ResponseWriter, req *http.Request) error {
	idx, err := utils.ParseRound(req.URL.Query().Get("idx"))
	if err != nil {
		return utils.BadRequest(err)
	}
	snap, err := r.snapshot(idx)
	if err != nil {
		return err
	}
	status := &Status{Snapshot: snap}
	if idx != nil {
		status.Index = *idx
		return utils.WriteJSON(w, status)
	}
	if status.Index, err = r.contract.GameIndex(); err != nil {
		return err
	}
	phase, err := r.contract.Game().Phase(types.Now(r.clock.Now()))
	if err != nil {
		return err
	}
	status.Phase = phase.String()
	return utils.WriteJSON(w, status)
}

func (r *Rounds) handleGetRawSnapshot(w http.ResponseWriter, req *http.Request) error {
	idx, err := utils.ParseRound(mux.Vars(req)["idx"])
	if err != nil {
		return utils.BadRequest(err)
	}
	raw, err := r.contract.Game().EncodedSnapshot(idx)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"raw": hexutil.Encode(raw)})
}

func (r *Rounds) handleGetIndex(w http.ResponseWriter, _ *http.Request) error {
	idx, err := r.contract.GameIndex()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"index": idx})
}

func (r *Rounds) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg, err := r.contract.Config()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, cfg)
}

func (r *Rounds) handleGetPlayer(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	player, err := r.contract.Game().Player(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, player)
}

func (r *Rounds) handleGetLeader(w http.ResponseWriter, _ *http.Request) error {
	leader, err := r.contract.Game().Leader()
	if err != nil {
		return err
	}
	if leader == nil {
		return utils.NotFound(errors.New("no leader"))
	}
	return utils.WriteJSON(w, leader)
}

func (r *Rounds) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").
		Methods(http.MethodGet).
		Name("hitnrug_get_status").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetStatus))
	sub.Path("/snapshots/{idx}").
		Methods(http.MethodGet).
		Name("hitnrug_get_snapshot").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRawSnapshot))
	sub.Path("/index").
		Methods(http.MethodGet).
		Name("hitnrug_get_index").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetIndex))
	sub.Path("/config").
		Methods(http.MethodGet).
		Name("hitnrug_get_config").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetConfig))
	sub.Path("/players/{address}").
		Methods(http.MethodGet).
		Name("hitnrug_get_player").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetPlayer))
	sub.Path("/leader").
		Methods(http.MethodGet).
		Name("hitnrug_get_leader").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetLeader))
}
