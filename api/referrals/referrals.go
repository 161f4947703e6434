// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package referrals

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wenruji/decaygame/api/utils"
	"github.com/wenruji/decaygame/builtin/referral"
	"github.com/wenruji/decaygame/types"
)

type Referrals struct {
	contract *referral.Referral
}

func New(contract *referral.Referral) *Referrals {
	return &Referrals{contract}
}

// User is what the registry knows about one address.
type User struct {
	Code     string          `json:"code,omitempty"`
	Referrer *types.Address  `json:"referrer"`
	Referees []types.Address `json:"referees"`
}

func (r *Referrals) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	pending, err := r.contract.PendingRewards(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertCoins(pending))
}

func (r *Referrals) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	var user User
	if user.Code, err = r.contract.CodeOf(addr); err != nil {
		return err
	}
	if user.Referrer, err = r.contract.ReferrerOf(addr); err != nil {
		return err
	}
	if user.Referees, err = r.contract.Referees(addr); err != nil {
		return err
	}
	if user.Referees == nil {
		user.Referees = []types.Address{}
	}
	return utils.WriteJSON(w, &user)
}

func (r *Referrals) handleGetCode(w http.ResponseWriter, req *http.Request) error {
	addr, err := r.contract.AddrOf(mux.Vars(req)["code"])
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"address": addr})
}

func (r *Referrals) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg, err := r.contract.Config()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, cfg)
}

func (r *Referrals) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/rewards/{address}").
		Methods(http.MethodGet).
		Name("referral_get_rewards").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRewards))
	sub.Path("/users/{address}").
		Methods(http.MethodGet).
		Name("referral_get_user").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetUser))
	sub.Path("/codes/{code}").
		Methods(http.MethodGet).
		Name("referral_get_code").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetCode))
	sub.Path("/config").
		Methods(http.MethodGet).
		Name("referral_get_config").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetConfig))
}
