// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vaults

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wenruji/decaygame/api/utils"
	"github.com/wenruji/decaygame/builtin/vault"
	"github.com/wenruji/decaygame/decay"
)

type Vaults struct {
	contract *vault.Vault
}

func New(contract *vault.Vault) *Vaults {
	return &Vaults{contract}
}

type Status struct {
	Pool      *decay.Pool  `json:"pool"`
	Donations []utils.Coin `json:"donations"`
}

type Account struct {
	Joined    bool   `json:"joined"`
	Exited    bool   `json:"exited"`
	RefWeight uint64 `json:"refWeight"`
	Admin     bool   `json:"admin"`
}

func (v *Vaults) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	pool, err := v.contract.GameStatus()
	if err != nil {
		return err
	}
	donations, err := v.contract.Donations()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Status{pool, utils.ConvertCoins(donations)})
}

func (v *Vaults) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	var acc Account
	if acc.Joined, err = v.contract.HasJoined(addr); err != nil {
		return err
	}
	if acc.Joined {
		if acc.Exited, err = v.contract.HasExited(addr); err != nil {
			return err
		}
	}
	if acc.RefWeight, err = v.contract.RefWeight(addr); err != nil {
		return err
	}
	if acc.Admin, err = v.contract.IsAdmin(addr); err != nil {
		return err
	}
	return utils.WriteJSON(w, &acc)
}

func (v *Vaults) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg, err := v.contract.Config()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, cfg)
}

func (v *Vaults) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").
		Methods(http.MethodGet).
		Name("vault_get_status").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetStatus))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("vault_get_account").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetAccount))
	sub.Path("/config").
		Methods(http.MethodGet).
		Name("vault_get_config").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetConfig))
}
