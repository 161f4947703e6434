// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package receipt describes the outbound effects of a contract call. The
// host carries out the transfers once the call's state changes are committed.
package receipt

import (
	"fmt"

	"github.com/wenruji/decaygame/types"
)

// Transfer sends coins to an address.
type Transfer struct {
	To    types.Address `json:"to"`
	Coins types.Coins   `json:"coins"`
}

type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an observable record of a call, e.g. "hitnrug/join".
type Event struct {
	Type  string `json:"type"`
	Attrs []Attr `json:"attrs,omitempty"`
}

// NewEvent builds an event from key/value pairs.
func NewEvent(typ string, kvs ...any) Event {
	ev := Event{Type: typ}
	for i := 0; i+1 < len(kvs); i += 2 {
		ev.Attrs = append(ev.Attrs, Attr{Key: fmt.Sprint(kvs[i]), Value: fmt.Sprint(kvs[i+1])})
	}
	return ev
}

// Attr returns the value of key, or "" if absent.
func (e Event) Attr(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

type Receipt struct {
	Transfers []Transfer `json:"transfers,omitempty"`
	Events    []Event    `json:"events,omitempty"`
}

// Send appends a transfer. Empty coin lists are skipped.
func (r *Receipt) Send(to types.Address, coins types.Coins) *Receipt {
	if !coins.IsZero() {
		r.Transfers = append(r.Transfers, Transfer{To: to, Coins: coins})
	}
	return r
}

func (r *Receipt) Emit(ev Event) *Receipt {
	r.Events = append(r.Events, ev)
	return r
}

// Merge appends the effects of other.
func (r *Receipt) Merge(other *Receipt) *Receipt {
	if other != nil {
		r.Transfers = append(r.Transfers, other.Transfers...)
		r.Events = append(r.Events, other.Events...)
	}
	return r
}

// Sent sums the coins sent to addr.
func (r *Receipt) Sent(addr types.Address) (types.Coins, error) {
	var coins types.Coins
	for _, t := range r.Transfers {
		if t.To == addr {
			coins = append(coins, t.Coins...)
		}
	}
	return coins.Normalize()
}
