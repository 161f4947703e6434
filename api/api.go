// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"github.com/wenruji/decaygame/api/middleware"
	"github.com/wenruji/decaygame/api/referrals"
	"github.com/wenruji/decaygame/api/rounds"
	"github.com/wenruji/decaygame/api/vaults"
	"github.com/wenruji/decaygame/builtin/hitnrug"
	"github.com/wenruji/decaygame/builtin/referral"
	"github.com/wenruji/decaygame/builtin/vault"
	"github.com/wenruji/decaygame/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	SnapshotCacheSize    int
}

// Contracts are the contracts served. A nil contract is not mounted.
type Contracts struct {
	Referral *referral.Referral
	HitNRug  *hitnrug.HitNRug
	Vault    *vault.Vault
}

// New return api router
func New(contracts Contracts, clock clockwork.Clock, opts Options) (http.HandlerFunc, error) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	if contracts.HitNRug != nil {
		size := opts.SnapshotCacheSize
		if size <= 0 {
			size = 16
		}
		r, err := rounds.New(contracts.HitNRug, clock, size)
		if err != nil {
			return nil, err
		}
		r.Mount(router, "/hitnrug")
	}
	if contracts.Referral != nil {
		referrals.New(contracts.Referral).
			Mount(router, "/referral")
	}
	if contracts.Vault != nil {
		vaults.New(contracts.Vault).
			Mount(router, "/vault")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	var reqLoggerEnabled atomic.Bool
	reqLoggerEnabled.Store(opts.EnableReqLogger)
	router.Use(middleware.RequestLoggerMiddleware(logger, &reqLoggerEnabled, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, nil
}
