// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/wenruji/decaygame/log"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLoggerMiddleware logs every request at info level while enabled is
// set. Requests slower than slowQueriesThreshold are logged at warn level
// either way; a zero threshold turns that off.
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verbose := enabled.Load()
			if !verbose && slowQueriesThreshold == 0 {
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			ctx := []any{
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", sw.status,
				"durationMs", duration.Milliseconds(),
			}
			switch {
			case slowQueriesThreshold > 0 && duration > slowQueriesThreshold:
				logger.Warn("slow API request", ctx...)
			case verbose:
				logger.Info("API request", ctx...)
			}
		})
	}
}
