// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wenruji/decaygame/log"
)

// mockLogger records the level and context of each record.
type mockLogger struct {
	levels []string
	ctx    []any
}

func (m *mockLogger) record(level string, ctx []any) {
	m.levels = append(m.levels, level)
	m.ctx = append(m.ctx, ctx...)
}

func (m *mockLogger) With(_ ...any) log.Logger  { return m }
func (m *mockLogger) Trace(_ string, _ ...any)  {}
func (m *mockLogger) Debug(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any)  {}
func (m *mockLogger) Crit(_ string, _ ...any)   {}
func (m *mockLogger) Info(_ string, ctx ...any) { m.record("info", ctx) }
func (m *mockLogger) Warn(_ string, ctx ...any) { m.record("warn", ctx) }

func TestRequestLoggerMiddleware(t *testing.T) {
	fast := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		want      []string
	}{
		{"enabled", fast, true, 0, []string{"info"}},
		{"disabled", fast, false, 0, nil},
		{"fast under threshold", fast, false, time.Second, nil},
		{"slow over threshold", slow, false, 5 * time.Millisecond, []string{"warn"}},
		{"slow and enabled", slow, true, 5 * time.Millisecond, []string{"warn"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.threshold)(tt.handler)
			req := httptest.NewRequest(http.MethodGet, "/hitnrug/status?idx=1", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, tt.want, logger.levels)
			if tt.want == nil {
				return
			}
			assert.Contains(t, logger.ctx, "/hitnrug/status?idx=1")
			assert.Contains(t, logger.ctx, http.MethodGet)
			assert.Contains(t, logger.ctx, http.StatusNotFound)
		})
	}
}
