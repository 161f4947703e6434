// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noop is the backend until prometheus is initialized. Every meter it hands
// out discards what it is given.
type noop struct{}

func defaultNoopMetrics() Metrics { return noop{} }

func (noop) GetOrCreateCountMeter(string) CountMeter                 { return discard{} }
func (noop) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return discard{} }
func (noop) GetOrCreateGaugeMeter(string) GaugeMeter                 { return discard{} }

func (noop) GetOrCreateHistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return discard{}
}

// GetOrCreateHandler serves an empty page so /metrics can always be mounted.
func (noop) GetOrCreateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type discard struct{}

func (discard) ObserveWithLabels(int64, map[string]string) {}
func (discard) AddWithLabel(int64, map[string]string)      {}
func (discard) Add(int64)                                  {}
func (discard) Set(int64)                                  {}
