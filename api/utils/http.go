// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/wenruji/decaygame/reverts"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// statusOf maps an error onto a status code. Reverts are the caller's fault:
// a missing record is 404, any other rejection is 400.
func statusOf(err error) (int, error) {
	var he *httpError
	if errors.As(err, &he) {
		return he.status, he.cause
	}
	if reverts.IsRevertErr(err) {
		if reverts.KindOf(err) == reverts.KindNotFound {
			return http.StatusNotFound, err
		}
		return http.StatusBadRequest, err
	}
	return http.StatusInternalServerError, err
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// The error is mapped onto the response status, see statusOf.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status, cause := statusOf(err)
		if cause != nil {
			http.Error(w, cause.Error(), status)
		} else {
			w.WriteHeader(status)
		}
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any
