// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies why an operation was rejected.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindTemporal: the round is not in the right phase yet, or any more.
	KindTemporal
	// KindConflict: the request clashes with existing state.
	KindConflict
	// KindAuthorization: the caller or target is not allowed.
	KindAuthorization
	// KindArithmetic: a monetary counter would overflow.
	KindArithmetic
	KindNotFound
	// KindInvalid: malformed input, bad payment or bad config.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTemporal:
		return "temporal"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindArithmetic:
		return "arithmetic"
	case KindNotFound:
		return "not-found"
	case KindInvalid:
		return "invalid"
	}
	return "unknown"
}

// ErrRevert rejects an operation without touching state.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the first revert in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return KindUnknown
}

// Shared by more than one package.
var (
	ErrOverflow = New(KindArithmetic, "amount overflow")
	ErrNotFound = New(KindNotFound, "not found")
)
