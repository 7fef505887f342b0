// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ledger defines the narrow gateway interface the protocol core uses
// to observe and mutate chain state, along with the transaction plan type it
// submits. The package also provides an in-process implementation that
// enforces the single-spend rule, used by tests and the local simulator.
package ledger

import (
	"context"
	"errors"

	"github.com/blinklabs-io/gouroboros/ledger/common"
)

var (
	// ErrUtxoNotFound is returned when a referenced UTxO does not exist
	ErrUtxoNotFound = errors.New("utxo not found")

	// ErrUtxoSpent is returned when a referenced UTxO has already been
	// consumed. Submissions failing with this error lost a race for the
	// input and may be retried after refreshing state
	ErrUtxoSpent = errors.New("utxo already spent")

	// ErrMissingSignature is returned when a submission lacks a vkey
	// witness for its required signer
	ErrMissingSignature = errors.New("missing required signature")

	// ErrInvalidSignature is returned when a provided vkey witness does
	// not verify against the transaction hash
	ErrInvalidSignature = errors.New("invalid signature")
)

// Ledger is the gateway to chain state. Implementations are expected to
// resolve queries against their current view and to accept or reject
// submitted plans atomically.
type Ledger interface {
	// UtxoByRef returns the unspent output for the given reference
	UtxoByRef(ctx context.Context, ref OutputRef) (Utxo, error)
	// UtxosByAddress returns all unspent outputs at the given address
	UtxosByAddress(ctx context.Context, addr common.Address) ([]Utxo, error)
	// AssetsByPolicy returns the assets ever minted under the given policy.
	// No ordering is guaranteed
	AssetsByPolicy(
		ctx context.Context,
		policyId common.Blake2b224,
	) ([]Asset, error)
	// Submit atomically applies a plan, consuming its inputs and producing
	// its outputs, and returns the new transaction ID
	Submit(ctx context.Context, plan *Plan) (common.Blake2b256, error)
}

// Signer produces a vkey witness over a message. Key management lives
// outside this module; the protocol only needs a signature and the
// corresponding public key.
type Signer interface {
	Sign(message []byte) (pubKey []byte, signature []byte, err error)
}
