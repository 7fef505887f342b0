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

// Package protocol implements the factory lifecycle: one-shot factory
// creation from a spendable seed, product creation under a factory, and
// reads of factory and product state. Each factory is a chain of single
// live UTxOs; contention over them resolves at the ledger and callers
// retry against refreshed state.
package protocol

import (
	"context"
	"errors"
	"math/big"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/datum"
	"github.com/blinklabs-io/kiln/derive"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/kiln/params"
)

// Template names resolved against the blueprint store
const (
	TemplateFactoryMarker = "factory_marker"
	TemplateFactory       = "factory"
	TemplateProduct       = "product"
)

// DefaultMarkerAssetName is the asset name for the factory marker token
const DefaultMarkerAssetName = "factory"

// RegisterSchemas declares the parameter schemas for the three validator
// templates on the given deriver
func RegisterSchemas(d *derive.Deriver) {
	d.RegisterSchema(
		TemplateFactoryMarker,
		[]params.Kind{params.KindHash, params.KindOutputRef},
	)
	d.RegisterSchema(
		TemplateFactory,
		[]params.Kind{params.KindHash, params.KindHash},
	)
	d.RegisterSchema(
		TemplateProduct,
		[]params.Kind{params.KindHash, params.KindHash, params.KindBytes},
	)
}

// MarkerIdentity derives the factory marker minting policy for an owner and
// seed pair
func MarkerIdentity(
	d *derive.Deriver,
	owner common.Blake2b224,
	seed ledger.OutputRef,
) (derive.Derivation, error) {
	return d.Derive(
		TemplateFactoryMarker,
		params.List{
			params.Hash(owner),
			params.OutputRef(seed),
		},
	)
}

// FactoryIdentity derives the factory script for an owner and marker pair.
// The factory script hash is both the factory address credential and the
// minting policy for product tokens.
func FactoryIdentity(
	d *derive.Deriver,
	owner common.Blake2b224,
	marker common.Blake2b224,
) (derive.Derivation, error) {
	return d.Derive(
		TemplateFactory,
		params.List{
			params.Hash(owner),
			params.Hash(marker),
		},
	)
}

// ProductIdentity derives the product script for a given factory and
// product ID
func ProductIdentity(
	d *derive.Deriver,
	owner common.Blake2b224,
	marker common.Blake2b224,
	productId []byte,
) (derive.Derivation, error) {
	return d.Derive(
		TemplateProduct,
		params.List{
			params.Hash(owner),
			params.Hash(marker),
			params.Bytes(productId),
		},
	)
}

// Factory is the derived identity of a single factory instance. Everything
// here is recomputable from the owner and seed; nothing is read from the
// ledger.
type Factory struct {
	Owner      common.Blake2b224
	Seed       ledger.OutputRef
	MarkerHash common.Blake2b224
	ScriptHash common.Blake2b224
	Address    common.Address
	Script     common.PlutusV3Script
}

// Protocol drives factory and product transitions against a ledger gateway
type Protocol struct {
	deriver         *derive.Deriver
	ledger          ledger.Ledger
	markerAssetName []byte
}

// ProtocolOptionFunc configures a Protocol during construction
type ProtocolOptionFunc func(*Protocol)

// WithMarkerAssetName overrides the marker token asset name
func WithMarkerAssetName(name []byte) ProtocolOptionFunc {
	return func(p *Protocol) {
		p.markerAssetName = name
	}
}

// New creates a Protocol from a deriver and ledger gateway. The deriver's
// template schemas are registered as a side effect.
func New(
	deriver *derive.Deriver,
	lgr ledger.Ledger,
	options ...ProtocolOptionFunc,
) *Protocol {
	p := &Protocol{
		deriver:         deriver,
		ledger:          lgr,
		markerAssetName: []byte(DefaultMarkerAssetName),
	}
	for _, option := range options {
		option(p)
	}
	RegisterSchemas(deriver)
	return p
}

// Factory derives the full factory identity for an owner and seed pair
func (p *Protocol) Factory(
	owner common.Blake2b224,
	seed ledger.OutputRef,
) (Factory, error) {
	marker, err := MarkerIdentity(p.deriver, owner, seed)
	if err != nil {
		return Factory{}, err
	}
	factory, err := FactoryIdentity(p.deriver, owner, marker.ScriptHash)
	if err != nil {
		return Factory{}, err
	}
	return Factory{
		Owner:      owner,
		Seed:       seed,
		MarkerHash: marker.ScriptHash,
		ScriptHash: factory.ScriptHash,
		Address:    factory.Address,
		Script:     factory.Script,
	}, nil
}

// FactoryState returns the factory's live UTxO and decoded registry. The
// live UTxO is the one at the factory address carrying the marker token.
func (p *Protocol) FactoryState(
	ctx context.Context,
	factory Factory,
) (datum.FactoryDatum, ledger.Utxo, error) {
	utxos, err := p.ledger.UtxosByAddress(ctx, factory.Address)
	if err != nil {
		return datum.FactoryDatum{}, ledger.Utxo{}, err
	}
	for _, utxo := range utxos {
		if !utxo.HasAsset(factory.MarkerHash, p.markerAssetName) {
			continue
		}
		state, err := datum.FactoryDatumFromDatum(utxo.Datum)
		if err != nil {
			return datum.FactoryDatum{}, ledger.Utxo{}, err
		}
		return state, utxo, nil
	}
	return datum.FactoryDatum{}, ledger.Utxo{}, StateNotFoundError{
		What: "factory " + factory.ScriptHash.String(),
	}
}

// submit signs and submits a plan, translating gateway failures into
// protocol errors. inputConflict supplies the error for a lost input race.
func (p *Protocol) submit(
	ctx context.Context,
	plan *ledger.Plan,
	signer ledger.Signer,
	inputConflict error,
) (common.Blake2b256, error) {
	pubKey, err := plan.Sign(signer)
	if err != nil {
		return common.Blake2b256{}, AuthorizationFailedError{
			Reason: err.Error(),
		}
	}
	if common.Blake2b224Hash(pubKey) != plan.RequiredSigner {
		return common.Blake2b256{}, AuthorizationFailedError{
			Reason: "signing key does not match required signer",
		}
	}
	txId, err := p.ledger.Submit(ctx, plan)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrMissingSignature),
			errors.Is(err, ledger.ErrInvalidSignature):
			return common.Blake2b256{}, AuthorizationFailedError{
				Reason: err.Error(),
			}
		case errors.Is(err, ledger.ErrUtxoSpent),
			errors.Is(err, ledger.ErrUtxoNotFound):
			return common.Blake2b256{}, inputConflict
		default:
			return common.Blake2b256{}, SubmissionRejectedError{Err: err}
		}
	}
	return txId, nil
}

// singleAsset builds a one-entry asset bundle
func singleAsset(
	policyId common.Blake2b224,
	name []byte,
	amount int64,
) *common.MultiAsset[common.MultiAssetTypeOutput] {
	ret := common.NewMultiAsset[common.MultiAssetTypeOutput](
		map[common.Blake2b224]map[cbor.ByteString]common.MultiAssetTypeOutput{
			policyId: {
				cbor.NewByteString(name): big.NewInt(amount),
			},
		},
	)
	return &ret
}
