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

package protocol

import (
	"context"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/datum"
	"github.com/blinklabs-io/kiln/derive"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/plutigo/data"
)

// PlanProduct builds the plan that creates a product under the given
// factory. It consumes the factory's live UTxO, mints one product token
// under the factory policy with the product ID as asset name, re-locks the
// updated registry at the factory address and locks the tag at the derived
// product address. The plan is pinned to the factory UTxO observed here;
// if another product creation lands first, submission fails and the caller
// rebuilds from fresh state.
func (p *Protocol) PlanProduct(
	ctx context.Context,
	factory Factory,
	productId []byte,
	tag []byte,
) (*ledger.Plan, error) {
	state, factoryUtxo, err := p.FactoryState(ctx, factory)
	if err != nil {
		return nil, err
	}
	if state.Contains(productId) {
		return nil, DuplicateProductIdError{ProductId: productId}
	}
	product, err := ProductIdentity(
		p.deriver,
		factory.Owner,
		factory.MarkerHash,
		productId,
	)
	if err != nil {
		return nil, err
	}
	factoryDatum, err := datum.CommonDatum(state.WithProduct(productId))
	if err != nil {
		return nil, err
	}
	productDatum, err := datum.CommonDatum(datum.ProductDatum{Tag: tag})
	if err != nil {
		return nil, err
	}
	plan := &ledger.Plan{
		Inputs: []ledger.PlanInput{
			{
				Ref:      factoryUtxo.Ref,
				Script:   factory.Script,
				Redeemer: data.NewConstr(0, data.NewByteString(productId)),
			},
		},
		Mints: []ledger.PlanMint{
			{
				PolicyId:  factory.ScriptHash,
				AssetName: productId,
				Quantity:  1,
				Script:    factory.Script,
				Redeemer:  data.NewConstr(1, data.NewByteString(productId)),
			},
		},
		Outputs: []ledger.PlanOutput{
			{
				Address: factory.Address,
				Amount:  factoryUtxo.Amount,
				Assets:  factoryUtxo.Assets,
				Datum:   factoryDatum,
			},
			{
				Address: product.Address,
				Assets: singleAsset(
					factory.ScriptHash,
					productId,
					1,
				),
				Datum: productDatum,
			},
		},
		RequiredSigner: factory.Owner,
	}
	return plan, nil
}

// CreateProduct plans, signs and submits a product creation. A lost race
// for the factory UTxO surfaces as SubmissionRejectedError; the caller may
// simply call CreateProduct again, which rebuilds from refreshed state.
func (p *Protocol) CreateProduct(
	ctx context.Context,
	signer ledger.Signer,
	factory Factory,
	productId []byte,
	tag []byte,
) (derive.Derivation, common.Blake2b256, error) {
	plan, err := p.PlanProduct(ctx, factory, productId, tag)
	if err != nil {
		return derive.Derivation{}, common.Blake2b256{}, err
	}
	txId, err := p.SubmitProduct(ctx, signer, plan)
	if err != nil {
		return derive.Derivation{}, common.Blake2b256{}, err
	}
	product, err := ProductIdentity(
		p.deriver,
		factory.Owner,
		factory.MarkerHash,
		productId,
	)
	if err != nil {
		return derive.Derivation{}, common.Blake2b256{}, err
	}
	return product, txId, nil
}

// SubmitProduct signs and submits a previously-built product plan
func (p *Protocol) SubmitProduct(
	ctx context.Context,
	signer ledger.Signer,
	plan *ledger.Plan,
) (common.Blake2b256, error) {
	return p.submit(
		ctx,
		plan,
		signer,
		SubmissionRejectedError{Err: ledger.ErrUtxoSpent},
	)
}

// ProductTag reads the tag from a product's live UTxO
func (p *Protocol) ProductTag(
	ctx context.Context,
	factory Factory,
	productId []byte,
) ([]byte, error) {
	product, err := ProductIdentity(
		p.deriver,
		factory.Owner,
		factory.MarkerHash,
		productId,
	)
	if err != nil {
		return nil, err
	}
	utxos, err := p.ledger.UtxosByAddress(ctx, product.Address)
	if err != nil {
		return nil, err
	}
	for _, utxo := range utxos {
		if utxo.Datum == nil {
			continue
		}
		productDatum, err := datum.ProductDatumFromDatum(utxo.Datum)
		if err != nil {
			return nil, err
		}
		return productDatum.Tag, nil
	}
	return nil, StateNotFoundError{
		What: "product " + product.ScriptHash.String(),
	}
}
