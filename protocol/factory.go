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
	"errors"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/datum"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/plutigo/data"
)

// PlanFactory builds the plan that creates a factory from the given owner
// and seed. The seed must be an unspent output key-locked to the owner; it
// is consumed by the plan, which is what makes the factory identity
// one-shot. The plan mints one marker unit and locks it with an empty
// registry at the factory address.
func (p *Protocol) PlanFactory(
	ctx context.Context,
	factory Factory,
) (*ledger.Plan, error) {
	seedUtxo, err := p.ledger.UtxoByRef(ctx, factory.Seed)
	if err != nil {
		if errors.Is(err, ledger.ErrUtxoSpent) ||
			errors.Is(err, ledger.ErrUtxoNotFound) {
			return nil, SeedAlreadySpentError{Seed: factory.Seed}
		}
		return nil, err
	}
	if seedUtxo.Address.PaymentKeyHash() != factory.Owner {
		return nil, AuthorizationFailedError{
			Reason: "seed is not locked to owner key",
		}
	}
	// A marker mint under this policy means some plan consuming the seed
	// was already accepted
	minted, err := p.ledger.AssetsByPolicy(ctx, factory.MarkerHash)
	if err != nil {
		return nil, err
	}
	if len(minted) > 0 {
		return nil, SeedAlreadySpentError{Seed: factory.Seed}
	}
	marker, err := MarkerIdentity(p.deriver, factory.Owner, factory.Seed)
	if err != nil {
		return nil, err
	}
	factoryDatum, err := datum.CommonDatum(datum.NewFactoryDatum())
	if err != nil {
		return nil, err
	}
	plan := &ledger.Plan{
		Inputs: []ledger.PlanInput{
			{
				Ref: factory.Seed,
			},
		},
		Mints: []ledger.PlanMint{
			{
				PolicyId:  factory.MarkerHash,
				AssetName: p.markerAssetName,
				Quantity:  1,
				Script:    marker.Script,
				Redeemer:  data.NewConstr(0),
			},
		},
		Outputs: []ledger.PlanOutput{
			{
				Address: factory.Address,
				Amount:  seedUtxo.Amount,
				Assets: singleAsset(
					factory.MarkerHash,
					p.markerAssetName,
					1,
				),
				Datum: factoryDatum,
			},
		},
		RequiredSigner: factory.Owner,
	}
	return plan, nil
}

// CreateFactory derives, plans, signs and submits a factory creation in one
// step. On success the returned factory identity is live on the ledger.
func (p *Protocol) CreateFactory(
	ctx context.Context,
	signer ledger.Signer,
	owner common.Blake2b224,
	seed ledger.OutputRef,
) (Factory, common.Blake2b256, error) {
	factory, err := p.Factory(owner, seed)
	if err != nil {
		return Factory{}, common.Blake2b256{}, err
	}
	plan, err := p.PlanFactory(ctx, factory)
	if err != nil {
		return Factory{}, common.Blake2b256{}, err
	}
	txId, err := p.submit(
		ctx,
		plan,
		signer,
		SeedAlreadySpentError{Seed: seed},
	)
	if err != nil {
		return Factory{}, common.Blake2b256{}, err
	}
	return factory, txId, nil
}
