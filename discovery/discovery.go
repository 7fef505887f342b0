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

// Package discovery enumerates the products spawned by a factory. Two
// interchangeable strategies are provided: walking the factory's on-chain
// registry, and indexing token mints under the factory policy. Both return
// the same entries for a healthy factory.
package discovery

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/derive"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/kiln/protocol"
)

// Entry is a single discovered product
type Entry struct {
	ProductId   []byte
	ScriptHash  common.Blake2b224
	Address     common.Address
	Fingerprint string
}

// Engine lists the products of a factory
type Engine interface {
	Products(ctx context.Context, factory protocol.Factory) ([]Entry, error)
}

// RegistryEngine discovers products by reading the factory's live registry
// and re-deriving each product identity
type RegistryEngine struct {
	deriver  *derive.Deriver
	protocol *protocol.Protocol
}

// NewRegistryEngine creates a registry-walking discovery engine
func NewRegistryEngine(
	deriver *derive.Deriver,
	proto *protocol.Protocol,
) *RegistryEngine {
	return &RegistryEngine{
		deriver:  deriver,
		protocol: proto,
	}
}

func (e *RegistryEngine) Products(
	ctx context.Context,
	factory protocol.Factory,
) ([]Entry, error) {
	state, _, err := e.protocol.FactoryState(ctx, factory)
	if err != nil {
		return nil, err
	}
	ret := make([]Entry, 0, len(state.ProductIds))
	seen := make(map[string]bool)
	for _, productId := range state.ProductIds {
		if seen[string(productId)] {
			return nil, fmt.Errorf(
				"corrupt factory registry: duplicate product ID %x",
				productId,
			)
		}
		seen[string(productId)] = true
		entry, err := newEntry(e.deriver, factory, productId)
		if err != nil {
			return nil, err
		}
		ret = append(ret, entry)
	}
	return ret, nil
}

// MintEngine discovers products from the asset index under the factory
// minting policy. It never reads the factory UTxO, so it also works with
// gateways that only index mints.
type MintEngine struct {
	deriver *derive.Deriver
	ledger  ledger.Ledger
}

// NewMintEngine creates a mint-provenance discovery engine
func NewMintEngine(deriver *derive.Deriver, lgr ledger.Ledger) *MintEngine {
	return &MintEngine{
		deriver: deriver,
		ledger:  lgr,
	}
}

func (e *MintEngine) Products(
	ctx context.Context,
	factory protocol.Factory,
) ([]Entry, error) {
	assets, err := e.ledger.AssetsByPolicy(ctx, factory.ScriptHash)
	if err != nil {
		return nil, err
	}
	ret := make([]Entry, 0, len(assets))
	for _, asset := range assets {
		entry, err := newEntry(e.deriver, factory, asset.Name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, entry)
	}
	return ret, nil
}

func newEntry(
	deriver *derive.Deriver,
	factory protocol.Factory,
	productId []byte,
) (Entry, error) {
	product, err := protocol.ProductIdentity(
		deriver,
		factory.Owner,
		factory.MarkerHash,
		productId,
	)
	if err != nil {
		return Entry{}, err
	}
	fingerprint := common.NewAssetFingerprint(
		factory.ScriptHash.Bytes(),
		productId,
	)
	return Entry{
		ProductId:   productId,
		ScriptHash:  product.ScriptHash,
		Address:     product.Address,
		Fingerprint: fingerprint.String(),
	}, nil
}
