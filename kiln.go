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

// Package kiln implements a factory pattern for Cardano-style eUTxO
// ledgers: a factory identity created from a one-shot seed spawns product
// script instances at deterministically derived addresses. The kiln type
// wires the blueprint store, deriver, protocol and discovery engines
// together behind a single constructor.
package kiln

import (
	"errors"

	"github.com/blinklabs-io/kiln/blueprint"
	"github.com/blinklabs-io/kiln/derive"
	"github.com/blinklabs-io/kiln/discovery"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/kiln/protocol"
)

// Kiln ties together the pieces needed to run the factory protocol on a
// particular network against a particular ledger gateway
type Kiln struct {
	network         Network
	store           *blueprint.Store
	ledger          ledger.Ledger
	markerAssetName []byte
	optionErr       error
	deriver         *derive.Deriver
	protocol        *protocol.Protocol
}

// New creates a Kiln with the provided options. A blueprint store and
// ledger gateway are required; the network defaults to preview.
func New(options ...KilnOptionFunc) (*Kiln, error) {
	k := &Kiln{
		network: NetworkPreview,
	}
	for _, option := range options {
		option(k)
	}
	if k.optionErr != nil {
		return nil, k.optionErr
	}
	if k.network == NetworkInvalid {
		return nil, errors.New("invalid network specified")
	}
	if k.store == nil {
		return nil, errors.New("no blueprint store specified")
	}
	if k.ledger == nil {
		return nil, errors.New("no ledger specified")
	}
	k.deriver = derive.New(uint(k.network.Id), k.store)
	protoOpts := []protocol.ProtocolOptionFunc{}
	if k.markerAssetName != nil {
		protoOpts = append(
			protoOpts,
			protocol.WithMarkerAssetName(k.markerAssetName),
		)
	}
	k.protocol = protocol.New(k.deriver, k.ledger, protoOpts...)
	return k, nil
}

// Network returns the configured network
func (k *Kiln) Network() Network {
	return k.network
}

// Deriver returns the address deriver
func (k *Kiln) Deriver() *derive.Deriver {
	return k.deriver
}

// Protocol returns the factory protocol driver
func (k *Kiln) Protocol() *protocol.Protocol {
	return k.protocol
}

// RegistryDiscovery returns a discovery engine backed by the factory
// registry
func (k *Kiln) RegistryDiscovery() discovery.Engine {
	return discovery.NewRegistryEngine(k.deriver, k.protocol)
}

// MintDiscovery returns a discovery engine backed by the mint index
func (k *Kiln) MintDiscovery() discovery.Engine {
	return discovery.NewMintEngine(k.deriver, k.ledger)
}
