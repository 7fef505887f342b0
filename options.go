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

package kiln

import (
	"github.com/blinklabs-io/kiln/blueprint"
	"github.com/blinklabs-io/kiln/ledger"
)

type KilnOptionFunc func(*Kiln)

// WithNetwork specifies the network used for derived addresses
func WithNetwork(network Network) KilnOptionFunc {
	return func(k *Kiln) {
		k.network = network
	}
}

// WithNetworkMagic specifies the network by magic value
func WithNetworkMagic(networkMagic uint32) KilnOptionFunc {
	return func(k *Kiln) {
		k.network = NetworkByNetworkMagic(networkMagic)
	}
}

// WithBlueprint specifies the blueprint store holding the validator
// templates
func WithBlueprint(store *blueprint.Store) KilnOptionFunc {
	return func(k *Kiln) {
		k.store = store
	}
}

// WithBlueprintFile loads the blueprint store from the named CIP-57
// document. A load failure surfaces from New.
func WithBlueprintFile(path string) KilnOptionFunc {
	return func(k *Kiln) {
		store, err := blueprint.NewStoreFromFile(path)
		if err != nil {
			k.optionErr = err
			return
		}
		k.store = store
	}
}

// WithLedger specifies the ledger gateway
func WithLedger(lgr ledger.Ledger) KilnOptionFunc {
	return func(k *Kiln) {
		k.ledger = lgr
	}
}

// WithMarkerAssetName overrides the factory marker token asset name
func WithMarkerAssetName(name []byte) KilnOptionFunc {
	return func(k *Kiln) {
		k.markerAssetName = name
	}
}
