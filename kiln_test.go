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

package kiln_test

import (
	"testing"

	"github.com/blinklabs-io/kiln"
	"github.com/blinklabs-io/kiln/blueprint"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkByName(t *testing.T) {
	assert.Equal(t, kiln.NetworkPreview, kiln.NetworkByName("preview"))
	assert.Equal(t, kiln.NetworkMainnet, kiln.NetworkByName("mainnet"))
	assert.Equal(t, kiln.NetworkInvalid, kiln.NetworkByName("bogus"))
}

func TestNetworkById(t *testing.T) {
	assert.Equal(t, kiln.NetworkMainnet, kiln.NetworkById(1))
	assert.Equal(t, kiln.NetworkInvalid, kiln.NetworkById(99))
}

func TestNetworkByNetworkMagic(t *testing.T) {
	assert.Equal(
		t,
		kiln.NetworkMainnet,
		kiln.NetworkByNetworkMagic(764824073),
	)
	assert.Equal(t, kiln.NetworkPreprod, kiln.NetworkByNetworkMagic(1))
	assert.Equal(t, kiln.NetworkInvalid, kiln.NetworkByNetworkMagic(12345))
}

func TestNewMissingBlueprint(t *testing.T) {
	_, err := kiln.New(
		kiln.WithLedger(ledger.NewMemoryLedger()),
	)
	assert.ErrorContains(t, err, "no blueprint store specified")
}

func TestNewMissingLedger(t *testing.T) {
	_, err := kiln.New(
		kiln.WithBlueprint(blueprint.NewStore(blueprint.Blueprint{})),
	)
	assert.ErrorContains(t, err, "no ledger specified")
}

func TestNewInvalidNetwork(t *testing.T) {
	_, err := kiln.New(
		kiln.WithNetworkMagic(12345),
		kiln.WithBlueprint(blueprint.NewStore(blueprint.Blueprint{})),
		kiln.WithLedger(ledger.NewMemoryLedger()),
	)
	assert.ErrorContains(t, err, "invalid network specified")
}

func TestNewMissingBlueprintFile(t *testing.T) {
	_, err := kiln.New(
		kiln.WithBlueprintFile("does-not-exist.json"),
		kiln.WithLedger(ledger.NewMemoryLedger()),
	)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	k, err := kiln.New(
		kiln.WithNetwork(kiln.NetworkTestnet),
		kiln.WithBlueprint(blueprint.NewStore(blueprint.Blueprint{})),
		kiln.WithLedger(ledger.NewMemoryLedger()),
	)
	require.NoError(t, err)
	assert.Equal(t, kiln.NetworkTestnet, k.Network())
	assert.NotNil(t, k.Protocol())
	assert.NotNil(t, k.Deriver())
	assert.NotNil(t, k.RegistryDiscovery())
	assert.NotNil(t, k.MintDiscovery())
}
