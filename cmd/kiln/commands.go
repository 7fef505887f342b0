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

package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/kiln/params"
	"github.com/blinklabs-io/kiln/protocol"
)

const genesisAmount = 1_000_000_000

// simulatorState is the JSON document persisted between invocations
type simulatorState struct {
	Key         string               `json:"key"`
	FactorySeed string               `json:"factorySeed,omitempty"`
	Ledger      *ledger.MemoryLedger `json:"ledger"`
}

func loadState(path string) (*simulatorState, error) {
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state := &simulatorState{
		Ledger: ledger.NewMemoryLedger(),
	}
	if err := json.Unmarshal(rawBytes, state); err != nil {
		return nil, err
	}
	return state, nil
}

func saveState(path string, state *simulatorState) error {
	rawBytes, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, rawBytes, 0o600)
}

func (s *simulatorState) signerKey() (ed25519.PrivateKey, error) {
	seedBytes, err := hex.DecodeString(s.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid key in state file: %w", err)
	}
	if len(seedBytes) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid key length: %d", len(seedBytes))
	}
	return ed25519.NewKeyFromSeed(seedBytes), nil
}

func (s *simulatorState) owner() (common.Blake2b224, error) {
	key, err := s.signerKey()
	if err != nil {
		return common.Blake2b224{}, err
	}
	pubKey, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return common.Blake2b224{}, fmt.Errorf("unexpected public key type")
	}
	return common.Blake2b224Hash(pubKey), nil
}

func (s *simulatorState) ownerAddress(
	network kiln.Network,
) (common.Address, error) {
	owner, err := s.owner()
	if err != nil {
		return common.Address{}, err
	}
	return common.NewAddressFromParts(
		common.AddressTypeKeyNone,
		network.Id,
		owner.Bytes(),
		nil,
	)
}

func buildKiln(
	f *globalFlags,
	network kiln.Network,
	state *simulatorState,
) *kiln.Kiln {
	k, err := kiln.New(
		kiln.WithNetwork(network),
		kiln.WithBlueprintFile(f.blueprint),
		kiln.WithLedger(state.Ledger),
	)
	if err != nil {
		fmt.Printf("failed to initialize: %s\n", err)
		os.Exit(1)
	}
	return k
}

func mustLoadState(f *globalFlags) *simulatorState {
	state, err := loadState(f.state)
	if err != nil {
		fmt.Printf("failed to load state file %s: %s\n", f.state, err)
		os.Exit(1)
	}
	return state
}

func mustSaveState(f *globalFlags, state *simulatorState) {
	if err := saveState(f.state, state); err != nil {
		fmt.Printf("failed to save state file %s: %s\n", f.state, err)
		os.Exit(1)
	}
}

// factoryFromState re-derives the factory identity from the persisted seed
func factoryFromState(
	k *kiln.Kiln,
	state *simulatorState,
) (protocol.Factory, error) {
	if state.FactorySeed == "" {
		return protocol.Factory{}, fmt.Errorf(
			"no factory created yet, run create-factory first",
		)
	}
	seed, err := ledger.ParseOutputRef(state.FactorySeed)
	if err != nil {
		return protocol.Factory{}, err
	}
	owner, err := state.owner()
	if err != nil {
		return protocol.Factory{}, err
	}
	return k.Protocol().Factory(owner, seed)
}

func runInit(f *globalFlags, network kiln.Network) {
	if _, err := os.Stat(f.state); err == nil {
		fmt.Printf("state file %s already exists\n", f.state)
		os.Exit(1)
	}
	seedBytes := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seedBytes); err != nil {
		fmt.Printf("failed to generate key: %s\n", err)
		os.Exit(1)
	}
	state := &simulatorState{
		Key:    hex.EncodeToString(seedBytes),
		Ledger: ledger.NewMemoryLedger(),
	}
	ownerAddr, err := state.ownerAddress(network)
	if err != nil {
		fmt.Printf("failed to derive owner address: %s\n", err)
		os.Exit(1)
	}
	// Genesis output spendable by the owner key, usable as a factory seed
	key, _ := state.signerKey()
	pubKey := key.Public().(ed25519.PublicKey)
	genesisRef := ledger.OutputRef{
		TxId:        common.Blake2b256Hash(pubKey),
		OutputIndex: 0,
	}
	state.Ledger.AddUtxo(ledger.Utxo{
		Ref:     genesisRef,
		Address: ownerAddr,
		Amount:  genesisAmount,
	})
	mustSaveState(f, state)
	slog.Info("initialized simulator state",
		"state", f.state,
		"owner", ownerAddr.String(),
		"genesis", genesisRef.String(),
	)
}

func runCreateFactory(f *globalFlags, network kiln.Network) {
	state := mustLoadState(f)
	k := buildKiln(f, network, state)
	owner, err := state.owner()
	if err != nil {
		fmt.Printf("failed to derive owner: %s\n", err)
		os.Exit(1)
	}
	ownerAddr, err := state.ownerAddress(network)
	if err != nil {
		fmt.Printf("failed to derive owner address: %s\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	utxos, err := state.Ledger.UtxosByAddress(ctx, ownerAddr)
	if err != nil || len(utxos) == 0 {
		fmt.Printf("no spendable outputs at owner address\n")
		os.Exit(1)
	}
	// Stable seed selection across invocations
	slices.SortFunc(
		utxos,
		func(a, b ledger.Utxo) int {
			return strings.Compare(a.Ref.String(), b.Ref.String())
		},
	)
	seed := utxos[0].Ref
	key, err := state.signerKey()
	if err != nil {
		fmt.Printf("failed to load signing key: %s\n", err)
		os.Exit(1)
	}
	factory, txId, err := k.Protocol().CreateFactory(
		ctx,
		&keySigner{key: key},
		owner,
		seed,
	)
	if err != nil {
		fmt.Printf("failed to create factory: %s\n", err)
		os.Exit(1)
	}
	state.FactorySeed = seed.String()
	mustSaveState(f, state)
	slog.Info("created factory",
		"txId", txId.String(),
		"seed", seed.String(),
		"scriptHash", factory.ScriptHash.String(),
		"address", factory.Address.String(),
	)
}

func runCreateProduct(f *globalFlags, network kiln.Network) {
	cmdFlags := flag.NewFlagSet("create-product", flag.ExitOnError)
	productIdHex := cmdFlags.String("id", "", "product ID (hex)")
	tagHex := cmdFlags.String("tag", "", "product tag (hex)")
	_ = cmdFlags.Parse(f.flagset.Args()[1:])
	productId, err := params.BytesFromHex(*productIdHex)
	if err != nil || len(productId) == 0 {
		fmt.Printf("you must specify a hex-encoded product ID with -id\n")
		os.Exit(1)
	}
	tag, err := params.BytesFromHex(*tagHex)
	if err != nil {
		fmt.Printf("invalid -tag value: %s\n", err)
		os.Exit(1)
	}
	state := mustLoadState(f)
	k := buildKiln(f, network, state)
	factory, err := factoryFromState(k, state)
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
	key, err := state.signerKey()
	if err != nil {
		fmt.Printf("failed to load signing key: %s\n", err)
		os.Exit(1)
	}
	product, txId, err := k.Protocol().CreateProduct(
		context.Background(),
		&keySigner{key: key},
		factory,
		productId,
		tag,
	)
	if err != nil {
		fmt.Printf("failed to create product: %s\n", err)
		os.Exit(1)
	}
	mustSaveState(f, state)
	slog.Info("created product",
		"txId", txId.String(),
		"productId", hex.EncodeToString(productId),
		"scriptHash", product.ScriptHash.String(),
		"address", product.Address.String(),
	)
}

func runGetFactory(f *globalFlags, network kiln.Network) {
	state := mustLoadState(f)
	k := buildKiln(f, network, state)
	factory, err := factoryFromState(k, state)
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
	registry, _, err := k.Protocol().FactoryState(
		context.Background(),
		factory,
	)
	if err != nil {
		fmt.Printf("failed to read factory state: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("scriptHash: %s\n", factory.ScriptHash)
	fmt.Printf("address:    %s\n", factory.Address)
	fmt.Printf("marker:     %s\n", factory.MarkerHash)
	fmt.Printf("products:   %d\n", len(registry.ProductIds))
	for _, id := range registry.ProductIds {
		fmt.Printf("  %s\n", hex.EncodeToString(id))
	}
}

func runGetProducts(f *globalFlags, network kiln.Network) {
	cmdFlags := flag.NewFlagSet("get-products", flag.ExitOnError)
	strategy := cmdFlags.String(
		"strategy",
		"registry",
		"discovery strategy (registry or mint)",
	)
	_ = cmdFlags.Parse(f.flagset.Args()[1:])
	state := mustLoadState(f)
	k := buildKiln(f, network, state)
	factory, err := factoryFromState(k, state)
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
	var engine = k.RegistryDiscovery()
	switch *strategy {
	case "registry":
		// default
	case "mint":
		engine = k.MintDiscovery()
	default:
		fmt.Printf("unknown discovery strategy: %s\n", *strategy)
		os.Exit(1)
	}
	entries, err := engine.Products(context.Background(), factory)
	if err != nil {
		fmt.Printf("failed to discover products: %s\n", err)
		os.Exit(1)
	}
	for _, entry := range entries {
		fmt.Printf(
			"%s  %s  %s\n",
			hex.EncodeToString(entry.ProductId),
			entry.ScriptHash,
			entry.Fingerprint,
		)
	}
}

func runGetTag(f *globalFlags, network kiln.Network) {
	cmdFlags := flag.NewFlagSet("get-tag", flag.ExitOnError)
	productIdHex := cmdFlags.String("id", "", "product ID (hex)")
	_ = cmdFlags.Parse(f.flagset.Args()[1:])
	productId, err := params.BytesFromHex(*productIdHex)
	if err != nil || len(productId) == 0 {
		fmt.Printf("you must specify a hex-encoded product ID with -id\n")
		os.Exit(1)
	}
	state := mustLoadState(f)
	k := buildKiln(f, network, state)
	factory, err := factoryFromState(k, state)
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
	tag, err := k.Protocol().ProductTag(
		context.Background(),
		factory,
		productId,
	)
	if err != nil {
		fmt.Printf("failed to read product tag: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n", hex.EncodeToString(tag))
}
