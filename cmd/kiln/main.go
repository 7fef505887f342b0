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
	"crypto/ed25519"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/kiln"
)

type globalFlags struct {
	flagset   *flag.FlagSet
	state     string
	blueprint string
	network   string
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.state,
		"state",
		"kiln-state.json",
		"path to simulator state file",
	)
	f.flagset.StringVar(
		&f.blueprint,
		"blueprint",
		"plutus.json",
		"path to CIP-57 blueprint document",
	)
	f.flagset.StringVar(
		&f.network,
		"network",
		"preview",
		"network used for derived addresses",
	)
	return f
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	network := kiln.NetworkByName(f.network)
	if network == kiln.NetworkInvalid {
		fmt.Printf("Invalid network specified: %s\n", f.network)
		os.Exit(1)
	}

	if len(f.flagset.Args()) > 0 {
		switch f.flagset.Arg(0) {
		case "init":
			runInit(f, network)
		case "create-factory":
			runCreateFactory(f, network)
		case "create-product":
			runCreateProduct(f, network)
		case "get-factory":
			runGetFactory(f, network)
		case "get-products":
			runGetProducts(f, network)
		case "get-tag":
			runGetTag(f, network)
		default:
			fmt.Printf("Unknown subcommand: %s\n", f.flagset.Arg(0))
			os.Exit(1)
		}
	} else {
		fmt.Printf(
			"You must specify a subcommand (init, create-factory, create-product, get-factory, get-products, get-tag)\n",
		)
		os.Exit(1)
	}
}

// keySigner signs plan hashes with an in-memory ed25519 key
type keySigner struct {
	key ed25519.PrivateKey
}

func (s *keySigner) Sign(message []byte) ([]byte, []byte, error) {
	pubKey, ok := s.key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected public key type")
	}
	sig := ed25519.Sign(s.key, message)
	return pubKey, sig, nil
}
