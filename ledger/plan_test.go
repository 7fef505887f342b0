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

package ledger_test

import (
	"crypto/ed25519"
	"fmt"
	"testing"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/internal/test"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/plutigo/data"
)

type testSigner struct {
	key ed25519.PrivateKey
}

func newTestSigner(seed byte) *testSigner {
	keySeed := make([]byte, ed25519.SeedSize)
	for i := range keySeed {
		keySeed[i] = seed
	}
	return &testSigner{
		key: ed25519.NewKeyFromSeed(keySeed),
	}
}

func (s *testSigner) Sign(message []byte) ([]byte, []byte, error) {
	pubKey, ok := s.key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected public key type")
	}
	return pubKey, ed25519.Sign(s.key, message), nil
}

func (s *testSigner) keyHash() common.Blake2b224 {
	pubKey := s.key.Public().(ed25519.PublicKey)
	return common.Blake2b224Hash(pubKey)
}

func (s *testSigner) address(t *testing.T) common.Address {
	t.Helper()
	addr, err := common.NewAddressFromParts(
		common.AddressTypeKeyNone,
		common.AddressNetworkTestnet,
		s.keyHash().Bytes(),
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return addr
}

func testPlan(t *testing.T, signer *testSigner) *ledger.Plan {
	t.Helper()
	return &ledger.Plan{
		Inputs: []ledger.PlanInput{
			{
				Ref: ledger.NewOutputRef(
					"2dbd1b599dcd09e1a176bd1ac6247f56d2bb0b4c7b8d8e97e63dd6dd24076c5a",
					0,
				),
			},
		},
		Mints: []ledger.PlanMint{
			{
				PolicyId: common.Blake2b224Hash([]byte("policy")),
				AssetName: test.DecodeHexString(
					"66697265666c792d303032",
				),
				Quantity: 1,
				Redeemer: data.NewConstr(0),
			},
		},
		Outputs: []ledger.PlanOutput{
			{
				Address: signer.address(t),
				Amount:  1_000_000,
			},
		},
		RequiredSigner: signer.keyHash(),
	}
}

func TestPlanHashDeterministic(t *testing.T) {
	signer := newTestSigner(0x01)
	planA := testPlan(t, signer)
	planB := testPlan(t, signer)
	hashA, err := planA.Hash()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	hashB, err := planB.Hash()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if hashA != hashB {
		t.Fatalf(
			"did not get expected hash: got %s, wanted %s",
			hashB,
			hashA,
		)
	}
}

func TestPlanHashIgnoresWitnesses(t *testing.T) {
	signer := newTestSigner(0x01)
	plan := testPlan(t, signer)
	hashBefore, err := plan.Hash()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := plan.Sign(signer); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	hashAfter, err := plan.Hash()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if hashBefore != hashAfter {
		t.Fatalf(
			"plan hash changed after signing: got %s, wanted %s",
			hashAfter,
			hashBefore,
		)
	}
}

func TestPlanSignAddsWitness(t *testing.T) {
	signer := newTestSigner(0x01)
	plan := testPlan(t, signer)
	pubKey, err := plan.Sign(signer)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(plan.Witnesses) != 1 {
		t.Fatalf(
			"did not get expected witness count: got %d, wanted %d",
			len(plan.Witnesses),
			1,
		)
	}
	if common.Blake2b224Hash(pubKey) != signer.keyHash() {
		t.Fatalf(
			"did not get expected public key hash: got %s, wanted %s",
			common.Blake2b224Hash(pubKey),
			signer.keyHash(),
		)
	}
}

func TestPlanCloneIndependent(t *testing.T) {
	signer := newTestSigner(0x01)
	plan := testPlan(t, signer)
	clone := plan.Clone()
	clone.Mints[0].AssetName[0] = 0xff
	clone.Inputs[0].Ref.OutputIndex = 99
	if plan.Mints[0].AssetName[0] == 0xff {
		t.Fatalf("clone shares mint asset name with original")
	}
	if plan.Inputs[0].Ref.OutputIndex == 99 {
		t.Fatalf("clone shares inputs with original")
	}
}
