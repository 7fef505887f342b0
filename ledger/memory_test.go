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
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/blinklabs-io/kiln/ledger"
	"go.uber.org/goleak"
)

func seedLedger(t *testing.T, signer *testSigner) *ledger.MemoryLedger {
	t.Helper()
	l := ledger.NewMemoryLedger()
	l.AddUtxo(ledger.Utxo{
		Ref: ledger.NewOutputRef(
			"2dbd1b599dcd09e1a176bd1ac6247f56d2bb0b4c7b8d8e97e63dd6dd24076c5a",
			0,
		),
		Address: signer.address(t),
		Amount:  1_000_000,
	})
	return l
}

func TestMemoryLedgerUtxoByRef(t *testing.T) {
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	ref := ledger.NewOutputRef(
		"2dbd1b599dcd09e1a176bd1ac6247f56d2bb0b4c7b8d8e97e63dd6dd24076c5a",
		0,
	)
	utxo, err := l.UtxoByRef(context.Background(), ref)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if utxo.Amount != 1_000_000 {
		t.Fatalf(
			"did not get expected amount: got %d, wanted %d",
			utxo.Amount,
			1_000_000,
		)
	}
	missingRef := ledger.NewOutputRef(
		"2dbd1b599dcd09e1a176bd1ac6247f56d2bb0b4c7b8d8e97e63dd6dd24076c5a",
		7,
	)
	if _, err := l.UtxoByRef(context.Background(), missingRef); !errors.Is(err, ledger.ErrUtxoNotFound) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrUtxoNotFound,
		)
	}
}

func TestMemoryLedgerSubmit(t *testing.T) {
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	plan := testPlan(t, signer)
	if _, err := plan.Sign(signer); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	txId, err := l.Submit(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	planHash, err := plan.Hash()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if txId != planHash {
		t.Fatalf(
			"did not get expected transaction ID: got %s, wanted %s",
			txId,
			planHash,
		)
	}
	// Input is now spent
	if _, err := l.UtxoByRef(context.Background(), plan.Inputs[0].Ref); !errors.Is(err, ledger.ErrUtxoSpent) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrUtxoSpent,
		)
	}
	// Output exists under the new transaction ID
	newRef := ledger.OutputRef{TxId: txId, OutputIndex: 0}
	newUtxo, err := l.UtxoByRef(context.Background(), newRef)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if newUtxo.Amount != plan.Outputs[0].Amount {
		t.Fatalf(
			"did not get expected amount: got %d, wanted %d",
			newUtxo.Amount,
			plan.Outputs[0].Amount,
		)
	}
	// Mint was recorded
	assets, err := l.AssetsByPolicy(
		context.Background(),
		plan.Mints[0].PolicyId,
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(assets) != 1 {
		t.Fatalf(
			"did not get expected asset count: got %d, wanted %d",
			len(assets),
			1,
		)
	}
	if string(assets[0].Name) != string(plan.Mints[0].AssetName) {
		t.Fatalf(
			"did not get expected asset name: got %x, wanted %x",
			assets[0].Name,
			plan.Mints[0].AssetName,
		)
	}
}

func TestMemoryLedgerSubmitMissingSignature(t *testing.T) {
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	plan := testPlan(t, signer)
	if _, err := l.Submit(context.Background(), plan); !errors.Is(err, ledger.ErrMissingSignature) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrMissingSignature,
		)
	}
}

func TestMemoryLedgerSubmitWrongSigner(t *testing.T) {
	signer := newTestSigner(0x01)
	otherSigner := newTestSigner(0x02)
	l := seedLedger(t, signer)
	plan := testPlan(t, signer)
	if _, err := plan.Sign(otherSigner); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := l.Submit(context.Background(), plan); !errors.Is(err, ledger.ErrMissingSignature) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrMissingSignature,
		)
	}
}

func TestMemoryLedgerSubmitInvalidSignature(t *testing.T) {
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	plan := testPlan(t, signer)
	if _, err := plan.Sign(signer); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// Corrupt the signature
	plan.Witnesses[0].Signature[0] ^= 0xff
	if _, err := l.Submit(context.Background(), plan); !errors.Is(err, ledger.ErrInvalidSignature) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrInvalidSignature,
		)
	}
}

func TestMemoryLedgerDoubleSpend(t *testing.T) {
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	planA := testPlan(t, signer)
	planB := testPlan(t, signer)
	planB.Outputs[0].Amount = 999_999
	if _, err := planA.Sign(signer); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := planB.Sign(signer); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := l.Submit(context.Background(), planA); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := l.Submit(context.Background(), planB); !errors.Is(err, ledger.ErrUtxoSpent) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrUtxoSpent,
		)
	}
}

func TestMemoryLedgerConcurrentSubmit(t *testing.T) {
	defer goleak.VerifyNone(t)
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	const workers = 8
	plans := make([]*ledger.Plan, workers)
	for i := range plans {
		plans[i] = testPlan(t, signer)
		// Unique output amounts give each plan a unique hash
		plans[i].Outputs[0].Amount = uint64(1_000 + i)
		if _, err := plans[i].Sign(signer); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := range plans {
		wg.Add(1)
		go func(plan *ledger.Plan) {
			defer wg.Done()
			_, err := l.Submit(context.Background(), plan)
			results <- err
		}(plans[i])
	}
	wg.Wait()
	close(results)
	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ledger.ErrUtxoSpent):
			conflicts++
		default:
			t.Fatalf("unexpected error: %s", err)
		}
	}
	if successes != 1 {
		t.Fatalf(
			"did not get expected success count: got %d, wanted %d",
			successes,
			1,
		)
	}
	if conflicts != workers-1 {
		t.Fatalf(
			"did not get expected conflict count: got %d, wanted %d",
			conflicts,
			workers-1,
		)
	}
}

func TestMemoryLedgerJsonRoundTrip(t *testing.T) {
	signer := newTestSigner(0x01)
	l := seedLedger(t, signer)
	plan := testPlan(t, signer)
	if _, err := plan.Sign(signer); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	txId, err := l.Submit(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	jsonData, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	restored := ledger.NewMemoryLedger()
	if err := json.Unmarshal(jsonData, restored); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// Live output survives
	newRef := ledger.OutputRef{TxId: txId, OutputIndex: 0}
	utxo, err := restored.UtxoByRef(context.Background(), newRef)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if utxo.Amount != plan.Outputs[0].Amount {
		t.Fatalf(
			"did not get expected amount: got %d, wanted %d",
			utxo.Amount,
			plan.Outputs[0].Amount,
		)
	}
	// Spent marker survives
	if _, err := restored.UtxoByRef(context.Background(), plan.Inputs[0].Ref); !errors.Is(err, ledger.ErrUtxoSpent) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			ledger.ErrUtxoSpent,
		)
	}
	// Mint index survives
	assets, err := restored.AssetsByPolicy(
		context.Background(),
		plan.Mints[0].PolicyId,
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(assets) != 1 {
		t.Fatalf(
			"did not get expected asset count: got %d, wanted %d",
			len(assets),
			1,
		)
	}
	addrUtxos, err := restored.UtxosByAddress(
		context.Background(),
		signer.address(t),
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(addrUtxos) != 1 {
		t.Fatalf(
			"did not get expected utxo count: got %d, wanted %d",
			len(addrUtxos),
			1,
		)
	}
}
