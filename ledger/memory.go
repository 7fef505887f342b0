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

package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/jinzhu/copier"
)

// MemoryLedger is an in-process Ledger implementation. It serializes
// submissions under a mutex and rejects plans whose inputs were already
// consumed, which makes contention over a shared UTxO resolve the same way
// it does on chain: first submission wins, later ones fail and retry
// against refreshed state.
type MemoryLedger struct {
	sync.Mutex
	utxos map[string]Utxo
	spent map[string]bool
	mints map[string][]Asset
}

// NewMemoryLedger returns an empty in-process ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		utxos: make(map[string]Utxo),
		spent: make(map[string]bool),
		mints: make(map[string][]Asset),
	}
}

// AddUtxo injects an output directly, bypassing submission. Used to seed
// initial state.
func (m *MemoryLedger) AddUtxo(utxo Utxo) {
	m.Lock()
	defer m.Unlock()
	m.utxos[utxo.Ref.String()] = utxo
}

func (m *MemoryLedger) UtxoByRef(
	ctx context.Context,
	ref OutputRef,
) (Utxo, error) {
	if err := ctx.Err(); err != nil {
		return Utxo{}, err
	}
	m.Lock()
	defer m.Unlock()
	key := ref.String()
	if m.spent[key] {
		return Utxo{}, ErrUtxoSpent
	}
	utxo, ok := m.utxos[key]
	if !ok {
		return Utxo{}, ErrUtxoNotFound
	}
	return utxo, nil
}

func (m *MemoryLedger) UtxosByAddress(
	ctx context.Context,
	addr common.Address,
) ([]Utxo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Lock()
	defer m.Unlock()
	addrStr := addr.String()
	var ret []Utxo
	for _, utxo := range m.utxos {
		if utxo.Address.String() == addrStr {
			ret = append(ret, utxo)
		}
	}
	return ret, nil
}

func (m *MemoryLedger) AssetsByPolicy(
	ctx context.Context,
	policyId common.Blake2b224,
) ([]Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Lock()
	defer m.Unlock()
	var ret []Asset
	if err := copier.Copy(&ret, m.mints[policyId.String()]); err != nil {
		return nil, fmt.Errorf("failed to copy assets: %w", err)
	}
	return ret, nil
}

// Submit applies a plan atomically. All inputs must be live, and the plan
// must carry a verifying vkey witness for its required signer. On success
// the inputs are marked spent, the outputs become available under the new
// transaction ID and any mints are recorded in the policy index.
func (m *MemoryLedger) Submit(
	ctx context.Context,
	plan *Plan,
) (common.Blake2b256, error) {
	if err := ctx.Err(); err != nil {
		return common.Blake2b256{}, err
	}
	planHash, err := plan.Hash()
	if err != nil {
		return common.Blake2b256{}, fmt.Errorf("failed to hash plan: %w", err)
	}
	if err := m.verifyWitness(plan, planHash); err != nil {
		return common.Blake2b256{}, err
	}
	m.Lock()
	defer m.Unlock()
	for _, input := range plan.Inputs {
		key := input.Ref.String()
		if m.spent[key] {
			return common.Blake2b256{}, ErrUtxoSpent
		}
		if _, ok := m.utxos[key]; !ok {
			return common.Blake2b256{}, ErrUtxoNotFound
		}
	}
	for _, input := range plan.Inputs {
		key := input.Ref.String()
		m.spent[key] = true
		delete(m.utxos, key)
	}
	for _, mint := range plan.Mints {
		if mint.Quantity <= 0 {
			continue
		}
		policyKey := mint.PolicyId.String()
		m.mints[policyKey] = append(
			m.mints[policyKey],
			Asset{
				Name:     mint.AssetName,
				Quantity: uint64(mint.Quantity),
			},
		)
	}
	for idx, output := range plan.Outputs {
		ref := OutputRef{
			TxId:        planHash,
			// #nosec G115 -- output count bounded by plan size
			OutputIndex: uint32(idx),
		}
		m.utxos[ref.String()] = Utxo{
			Ref:     ref,
			Address: output.Address,
			Amount:  output.Amount,
			Assets:  output.Assets,
			Datum:   output.Datum,
		}
	}
	return planHash, nil
}

func (m *MemoryLedger) verifyWitness(
	plan *Plan,
	planHash common.Blake2b256,
) error {
	for _, witness := range plan.Witnesses {
		keyHash := common.Blake2b224Hash(witness.Vkey)
		if keyHash != plan.RequiredSigner {
			continue
		}
		if err := common.VerifyVKeySignature(
			witness.Vkey,
			witness.Signature,
			planHash.Bytes(),
		); err != nil {
			return ErrInvalidSignature
		}
		return nil
	}
	return ErrMissingSignature
}

type memoryLedgerUtxoJson struct {
	Ref     string `json:"ref"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Assets  string `json:"assets,omitempty"`
	Datum   string `json:"datum,omitempty"`
}

type memoryLedgerAssetJson struct {
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
}

type memoryLedgerJson struct {
	Utxos []memoryLedgerUtxoJson             `json:"utxos"`
	Spent []string                           `json:"spent"`
	Mints map[string][]memoryLedgerAssetJson `json:"mints"`
}

// MarshalJSON serializes the full ledger state for persistence between
// simulator invocations
func (m *MemoryLedger) MarshalJSON() ([]byte, error) {
	m.Lock()
	defer m.Unlock()
	tmpState := memoryLedgerJson{
		Mints: make(map[string][]memoryLedgerAssetJson),
	}
	for _, utxo := range m.utxos {
		tmpUtxo := memoryLedgerUtxoJson{
			Ref:     utxo.Ref.String(),
			Address: utxo.Address.String(),
			Amount:  utxo.Amount,
		}
		if utxo.Assets != nil {
			assetsCbor, err := cbor.Encode(utxo.Assets)
			if err != nil {
				return nil, err
			}
			tmpUtxo.Assets = hex.EncodeToString(assetsCbor)
		}
		if utxo.Datum != nil {
			datumCbor, err := utxo.Datum.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			tmpUtxo.Datum = hex.EncodeToString(datumCbor)
		}
		tmpState.Utxos = append(tmpState.Utxos, tmpUtxo)
	}
	for key := range m.spent {
		tmpState.Spent = append(tmpState.Spent, key)
	}
	for policy, assets := range m.mints {
		for _, asset := range assets {
			tmpState.Mints[policy] = append(
				tmpState.Mints[policy],
				memoryLedgerAssetJson{
					Name:     hex.EncodeToString(asset.Name),
					Quantity: asset.Quantity,
				},
			)
		}
	}
	return json.Marshal(&tmpState)
}

// UnmarshalJSON restores ledger state written by MarshalJSON
func (m *MemoryLedger) UnmarshalJSON(jsonData []byte) error {
	var tmpState memoryLedgerJson
	if err := json.Unmarshal(jsonData, &tmpState); err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	m.utxos = make(map[string]Utxo)
	m.spent = make(map[string]bool)
	m.mints = make(map[string][]Asset)
	for _, tmpUtxo := range tmpState.Utxos {
		ref, err := ParseOutputRef(tmpUtxo.Ref)
		if err != nil {
			return err
		}
		addr, err := common.NewAddress(tmpUtxo.Address)
		if err != nil {
			return fmt.Errorf("failed to parse address: %w", err)
		}
		utxo := Utxo{
			Ref:     ref,
			Address: addr,
			Amount:  tmpUtxo.Amount,
		}
		if tmpUtxo.Assets != "" {
			assetsCbor, err := hex.DecodeString(tmpUtxo.Assets)
			if err != nil {
				return err
			}
			var tmpAssets common.MultiAsset[common.MultiAssetTypeOutput]
			if _, err := cbor.Decode(assetsCbor, &tmpAssets); err != nil {
				return fmt.Errorf("failed to decode assets: %w", err)
			}
			utxo.Assets = &tmpAssets
		}
		if tmpUtxo.Datum != "" {
			datumCbor, err := hex.DecodeString(tmpUtxo.Datum)
			if err != nil {
				return err
			}
			var tmpDatum common.Datum
			if err := tmpDatum.UnmarshalCBOR(datumCbor); err != nil {
				return fmt.Errorf("failed to decode datum: %w", err)
			}
			utxo.Datum = &tmpDatum
		}
		m.utxos[utxo.Ref.String()] = utxo
	}
	for _, key := range tmpState.Spent {
		m.spent[key] = true
	}
	for policy, assets := range tmpState.Mints {
		for _, tmpAsset := range assets {
			name, err := hex.DecodeString(tmpAsset.Name)
			if err != nil {
				return err
			}
			m.mints[policy] = append(
				m.mints[policy],
				Asset{
					Name:     name,
					Quantity: tmpAsset.Quantity,
				},
			)
		}
	}
	return nil
}
