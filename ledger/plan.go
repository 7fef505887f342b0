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
	"bytes"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
)

// PlanInput names a UTxO the plan intends to consume. Script-locked inputs
// carry the witness script and a redeemer; key-locked inputs carry neither.
type PlanInput struct {
	Ref      OutputRef
	Redeemer data.PlutusData
	Script   common.PlutusV3Script
}

// PlanMint describes a single asset mint, including the authorizing script
// and its redeemer argument
type PlanMint struct {
	PolicyId  common.Blake2b224
	AssetName []byte
	Quantity  int64
	Script    common.PlutusV3Script
	Redeemer  data.PlutusData
}

// PlanOutput describes an output to produce, with optional native assets and
// inline datum
type PlanOutput struct {
	Address common.Address
	Amount  uint64
	Assets  *common.MultiAsset[common.MultiAssetTypeOutput]
	Datum   *common.Datum
}

// Plan is a fully-specified transition: the inputs to consume, the assets to
// mint, the outputs to produce and the signer whose authorization is
// required. Witness scripts and vkey witnesses are carried alongside the
// body but do not contribute to the plan hash.
type Plan struct {
	Inputs         []PlanInput
	Mints          []PlanMint
	Outputs        []PlanOutput
	RequiredSigner common.Blake2b224
	Witnesses      []common.VkeyWitness
}

type planBodyInput struct {
	cbor.StructAsArray
	Ref      OutputRef
	Redeemer []byte
}

type planBodyMint struct {
	cbor.StructAsArray
	PolicyId  common.Blake2b224
	AssetName []byte
	Quantity  int64
	Redeemer  []byte
}

type planBodyOutput struct {
	cbor.StructAsArray
	Address common.Address
	Amount  uint64
	Assets  *common.MultiAsset[common.MultiAssetTypeOutput]
	Datum   []byte
}

type planBody struct {
	cbor.StructAsArray
	Inputs         []planBodyInput
	Mints          []planBodyMint
	Outputs        []planBodyOutput
	RequiredSigner common.Blake2b224
}

// Bytes returns the canonical CBOR encoding of the plan body
func (p *Plan) Bytes() ([]byte, error) {
	tmpBody := planBody{
		Inputs:         make([]planBodyInput, 0, len(p.Inputs)),
		Mints:          make([]planBodyMint, 0, len(p.Mints)),
		Outputs:        make([]planBodyOutput, 0, len(p.Outputs)),
		RequiredSigner: p.RequiredSigner,
	}
	for _, input := range p.Inputs {
		redeemerCbor, err := encodePlutusData(input.Redeemer)
		if err != nil {
			return nil, err
		}
		tmpBody.Inputs = append(
			tmpBody.Inputs,
			planBodyInput{
				Ref:      input.Ref,
				Redeemer: redeemerCbor,
			},
		)
	}
	for _, mint := range p.Mints {
		redeemerCbor, err := encodePlutusData(mint.Redeemer)
		if err != nil {
			return nil, err
		}
		tmpBody.Mints = append(
			tmpBody.Mints,
			planBodyMint{
				PolicyId:  mint.PolicyId,
				AssetName: mint.AssetName,
				Quantity:  mint.Quantity,
				Redeemer:  redeemerCbor,
			},
		)
	}
	for _, output := range p.Outputs {
		var datumCbor []byte
		if output.Datum != nil {
			tmpCbor, err := output.Datum.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			datumCbor = tmpCbor
		}
		tmpBody.Outputs = append(
			tmpBody.Outputs,
			planBodyOutput{
				Address: output.Address,
				Amount:  output.Amount,
				Assets:  output.Assets,
				Datum:   datumCbor,
			},
		)
	}
	return cbor.Encode(&tmpBody)
}

// Hash returns the Blake2b-256 hash of the plan body. This is the message
// signed by the required signer and the transaction ID assigned on
// acceptance.
func (p *Plan) Hash() (common.Blake2b256, error) {
	bodyBytes, err := p.Bytes()
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.Blake2b256Hash(bodyBytes), nil
}

// Sign obtains a signature over the plan hash from the given signer and
// attaches it as a vkey witness. The signer's public key is returned so
// callers can cross-check it against the required signer.
func (p *Plan) Sign(signer Signer) ([]byte, error) {
	if signer == nil {
		return nil, errors.New("no signer provided")
	}
	planHash, err := p.Hash()
	if err != nil {
		return nil, err
	}
	pubKey, sig, err := signer.Sign(planHash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign plan: %w", err)
	}
	p.Witnesses = append(
		p.Witnesses,
		common.VkeyWitness{
			Vkey:      pubKey,
			Signature: sig,
		},
	)
	return pubKey, nil
}

// Clone returns a deep copy of the plan. Attached datums, redeemers and
// asset bundles are immutable once set and are shared with the copy.
func (p *Plan) Clone() *Plan {
	ret := &Plan{
		Inputs:         make([]PlanInput, len(p.Inputs)),
		Mints:          make([]PlanMint, len(p.Mints)),
		Outputs:        make([]PlanOutput, len(p.Outputs)),
		RequiredSigner: p.RequiredSigner,
		Witnesses:      make([]common.VkeyWitness, len(p.Witnesses)),
	}
	copy(ret.Inputs, p.Inputs)
	for i := range ret.Mints {
		ret.Mints[i] = p.Mints[i]
		ret.Mints[i].AssetName = bytes.Clone(p.Mints[i].AssetName)
	}
	copy(ret.Outputs, p.Outputs)
	copy(ret.Witnesses, p.Witnesses)
	return ret
}

func encodePlutusData(pd data.PlutusData) ([]byte, error) {
	if pd == nil {
		return nil, nil
	}
	return data.Encode(pd)
}
