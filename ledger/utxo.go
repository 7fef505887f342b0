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
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// OutputRef identifies a transaction output by origin transaction ID and
// output index. A ref can be consumed at most once; this is the ledger's
// sole source of uniqueness.
type OutputRef struct {
	cbor.StructAsArray
	TxId        common.Blake2b256
	OutputIndex uint32
}

// NewOutputRef creates an OutputRef from a hex-encoded transaction hash and
// output index
func NewOutputRef(hash string, idx int) OutputRef {
	tmpHash, err := hex.DecodeString(hash)
	if err != nil {
		panic(fmt.Sprintf("failed to decode transaction hash: %s", err))
	}
	if idx < 0 || idx > math.MaxUint32 {
		panic("index out of range")
	}
	return OutputRef{
		TxId:        common.Blake2b256(tmpHash),
		OutputIndex: uint32(idx),
	}
}

// ParseOutputRef parses the "<txid>#<index>" form produced by String
func ParseOutputRef(s string) (OutputRef, error) {
	txPart, idxPart, ok := strings.Cut(s, "#")
	if !ok {
		return OutputRef{}, fmt.Errorf("invalid output reference: %s", s)
	}
	txId, err := hex.DecodeString(txPart)
	if err != nil {
		return OutputRef{}, fmt.Errorf("invalid output reference: %s", s)
	}
	if len(txId) != common.Blake2b256Size {
		return OutputRef{}, fmt.Errorf(
			"invalid transaction hash length: %d",
			len(txId),
		)
	}
	idx, err := strconv.ParseUint(idxPart, 10, 32)
	if err != nil {
		return OutputRef{}, fmt.Errorf("invalid output reference: %s", s)
	}
	return OutputRef{
		TxId:        common.Blake2b256(txId),
		OutputIndex: uint32(idx),
	}, nil
}

func (r OutputRef) Id() common.Blake2b256 {
	return r.TxId
}

func (r OutputRef) Index() uint32 {
	return r.OutputIndex
}

func (r OutputRef) String() string {
	return fmt.Sprintf("%s#%d", r.TxId, r.OutputIndex)
}

func (r OutputRef) MarshalJSON() ([]byte, error) {
	return []byte("\"" + r.String() + "\""), nil
}

func (r OutputRef) ToPlutusData() data.PlutusData {
	return data.NewConstr(
		0,
		data.NewByteString(r.TxId.Bytes()),
		data.NewInteger(new(big.Int).SetUint64(uint64(r.OutputIndex))),
	)
}

func (r OutputRef) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      r.TxId.Bytes(),
		OutputIndex: r.OutputIndex,
	}
}

// Asset is a single entry from a policy's minted-asset listing
type Asset struct {
	Name     []byte
	Quantity uint64
}

// Utxo is an unspent output together with its attached state
type Utxo struct {
	Ref     OutputRef
	Address common.Address
	Amount  uint64
	Assets  *common.MultiAsset[common.MultiAssetTypeOutput]
	Datum   *common.Datum
}

// HasAsset returns true when the output carries at least one unit of the
// given asset
func (u Utxo) HasAsset(policyId common.Blake2b224, name []byte) bool {
	if u.Assets == nil {
		return false
	}
	amount := u.Assets.Asset(policyId, name)
	return amount != nil && amount.Sign() > 0
}

func (u Utxo) Utxorpc() (*utxorpc.TxOutput, error) {
	addrBytes, err := u.Address.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get address bytes: %w", err)
	}
	ret := &utxorpc.TxOutput{
		Address: addrBytes,
		Coin: &utxorpc.BigInt{
			BigInt: &utxorpc.BigInt_Int{
				// #nosec G115 -- coin amounts are far below max int64
				Int: int64(u.Amount),
			},
		},
	}
	if u.Datum != nil {
		datumHash := u.Datum.Hash()
		ret.Datum = &utxorpc.Datum{
			Hash:         datumHash.Bytes(),
			OriginalCbor: u.Datum.Cbor(),
		}
	}
	return ret, nil
}
