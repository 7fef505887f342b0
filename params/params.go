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

// Package params provides the typed parameter values applied to validator
// templates during address derivation, along with their wire codecs.
// Parameter order and kind are significant: the same values in a different
// order produce a different script.
package params

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/ledger"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Kind identifies the shape of a parameter value
type Kind int

const (
	KindBytes Kind = iota
	KindHash
	KindOutputRef
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindHash:
		return "hash"
	case KindOutputRef:
		return "output-ref"
	}
	return "unknown"
}

// Param is a single validator parameter. Implementations convert themselves
// to Plutus data for application and contribute to the derivation cache key.
type Param interface {
	Kind() Kind
	ToPlutusData() data.PlutusData
	fingerprint() []byte
}

// Bytes is an opaque byte string parameter, such as a product ID
type Bytes []byte

// BytesFromHex decodes a hex-encoded byte string parameter
func BytesFromHex(s string) (Bytes, error) {
	tmpBytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex parameter: %w", err)
	}
	return Bytes(tmpBytes), nil
}

func (b Bytes) Kind() Kind {
	return KindBytes
}

func (b Bytes) ToPlutusData() data.PlutusData {
	return data.NewByteString(b)
}

func (b Bytes) String() string {
	return hex.EncodeToString(b)
}

func (b Bytes) fingerprint() []byte {
	return b
}

// Hash is a 28-byte hash parameter, either a payment key hash or a script
// hash
type Hash common.Blake2b224

// HashFromHex decodes a hex-encoded 28-byte hash parameter
func HashFromHex(s string) (Hash, error) {
	tmpBytes, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex parameter: %w", err)
	}
	if len(tmpBytes) != common.Blake2b224Size {
		return Hash{}, fmt.Errorf(
			"invalid hash parameter length: %d",
			len(tmpBytes),
		)
	}
	return Hash(common.NewBlake2b224(tmpBytes)), nil
}

// KeyHashFromBech32 extracts the payment key hash from a bech32-encoded
// address
func KeyHashFromBech32(addr string) (Hash, error) {
	_, addrBase32, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return Hash{}, fmt.Errorf("failed to decode address: %w", err)
	}
	addrBytes, err := bech32.ConvertBits(addrBase32, 5, 8, false)
	if err != nil {
		return Hash{}, fmt.Errorf("failed to decode address: %w", err)
	}
	tmpAddr, err := common.NewAddressFromBytes(addrBytes)
	if err != nil {
		return Hash{}, fmt.Errorf("failed to decode address: %w", err)
	}
	return Hash(tmpAddr.PaymentKeyHash()), nil
}

func (h Hash) Kind() Kind {
	return KindHash
}

func (h Hash) ToPlutusData() data.PlutusData {
	return data.NewByteString(h[:])
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) fingerprint() []byte {
	return h[:]
}

// OutputRef is a transaction output reference parameter, used to pin a
// derivation to a single spendable seed
type OutputRef ledger.OutputRef

func (o OutputRef) Kind() Kind {
	return KindOutputRef
}

func (o OutputRef) ToPlutusData() data.PlutusData {
	return ledger.OutputRef(o).ToPlutusData()
}

func (o OutputRef) String() string {
	return ledger.OutputRef(o).String()
}

func (o OutputRef) fingerprint() []byte {
	ret := make([]byte, 0, common.Blake2b256Size+4)
	ret = append(ret, o.TxId.Bytes()...)
	ret = binary.BigEndian.AppendUint32(ret, o.OutputIndex)
	return ret
}

// List is an ordered parameter list
type List []Param

// Kinds returns the kind of each parameter in order
func (l List) Kinds() []Kind {
	ret := make([]Kind, len(l))
	for i, param := range l {
		ret[i] = param.Kind()
	}
	return ret
}

// Fingerprint returns a canonical byte encoding of the list, unique per
// (kinds, values) pair. Used as the derivation cache key.
func (l List) Fingerprint() []byte {
	var ret []byte
	for _, param := range l {
		value := param.fingerprint()
		ret = append(ret, byte(param.Kind()))
		// #nosec G115 -- parameter values are far below 4GiB
		ret = binary.BigEndian.AppendUint32(ret, uint32(len(value)))
		ret = append(ret, value...)
	}
	return ret
}
