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

// Package datum defines the persisted on-chain state layouts for factories
// and products, with conversions between Go values and Plutus data.
package datum

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
)

// FactoryDatum is the factory's persisted state: the ordered registry of
// product IDs spawned so far. New entries are appended at the tail; the
// list is never reordered or truncated.
type FactoryDatum struct {
	ProductIds [][]byte
}

// NewFactoryDatum returns an empty factory registry
func NewFactoryDatum() FactoryDatum {
	return FactoryDatum{}
}

// Contains returns true when the registry already holds the given product ID
func (d FactoryDatum) Contains(productId []byte) bool {
	for _, id := range d.ProductIds {
		if bytes.Equal(id, productId) {
			return true
		}
	}
	return false
}

// WithProduct returns a copy of the registry with the given product ID
// appended at the tail. The receiver is not modified.
func (d FactoryDatum) WithProduct(productId []byte) FactoryDatum {
	newIds := make([][]byte, 0, len(d.ProductIds)+1)
	newIds = append(newIds, d.ProductIds...)
	newIds = append(newIds, bytes.Clone(productId))
	return FactoryDatum{ProductIds: newIds}
}

func (d FactoryDatum) ToPlutusData() data.PlutusData {
	tmpIds := make([]data.PlutusData, len(d.ProductIds))
	for i, id := range d.ProductIds {
		tmpIds[i] = data.NewByteString(id)
	}
	return data.NewConstr(
		0,
		data.NewList(tmpIds...),
	)
}

// FactoryDatumFromPlutusData decodes a factory registry from Plutus data
func FactoryDatumFromPlutusData(pd data.PlutusData) (FactoryDatum, error) {
	constr, ok := pd.(*data.Constr)
	if !ok || constr.Tag != 0 || len(constr.Fields) != 1 {
		return FactoryDatum{}, errors.New("unexpected factory datum shape")
	}
	list, ok := constr.Fields[0].(*data.List)
	if !ok {
		return FactoryDatum{}, errors.New("unexpected factory datum shape")
	}
	ret := FactoryDatum{
		ProductIds: make([][]byte, 0, len(list.Items)),
	}
	for _, item := range list.Items {
		bs, ok := item.(*data.ByteString)
		if !ok {
			return FactoryDatum{}, errors.New(
				"unexpected factory datum shape",
			)
		}
		ret.ProductIds = append(ret.ProductIds, bs.Inner)
	}
	return ret, nil
}

// ProductDatum is a product's persisted state: an opaque tag byte string
type ProductDatum struct {
	Tag []byte
}

func (d ProductDatum) ToPlutusData() data.PlutusData {
	return data.NewConstr(
		0,
		data.NewByteString(d.Tag),
	)
}

// ProductDatumFromPlutusData decodes a product state from Plutus data
func ProductDatumFromPlutusData(pd data.PlutusData) (ProductDatum, error) {
	constr, ok := pd.(*data.Constr)
	if !ok || constr.Tag != 0 || len(constr.Fields) != 1 {
		return ProductDatum{}, errors.New("unexpected product datum shape")
	}
	bs, ok := constr.Fields[0].(*data.ByteString)
	if !ok {
		return ProductDatum{}, errors.New("unexpected product datum shape")
	}
	return ProductDatum{Tag: bs.Inner}, nil
}

// CommonDatum wraps any Plutus-data-convertible value as an attachable
// ledger datum
func CommonDatum(val interface {
	ToPlutusData() data.PlutusData
}) (*common.Datum, error) {
	pdCbor, err := data.Encode(val.ToPlutusData())
	if err != nil {
		return nil, fmt.Errorf("failed to encode datum: %w", err)
	}
	var ret common.Datum
	if err := ret.UnmarshalCBOR(pdCbor); err != nil {
		return nil, fmt.Errorf("failed to build datum: %w", err)
	}
	return &ret, nil
}

// FactoryDatumFromDatum decodes a factory registry from an attached ledger
// datum
func FactoryDatumFromDatum(d *common.Datum) (FactoryDatum, error) {
	if d == nil || d.Data == nil {
		return FactoryDatum{}, errors.New("missing factory datum")
	}
	return FactoryDatumFromPlutusData(d.Data)
}

// ProductDatumFromDatum decodes a product state from an attached ledger
// datum
func ProductDatumFromDatum(d *common.Datum) (ProductDatum, error) {
	if d == nil || d.Data == nil {
		return ProductDatum{}, errors.New("missing product datum")
	}
	return ProductDatumFromPlutusData(d.Data)
}
