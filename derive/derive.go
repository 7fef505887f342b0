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

// Package derive turns a validator template plus an ordered parameter list
// into a concrete script, script hash and address. Derivation is pure: the
// same template and parameters always produce the same result, and distinct
// parameters produce distinct scripts.
package derive

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/kiln/blueprint"
	"github.com/blinklabs-io/kiln/params"
	"github.com/blinklabs-io/plutigo/syn"
)

// ErrInvalidParameter is a sentinel for matching InvalidParameterError
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError is returned when a parameter list does not match the
// registered schema for a template
type InvalidParameterError struct {
	Template string
	Reason   string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf(
		"invalid parameters for template %s: %s",
		e.Template,
		e.Reason,
	)
}

func (e InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// Derivation is the result of applying parameters to a validator template
type Derivation struct {
	ScriptHash common.Blake2b224
	Address    common.Address
	Script     common.PlutusV3Script
}

// Deriver performs parameter application against validator templates from a
// blueprint store. Results are cached by template name and parameter
// fingerprint, so repeated derivations of the same instance are free.
type Deriver struct {
	networkId uint
	store     *blueprint.Store
	mutex     sync.RWMutex
	schemas   map[string][]params.Kind
	cache     map[string]Derivation
}

// New creates a Deriver for the given network and blueprint store
func New(networkId uint, store *blueprint.Store) *Deriver {
	return &Deriver{
		networkId: networkId,
		store:     store,
		schemas:   make(map[string][]params.Kind),
		cache:     make(map[string]Derivation),
	}
}

// RegisterSchema declares the expected parameter kinds, in order, for a
// template. Derive rejects any parameter list that does not match. Safe to
// call concurrently with Derive.
func (d *Deriver) RegisterSchema(template string, kinds []params.Kind) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.schemas[template] = kinds
}

// Derive applies the given parameters to the named template and returns the
// resulting script, script hash and address
func (d *Deriver) Derive(
	template string,
	paramList params.List,
) (Derivation, error) {
	if err := d.checkSchema(template, paramList); err != nil {
		return Derivation{}, err
	}
	cacheKey := template + "\x00" + string(paramList.Fingerprint())
	d.mutex.RLock()
	if cached, ok := d.cache[cacheKey]; ok {
		d.mutex.RUnlock()
		return cached, nil
	}
	d.mutex.RUnlock()
	validator, err := d.store.Validator(template)
	if err != nil {
		return Derivation{}, err
	}
	script, err := validator.Script()
	if err != nil {
		return Derivation{}, err
	}
	appliedScript, err := applyParams(script, paramList)
	if err != nil {
		return Derivation{}, fmt.Errorf(
			"failed to apply parameters to template %s: %w",
			template,
			err,
		)
	}
	scriptHash := appliedScript.Hash()
	addr, err := common.NewAddressFromParts(
		common.AddressTypeScriptNone,
		// #nosec G115 -- network IDs are 0 or 1
		uint8(d.networkId),
		scriptHash.Bytes(),
		nil,
	)
	if err != nil {
		return Derivation{}, fmt.Errorf("failed to build address: %w", err)
	}
	ret := Derivation{
		ScriptHash: scriptHash,
		Address:    addr,
		Script:     appliedScript,
	}
	d.mutex.Lock()
	d.cache[cacheKey] = ret
	d.mutex.Unlock()
	return ret, nil
}

func (d *Deriver) checkSchema(template string, paramList params.List) error {
	d.mutex.RLock()
	kinds, ok := d.schemas[template]
	d.mutex.RUnlock()
	if !ok {
		return InvalidParameterError{
			Template: template,
			Reason:   "no parameter schema registered",
		}
	}
	if len(paramList) != len(kinds) {
		return InvalidParameterError{
			Template: template,
			Reason: fmt.Sprintf(
				"expected %d parameters, got %d",
				len(kinds),
				len(paramList),
			),
		}
	}
	for i, param := range paramList {
		if param.Kind() != kinds[i] {
			return InvalidParameterError{
				Template: template,
				Reason: fmt.Sprintf(
					"parameter %d: expected %s, got %s",
					i,
					kinds[i],
					param.Kind(),
				),
			}
		}
	}
	return nil
}

// applyParams decodes the CBOR-wrapped UPLC program, wraps its term in one
// application node per parameter and re-encodes the result as a
// CBOR-wrapped script
func applyParams(
	script common.PlutusV3Script,
	paramList params.List,
) (common.PlutusV3Script, error) {
	// Decode raw script as bytestring to get actual script bytes
	var innerScript []byte
	if _, err := cbor.Decode([]byte(script), &innerScript); err != nil {
		return nil, fmt.Errorf("unwrap script: %w", err)
	}
	program, err := syn.Decode[syn.DeBruijn](innerScript)
	if err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	term := program.Term
	for _, param := range paramList {
		term = &syn.Apply[syn.DeBruijn]{
			Function: term,
			Argument: &syn.Constant{
				Con: &syn.Data{
					Inner: param.ToPlutusData(),
				},
			},
		}
	}
	appliedProgram := &syn.Program[syn.DeBruijn]{
		Version: program.Version,
		Term:    term,
	}
	flatBytes, err := syn.Encode[syn.DeBruijn](appliedProgram)
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	wrappedBytes, err := cbor.Encode(flatBytes)
	if err != nil {
		return nil, fmt.Errorf("wrap script: %w", err)
	}
	return common.PlutusV3Script(wrappedBytes), nil
}

// ScriptHashFromHex parses a hex-encoded script hash. Provided as a
// convenience for callers working with persisted derivations.
func ScriptHashFromHex(s string) (common.Blake2b224, error) {
	tmpBytes, err := hex.DecodeString(s)
	if err != nil {
		return common.Blake2b224{}, fmt.Errorf("invalid script hash: %w", err)
	}
	if len(tmpBytes) != common.Blake2b224Size {
		return common.Blake2b224{}, fmt.Errorf(
			"invalid script hash length: %d",
			len(tmpBytes),
		)
	}
	return common.NewBlake2b224(tmpBytes), nil
}
