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

// Package blueprint loads compiled validator templates from a CIP-57 Plutus
// blueprint document and provides lookup by template name.
package blueprint

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/jinzhu/copier"
)

// ErrTemplateNotFound is a sentinel for matching TemplateNotFoundError
var ErrTemplateNotFound = errors.New("validator not found")

// TemplateNotFoundError is returned when a blueprint has no validator
// matching the requested name
type TemplateNotFoundError struct {
	Name string
}

func (e TemplateNotFoundError) Error() string {
	return fmt.Sprintf("validator not found: %s", e.Name)
}

func (e TemplateNotFoundError) Unwrap() error {
	return ErrTemplateNotFound
}

// Blueprint is a parsed CIP-57 Plutus blueprint document
type Blueprint struct {
	Preamble   Preamble    `json:"preamble"`
	Validators []Validator `json:"validators"`
}

// Preamble carries blueprint-level metadata
type Preamble struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Version       string `json:"version"`
	PlutusVersion string `json:"plutusVersion"`
	Compiler      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"compiler"`
}

// Validator is a single compiled validator entry. CompiledCode is the
// hex-encoded CBOR-wrapped UPLC program before parameter application.
type Validator struct {
	Title        string `json:"title"`
	CompiledCode string `json:"compiledCode"`
	Hash         string `json:"hash"`
}

// Script returns the compiled code as an unapplied PlutusV3 script
func (v Validator) Script() (common.PlutusV3Script, error) {
	tmpBytes, err := hex.DecodeString(v.CompiledCode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode compiled code: %w", err)
	}
	return common.PlutusV3Script(tmpBytes), nil
}

// Store holds the validators from a loaded blueprint and resolves template
// names to them
type Store struct {
	validators []Validator
}

// NewStore creates a Store from an already-parsed blueprint
func NewStore(bp Blueprint) *Store {
	return &Store{
		validators: bp.Validators,
	}
}

// NewStoreFromReader parses a blueprint JSON document from the provided
// reader
func NewStoreFromReader(r io.Reader) (*Store, error) {
	rawBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var bp Blueprint
	if err := json.Unmarshal(rawBytes, &bp); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}
	return NewStore(bp), nil
}

// NewStoreFromFile loads a blueprint JSON document from the named file
func NewStoreFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewStoreFromReader(f)
}

// Validator returns the validator for the given template name. Blueprint
// titles take the form "<module>.<purpose>" (for example "factory.spend");
// a name matches on exact title or on the title's leading module segment.
func (s *Store) Validator(name string) (Validator, error) {
	for _, v := range s.validators {
		if v.Title == name || strings.HasPrefix(v.Title, name+".") {
			return v, nil
		}
	}
	return Validator{}, TemplateNotFoundError{Name: name}
}

// Validators returns a copy of all loaded validators
func (s *Store) Validators() []Validator {
	var ret []Validator
	if err := copier.Copy(&ret, s.validators); err != nil {
		return nil
	}
	return ret
}
