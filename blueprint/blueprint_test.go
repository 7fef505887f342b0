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

package blueprint_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/kiln/blueprint"
)

var testBlueprintJson = `
{
  "preamble": {
    "title": "example/factory",
    "description": "Factory validators",
    "version": "0.1.0",
    "plutusVersion": "v3",
    "compiler": {
      "name": "Aiken",
      "version": "v1.1.0"
    }
  },
  "validators": [
    {
      "title": "factory.spend",
      "compiledCode": "450101002499",
      "hash": "923918e403bf43c34b4ef6b48eb2ee04babed17320d8d1b9ff9ad086"
    },
    {
      "title": "factory_marker.mint",
      "compiledCode": "450101002499",
      "hash": "baa9a47d504d4b9d7dbabbf31e5719d2f22a1ecbdf0851b5e95c7a09"
    },
    {
      "title": "product.spend",
      "compiledCode": "450101002499",
      "hash": "22a9e2c32e5b6b3b42877a9ac5f6c1ff2d07a1b83b3f9d5e6ab9d5c7"
    }
  ]
}
`

func testStore(t *testing.T) *blueprint.Store {
	t.Helper()
	store, err := blueprint.NewStoreFromReader(
		strings.NewReader(testBlueprintJson),
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return store
}

func TestStoreLookupByPrefix(t *testing.T) {
	store := testStore(t)
	testDefs := map[string]string{
		"factory":        "factory.spend",
		"factory_marker": "factory_marker.mint",
		"product":        "product.spend",
	}
	for name, expectedTitle := range testDefs {
		validator, err := store.Validator(name)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if validator.Title != expectedTitle {
			t.Fatalf(
				"did not get expected validator: got %s, wanted %s",
				validator.Title,
				expectedTitle,
			)
		}
	}
}

func TestStoreLookupExactTitle(t *testing.T) {
	store := testStore(t)
	validator, err := store.Validator("factory.spend")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if validator.Title != "factory.spend" {
		t.Fatalf(
			"did not get expected validator: got %s, wanted %s",
			validator.Title,
			"factory.spend",
		)
	}
}

func TestStoreLookupPrefixDoesNotMatchSubstring(t *testing.T) {
	store := testStore(t)
	// "factory" must not match "factory_marker.mint"
	validator, err := store.Validator("factory")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if validator.Title == "factory_marker.mint" {
		t.Fatalf("prefix lookup matched wrong validator: %s", validator.Title)
	}
}

func TestStoreLookupNotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.Validator("widget")
	if err == nil {
		t.Fatalf("did not get expected error")
	}
	if !errors.Is(err, blueprint.ErrTemplateNotFound) {
		t.Fatalf(
			"did not get expected error: got %s, wanted %s",
			err,
			blueprint.ErrTemplateNotFound,
		)
	}
	expectedMsg := "validator not found: widget"
	if err.Error() != expectedMsg {
		t.Fatalf(
			"did not get expected error message: got %s, wanted %s",
			err.Error(),
			expectedMsg,
		)
	}
}

func TestValidatorScript(t *testing.T) {
	store := testStore(t)
	validator, err := store.Validator("factory")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	script, err := validator.Script()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(script) == 0 {
		t.Fatalf("did not get expected script bytes")
	}
}

func TestStoreBadCompiledCode(t *testing.T) {
	store := blueprint.NewStore(blueprint.Blueprint{
		Validators: []blueprint.Validator{
			{
				Title:        "bad.spend",
				CompiledCode: "not-hex",
			},
		},
	})
	validator, err := store.Validator("bad")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := validator.Script(); err == nil {
		t.Fatalf("did not get expected error for invalid compiled code")
	}
}
