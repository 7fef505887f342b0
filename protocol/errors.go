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

package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/blinklabs-io/kiln/ledger"
)

var (
	// ErrStateNotFound is a sentinel for matching StateNotFoundError
	ErrStateNotFound = errors.New("state not found")

	// ErrDuplicateProductId is a sentinel for matching
	// DuplicateProductIdError
	ErrDuplicateProductId = errors.New("duplicate product ID")

	// ErrSeedAlreadySpent is a sentinel for matching SeedAlreadySpentError
	ErrSeedAlreadySpent = errors.New("seed already spent")

	// ErrAuthorizationFailed is a sentinel for matching
	// AuthorizationFailedError
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrSubmissionRejected is a sentinel for matching
	// SubmissionRejectedError
	ErrSubmissionRejected = errors.New("submission rejected")
)

// StateNotFoundError is returned when an expected live UTxO does not exist,
// such as reading a product that was never created
type StateNotFoundError struct {
	What string
}

func (e StateNotFoundError) Error() string {
	return fmt.Sprintf("state not found: %s", e.What)
}

func (e StateNotFoundError) Unwrap() error {
	return ErrStateNotFound
}

// DuplicateProductIdError is returned when a product ID already appears in
// the factory registry
type DuplicateProductIdError struct {
	ProductId []byte
}

func (e DuplicateProductIdError) Error() string {
	return fmt.Sprintf(
		"duplicate product ID: %s",
		hex.EncodeToString(e.ProductId),
	)
}

func (e DuplicateProductIdError) Unwrap() error {
	return ErrDuplicateProductId
}

// SeedAlreadySpentError is returned when a factory creation names a seed
// reference that was already consumed. A consumed seed can never be used
// again; the caller must choose a fresh one.
type SeedAlreadySpentError struct {
	Seed ledger.OutputRef
}

func (e SeedAlreadySpentError) Error() string {
	return fmt.Sprintf("seed already spent: %s", e.Seed)
}

func (e SeedAlreadySpentError) Unwrap() error {
	return ErrSeedAlreadySpent
}

// AuthorizationFailedError is returned when an operation lacks valid
// authorization from the factory owner
type AuthorizationFailedError struct {
	Reason string
}

func (e AuthorizationFailedError) Error() string {
	return fmt.Sprintf("authorization failed: %s", e.Reason)
}

func (e AuthorizationFailedError) Unwrap() error {
	return ErrAuthorizationFailed
}

// SubmissionRejectedError is returned when the ledger gateway rejects a
// submitted plan. The usual cause is losing a race for a shared input, in
// which case the caller refreshes state and rebuilds the plan.
type SubmissionRejectedError struct {
	Err error
}

func (e SubmissionRejectedError) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Err)
}

func (e SubmissionRejectedError) Unwrap() error {
	return ErrSubmissionRejected
}
