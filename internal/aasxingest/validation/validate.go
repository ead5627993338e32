/*******************************************************************************
* Copyright (C) 2026 the Eclipse BaSyx Authors and Fraunhofer IESE
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

package validation

import (
	"errors"
	"fmt"

	"github.com/FriedJannik/aas-go-sdk/jsonization"
	"github.com/FriedJannik/aas-go-sdk/reporting"
	aastypes "github.com/FriedJannik/aas-go-sdk/types"
	"github.com/FriedJannik/aas-go-sdk/verification"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/config"
)

// Error is one structural or semantic deviation found while validating an
// environment tree.
type Error struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Options selects the validation mode. Strict runs semantic verification
// after a successful deserialization; lenient mode reports the environment
// as valid once deserialization succeeds.
type Options struct {
	Strict                bool
	MaxVerificationErrors int
}

// Result carries the outcome of a validation call. Environment is nil
// exactly when structural deserialization failed; that is the one hard
// boundary between recoverable and unrecoverable input.
type Result struct {
	Environment           aastypes.IEnvironment
	Valid                 bool
	DeserializationErrors []Error
	VerificationErrors    []Error
}

// AllErrors returns the deserialization errors followed by the verification
// errors.
func (r *Result) AllErrors() []Error {
	out := make([]Error, 0, len(r.DeserializationErrors)+len(r.VerificationErrors))
	out = append(out, r.DeserializationErrors...)
	out = append(out, r.VerificationErrors...)
	return out
}

// Validate runs the deep clean, attempts the structural deserialization into
// the typed v3 model, and, in strict mode, enumerates every semantic
// constraint violation up to the configured ceiling.
func Validate(tree map[string]any, opts Options) *Result {
	if opts.MaxVerificationErrors <= 0 {
		opts.MaxVerificationErrors = config.DefaultMaxVerificationCount
	}

	cleaned := DeepClean(tree)

	env, err := jsonization.EnvironmentFromJsonable(cleaned)
	if err != nil {
		return &Result{
			DeserializationErrors: []Error{deserializationError(err)},
		}
	}

	result := &Result{Environment: env}
	if !opts.Strict {
		result.Valid = true
		return result
	}

	verification.Verify(env, func(ve *verification.VerificationError) bool {
		if len(result.VerificationErrors) >= opts.MaxVerificationErrors {
			result.VerificationErrors = append(result.VerificationErrors, Error{
				Message: "...and more errors",
			})
			return true // stop enumerating
		}
		result.VerificationErrors = append(result.VerificationErrors, verificationError(ve))
		return false
	})

	result.Valid = len(result.VerificationErrors) == 0
	return result
}

func deserializationError(err error) Error {
	var de *jsonization.DeserializationError
	if errors.As(err, &de) && de.Path != nil {
		return Error{Path: reporting.ToJSONPath(de.Path), Message: de.Message}
	}
	return Error{Message: err.Error()}
}

func verificationError(ve *verification.VerificationError) Error {
	if ve.Path != nil {
		return Error{Path: reporting.ToJSONPath(ve.Path), Message: ve.Message}
	}
	return Error{Message: ve.Error()}
}

// Serialize renders a typed environment back into its jsonable tree, for
// round-trips and persistence.
func Serialize(env aastypes.IEnvironment) (map[string]any, error) {
	jsonable, err := jsonization.ToJsonable(env)
	if err != nil {
		return nil, fmt.Errorf("serialize environment: %w", err)
	}
	return jsonable, nil
}
