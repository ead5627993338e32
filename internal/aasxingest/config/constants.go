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

// Package config provides configuration constants for the AASX ingestion
// component.
package config

const (
	// DefaultMaxVerificationCount is the ceiling for semantic verification
	// errors collected per parse before enumeration stops early.
	DefaultMaxVerificationCount = 100

	// DefaultMaxElementDepth is the nesting ceiling for submodel element
	// trees. Elements beyond it are dropped with a validation issue instead
	// of risking unbounded recursion on adversarial input.
	DefaultMaxElementDepth = 512

	// DefaultWorkerCount is the default number of concurrent parse workers.
	DefaultWorkerCount = 4

	// SniffLength is the number of leading bytes inspected for format
	// detection when the filename gives no hint.
	SniffLength = 4
)
