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

package common

import (
	"errors"
	"strings"
)

type ErrorHandler struct {
	MessageType   string `json:"messageType"`
	Text          string `json:"text"`
	Code          string `json:"code,omitempty"`
	CorrelationId string `json:"correlationId,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

func NewErrorHandler(messageType string, text error, code string, correlationId string, timestamp string) *ErrorHandler {
	return &ErrorHandler{
		MessageType:   messageType,
		Text:          text.Error(),
		Code:          code,
		CorrelationId: correlationId,
		Timestamp:     timestamp,
	}
}

func NewErrNotFound(elementId string) error {
	return errors.New("404 Not Found: " + elementId)
}

func NewErrBadRequest(message string) error {
	return errors.New("400 Bad Request: " + message)
}

// NewErrArchive marks a byte stream that could not be opened as a ZIP container.
func NewErrArchive(message string) error {
	return errors.New("Archive Error: " + message)
}

// NewErrPackage marks a structurally unusable AASX package, e.g. a missing
// root relationships entry or no locatable spec entry after all fallbacks.
func NewErrPackage(message string) error {
	return errors.New("Package Error: " + message)
}

func NewErrUnsupportedFormat(message string) error {
	return errors.New("Unsupported Format: " + message)
}

func NewErrEmptyFile() error {
	return errors.New("Empty File: input contains no data")
}

func IsErrNotFound(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "404 Not Found: ")
}

func IsErrBadRequest(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "400 Bad Request: ")
}

func IsErrArchive(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "Archive Error: ")
}

func IsErrPackage(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "Package Error: ")
}

func IsErrUnsupportedFormat(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "Unsupported Format: ")
}

func IsErrEmptyFile(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "Empty File: ")
}
