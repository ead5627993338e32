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

// Package opc implements the Open Packaging Conventions surface needed to
// navigate AASX containers: relationship documents and relative target
// resolution.
package opc

import (
	"encoding/xml"
	"strings"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

// Relationship type suffixes used by AASX packages. Real-world files use both
// the admin-shell.io and www.admin-shell.io URN prefixes, so matching is done
// on the suffix.
const (
	TypeSuffixOrigin    = "aasx-origin"
	TypeSuffixSpec      = "aas-spec"
	TypeSuffixSuppl     = "aas-suppl"
	TypeSuffixThumbnail = "metadata/thumbnail"
)

// RootRelationshipsPath is the well-known location of the package-level
// relationship document.
const RootRelationshipsPath = "_rels/.rels"

// ContentTypesPath is the OPC content-types entry, excluded from the
// supplementary-file sweep.
const ContentTypesPath = "[Content_Types].xml"

// Relationship is one entry of an OPC relationship document.
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type relationshipsDoc struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// ParseRelationships decodes an OPC relationship document. Documents with
// zero, one, or many Relationship elements are all valid; a single element
// yields a one-entry list.
func ParseRelationships(data []byte) ([]Relationship, error) {
	var doc relationshipsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, common.NewErrPackage("unparseable relationship document: " + err.Error())
	}
	return doc.Relationships, nil
}

// FindByTypeSuffix returns every relationship whose Type ends in the given
// suffix, preserving document order.
func FindByTypeSuffix(rels []Relationship, suffix string) []Relationship {
	var out []Relationship
	for _, r := range rels {
		if strings.HasSuffix(r.Type, suffix) {
			out = append(out, r)
		}
	}
	return out
}

// FirstByTypeSuffix returns the first relationship whose Type ends in the
// given suffix, or false when none matches.
func FirstByTypeSuffix(rels []Relationship, suffix string) (Relationship, bool) {
	for _, r := range rels {
		if strings.HasSuffix(r.Type, suffix) {
			return r, true
		}
	}
	return Relationship{}, false
}

// RelationshipsPathFor returns the path of the relationship document that
// describes the given entry: the sibling _rels/<name>.rels under the entry's
// directory, or _rels/<name>.rels at the archive root when the entry lives
// at the root.
func RelationshipsPathFor(entryPath string) string {
	entryPath = strings.TrimPrefix(entryPath, "/")
	idx := strings.LastIndex(entryPath, "/")
	if idx < 0 {
		return "_rels/" + entryPath + ".rels"
	}
	return entryPath[:idx] + "/_rels/" + entryPath[idx+1:] + ".rels"
}

// ResolveRelativePath resolves an OPC relationship target against the
// directory of basePath and returns a normalized archive path. Absolute
// targets (leading slash) are taken as-is with the slash stripped. "." and
// ".." segments are resolved; walking past the archive root clamps instead
// of failing, since ZIP paths carry no true root guard.
func ResolveRelativePath(basePath string, relativeTarget string) string {
	if strings.HasPrefix(relativeTarget, "/") {
		return strings.TrimPrefix(relativeTarget, "/")
	}

	basePath = strings.TrimPrefix(basePath, "/")
	var stack []string
	if idx := strings.LastIndex(basePath, "/"); idx >= 0 {
		stack = strings.Split(basePath[:idx], "/")
	}

	for _, segment := range strings.Split(relativeTarget, "/") {
		switch segment {
		case "", ".":
			// no-op
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, segment)
		}
	}
	return strings.Join(stack, "/")
}
