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

// Package legacy migrates AAS v2 wire-schema trees into the v3 shape. All
// mappers are pure functions over the loosely-typed intermediate tree
// (map[string]any / []any) and perform no I/O.
//
// The v2 dialect differs from v3 in its identity fields (identification vs
// id), its asset binding (assetRef vs assetInformation), its reference
// encoding (keys.key with #text values vs a flat key list) and its
// language-tagged strings (langString wrappers vs {language, text} pairs).
package legacy

import (
	"strconv"
	"strings"
)

// ModelTypeAAS and friends are the v3 modelType discriminators assigned by
// the top-level mappers.
const (
	ModelTypeAAS                = "AssetAdministrationShell"
	ModelTypeSubmodel           = "Submodel"
	ModelTypeConceptDescription = "ConceptDescription"
)

/// IsV2 reports whether a shell-like node uses the v2 dialect: it exposes
// identification or assetRef instead of id and assetInformation.
func IsV2(node map[string]any) bool {
	if node == nil {
		return false
	}
	if _, ok := node["identification"]; ok {
		return true
	}
	if _, ok := node["assetRef"]; ok {
		return true
	}
	return false
}

// EnsureList coerces a single value into a one-element list. Nil yields nil,
// a list passes through unchanged.
func EnsureList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// Stringify renders scalar tree values as strings. XML attribute and #text
// payloads frequently surface as numbers or booleans in the parsed tree.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// keyValue reads a v2 or v3 reference key's value: the value field when
// present, else the #text payload.
func keyValue(key map[string]any) string {
	if v, ok := key["value"]; ok {
		return Stringify(v)
	}
	return Stringify(key["#text"])
}

// MapReference converts a v2 reference ({keys: {key: single-or-array}} with
// #text values) into the v3 shape ({type, keys: [{type, value}]}). Already
// v3-shaped input is re-emitted with the same inference applied to a missing
// type. Returns nil for empty or invalid input.
//
// Type inference keeps the legacy heuristic exactly: a single
// GlobalReference-typed key is an ExternalReference, every other non-empty
// key chain is a ModelReference. Real-world v2 files are inconsistent here,
// so the rule is deliberately not "corrected".
func MapReference(raw any) map[string]any {
	node, ok := raw.(map[string]any)
	if !ok || node == nil {
		return nil
	}

	keysRaw := node["keys"]
	if wrapper, ok := keysRaw.(map[string]any); ok {
		if inner, ok := wrapper["key"]; ok {
			keysRaw = inner
		}
	}

	keyList := EnsureList(keysRaw)
	keys := make([]any, 0, len(keyList))
	for _, k := range keyList {
		keyNode, ok := k.(map[string]any)
		if !ok {
			continue
		}
		value := keyValue(keyNode)
		if value == "" {
			continue
		}
		keys = append(keys, map[string]any{
			"type":  Stringify(keyNode["type"]),
			"value": value,
		})
	}
	if len(keys) == 0 {
		return nil
	}

	refType := Stringify(node["type"])
	if refType == "" {
		refType = inferReferenceType(keys)
	}
	return map[string]any{
		"type": refType,
		"keys": keys,
	}
}

func inferReferenceType(keys []any) string {
	if len(keys) == 1 {
		if first, ok := keys[0].(map[string]any); ok {
			if Stringify(first["type"]) == "GlobalReference" {
				return "ExternalReference"
			}
		}
	}
	return "ModelReference"
}

// MapIdentification extracts a v3 id from a v2 node: an existing id passes
// through, else identification.id, identification.#text, or a bare string
// identification.
func MapIdentification(node map[string]any) string {
	if id, ok := node["id"].(string); ok && id != "" {
		return id
	}
	switch ident := node["identification"].(type) {
	case map[string]any:
		if id, ok := ident["id"].(string); ok && id != "" {
			return id
		}
		return Stringify(ident["#text"])
	case string:
		return ident
	}
	return ""
}

// MapAssetInformation passes an existing v3 assetInformation through
// unchanged; otherwise it constructs one from the v2 kind and assetRef
// fields. The asset kind defaults to Instance when entirely absent, and the
// first key of the mapped assetRef becomes the globalAssetId.
func MapAssetInformation(node map[string]any) map[string]any {
	if info, ok := node["assetInformation"].(map[string]any); ok {
		return info
	}

	kind := "Instance"
	if k := Stringify(node["kind"]); k != "" {
		kind = k
	}
	info := map[string]any{"assetKind": kind}

	if ref := MapReference(node["assetRef"]); ref != nil {
		if keys, ok := ref["keys"].([]any); ok && len(keys) > 0 {
			if first, ok := keys[0].(map[string]any); ok {
				info["globalAssetId"] = Stringify(first["value"])
			}
		}
	}
	return info
}

// MapAAS assembles a v3 AssetAdministrationShell from a v2 shell node. The
// submodelRefs wrapper (single or array) becomes submodels: []Reference, and
// the field is omitted entirely, not emitted empty, when no refs exist.
// Legacy-only fields are stripped from the output.
func MapAAS(node map[string]any) map[string]any {
	out := copyTree(node)
	out["modelType"] = ModelTypeAAS
	out["id"] = MapIdentification(node)
	out["assetInformation"] = MapAssetInformation(node)

	if refs := mapSubmodelRefs(node["submodelRefs"]); len(refs) > 0 {
		out["submodels"] = refs
	} else {
		delete(out, "submodels")
	}

	if derived := MapReference(node["derivedFrom"]); derived != nil {
		out["derivedFrom"] = derived
	}

	stripLegacyFields(out)
	return out
}

func mapSubmodelRefs(raw any) []any {
	wrapper, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	var refs []any
	for _, r := range EnsureList(wrapper["submodelRef"]) {
		if mapped := MapReference(r); mapped != nil {
			refs = append(refs, mapped)
		}
	}
	return refs
}

// MapSubmodel assembles a v3 Submodel from a v2 submodel node. The v2
// modelling kind survives flattened to a plain string; submodel elements are
// left for the structural transformer.
func MapSubmodel(node map[string]any) map[string]any {
	out := copyTree(node)
	out["modelType"] = ModelTypeSubmodel
	out["id"] = MapIdentification(node)

	if kind := Stringify(flattenText(node["kind"])); kind != "" {
		out["kind"] = kind
	} else {
		delete(out, "kind")
	}
	if ref := MapReference(node["semanticId"]); ref != nil {
		out["semanticId"] = ref
	}

	delete(out, "identification")
	delete(out, "assetRef")
	delete(out, "submodelRefs")
	return out
}

// MapConceptDescription assembles a v3 ConceptDescription from a v2 node.
func MapConceptDescription(node map[string]any) map[string]any {
	out := copyTree(node)
	out["modelType"] = ModelTypeConceptDescription
	out["id"] = MapIdentification(node)
	stripLegacyFields(out)
	return out
}

// MapValueType normalizes a valueType string to the xs:-prefixed XSD
// vocabulary. Empty or missing values become xs:string; already prefixed
// names pass through; bare names get the prefix added verbatim without a
// check against the XSD enum, so unknown names survive rather than being
// rejected.
func MapValueType(raw any) string {
	name := Stringify(flattenText(raw))
	if name == "" {
		return "xs:string"
	}
	if strings.HasPrefix(name, "xs:") {
		return name
	}
	return "xs:" + name
}

// MapMultiLanguageValue converts the v2 langString wrapper (single or array
// of {lang, #text}) into the flat v3 list of {language, text}. Numeric #text
// payloads are stringified. An already-flat list passes through unchanged;
// nil yields an empty list.
func MapMultiLanguageValue(raw any) []any {
	switch t := raw.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case map[string]any:
		var entries []any
		for _, ls := range EnsureList(t["langString"]) {
			lsNode, ok := ls.(map[string]any)
			if !ok {
				continue
			}
			entries = append(entries, map[string]any{
				"language": Stringify(lsNode["lang"]),
				"text":     Stringify(lsNode["#text"]),
			})
		}
		if entries == nil {
			return []any{}
		}
		return entries
	default:
		return []any{}
	}
}

// flattenText unwraps an XML text node ({#text: v}) to its payload.
func flattenText(v any) any {
	if node, ok := v.(map[string]any); ok {
		if text, ok := node["#text"]; ok {
			return text
		}
	}
	return v
}

func stripLegacyFields(node map[string]any) {
	delete(node, "identification")
	delete(node, "assetRef")
	delete(node, "kind")
	delete(node, "submodelRefs")
}

func copyTree(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}
	return out
}
