// Package validation gates raw environment trees through a two-phase check:
// structural deserialization into the typed AAS v3 model, then semantic
// constraint verification. A preprocessing pass repairs known-common spec
// deviations first so real-world non-conformant files survive the gate.
package validation

import (
	"strings"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/config"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/legacy"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/normalize"
)

// PlaceholderGlobalAssetID is inserted when assetInformation carries no
// globalAssetId at all; downstream consumers rely on the field existing.
const PlaceholderGlobalAssetID = "urn:basyx:placeholder:globalAssetId"

// referenceTypes are the valid discriminators of a v3 Reference.
var referenceTypes = map[string]bool{
	"ExternalReference": true,
	"ModelReference":    true,
}

// collectionLikeTypes own a nested element sequence under their value key.
var collectionLikeTypes = map[string]bool{
	"SubmodelElementCollection": true,
	"SubmodelElementList":       true,
}

// valueTypeAliases maps known non-standard valueType spellings to valid XSD
// type names.
var valueTypeAliases = map[string]string{
	"langString":    "xs:string",
	"xs:langString": "xs:string",
}

// DeepClean repairs known-common spec deviations in a raw environment tree
// before structural validation: references without keys, invalid description
// and displayName shapes, missing globalAssetId, numeric version and
// revision fields, value shapes that contradict the declared modelType, and
// non-standard valueType spellings. These deviations are considered noise
// rather than information, so the repairs are silent.
//
// The input tree is not modified; a cleaned copy is returned.
func DeepClean(tree map[string]any) map[string]any {
	cleaned, _ := cleanValue(tree, 0).(map[string]any)
	if cleaned == nil {
		return map[string]any{}
	}
	return cleaned
}

func cleanValue(v any, depth int) any {
	if depth > config.DefaultMaxElementDepth {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		return cleanNode(t, depth)
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, cleanValue(item, depth+1))
		}
		return out
	default:
		return v
	}
}

func cleanNode(node map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}

	// v2 JSON wraps the discriminator in an object
	if wrapper, ok := out["modelType"].(map[string]any); ok {
		out["modelType"] = legacy.Stringify(wrapper["name"])
	}

	// a Reference without keys gets the empty list
	if refType := legacy.Stringify(out["type"]); referenceTypes[refType] {
		if _, ok := out["keys"].([]any); !ok {
			out["keys"] = []any{}
		}
	}

	// non-array description/displayName is unrecoverable, drop the field
	for _, field := range []string{"description", "displayName"} {
		if raw, present := out[field]; present {
			if _, ok := raw.([]any); !ok {
				delete(out, field)
			}
		}
	}

	// assetInformation without a globalAssetId gets a placeholder
	if _, isAssetInfo := out["assetKind"]; isAssetInfo {
		if legacy.Stringify(out["globalAssetId"]) == "" {
			out["globalAssetId"] = PlaceholderGlobalAssetID
		}
	}

	// semanticId/valueId whose keys is not an array is dropped wholesale
	for _, field := range []string{"semanticId", "valueId"} {
		if ref, ok := out[field].(map[string]any); ok {
			if _, ok := ref["keys"].([]any); !ok {
				delete(out, field)
			}
		}
	}

	for _, field := range []string{"version", "revision"} {
		switch out[field].(type) {
		case float64, int, int64, bool:
			out[field] = legacy.Stringify(out[field])
		}
	}

	if vt, present := out["valueType"]; present {
		out["valueType"] = cleanValueType(legacy.Stringify(vt))
	}

	cleanElementValue(out)

	for k, v := range out {
		out[k] = cleanValue(v, depth+1)
	}
	return out
}

// cleanElementValue coerces a value field whose shape contradicts the
// element's declared modelType.
func cleanElementValue(node map[string]any) {
	modelType := legacy.Stringify(node["modelType"])
	if modelType == "" {
		return
	}
	raw, present := node["value"]
	if !present {
		return
	}

	if collectionLikeTypes[modelType] {
		if _, ok := raw.([]any); !ok {
			node["value"] = normalize.EnsureArray(raw)
		}
		return
	}

	switch modelType {
	case "MultiLanguageProperty":
		if _, ok := raw.([]any); !ok {
			node["value"] = legacy.MapMultiLanguageValue(raw)
		}
	case "Property", "Range", "File", "Blob", "ReferenceElement", "Entity":
		switch t := raw.(type) {
		case string:
			// already the expected shape (ReferenceElement aside, which
			// deserialization reports on its own)
		case float64, int, int64, bool:
			node["value"] = legacy.Stringify(t)
		case map[string]any:
			if modelType == "ReferenceElement" {
				return
			}
			node["value"] = extractScalar(t)
		case []any:
			node["value"] = ""
		}
	}
}

// extractScalar pulls a usable string out of an object-shaped scalar value:
// a nested value or text field wins, anything else empties the field.
func extractScalar(node map[string]any) string {
	if v, present := node["value"]; present {
		return legacy.Stringify(v)
	}
	if v, present := node["text"]; present {
		return legacy.Stringify(v)
	}
	if v, present := node["#text"]; present {
		return legacy.Stringify(v)
	}
	return ""
}

func cleanValueType(vt string) string {
	if mapped, ok := valueTypeAliases[vt]; ok {
		return mapped
	}
	if strings.HasPrefix(vt, "xsd:") {
		return "xs:" + strings.TrimPrefix(vt, "xsd:")
	}
	return vt
}
