package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsV2(t *testing.T) {
	assert.True(t, IsV2(map[string]any{"identification": map[string]any{"id": "urn:x"}}))
	assert.True(t, IsV2(map[string]any{"assetRef": map[string]any{}}))
	assert.False(t, IsV2(map[string]any{"id": "urn:x", "assetInformation": map[string]any{}}))
	assert.False(t, IsV2(nil))
	assert.False(t, IsV2(map[string]any{}))
}

func TestMapValueType(t *testing.T) {
	assert.Equal(t, "xs:string", MapValueType(""))
	assert.Equal(t, "xs:string", MapValueType(nil))
	assert.Equal(t, "xs:double", MapValueType("double"))
	assert.Equal(t, "xs:boolean", MapValueType("xs:boolean"))
	// unknown bare names still get the prefix, recoverable data is not rejected
	assert.Equal(t, "xs:somethingOdd", MapValueType("somethingOdd"))
	// XML text wrapper
	assert.Equal(t, "xs:int", MapValueType(map[string]any{"#text": "int"}))
}

func TestMapMultiLanguageValue(t *testing.T) {
	out := MapMultiLanguageValue(map[string]any{
		"langString": map[string]any{"lang": "en", "#text": float64(42)},
	})
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"language": "en", "text": "42"}, out[0])
}

func TestMapMultiLanguageValueArray(t *testing.T) {
	out := MapMultiLanguageValue(map[string]any{
		"langString": []any{
			map[string]any{"lang": "en", "#text": "pump"},
			map[string]any{"lang": "de", "#text": "Pumpe"},
		},
	})
	require.Len(t, out, 2)
	assert.Equal(t, map[string]any{"language": "de", "text": "Pumpe"}, out[1])
}

func TestMapMultiLanguageValuePassthroughAndNil(t *testing.T) {
	flat := []any{map[string]any{"language": "en", "text": "x"}}
	assert.Equal(t, flat, MapMultiLanguageValue(flat))
	assert.Empty(t, MapMultiLanguageValue(nil))
	assert.Empty(t, MapMultiLanguageValue("scalar"))
}

func TestMapReferenceV2SingleKey(t *testing.T) {
	ref := MapReference(map[string]any{
		"keys": map[string]any{
			"key": map[string]any{"type": "GlobalReference", "#text": "urn:example:asset"},
		},
	})
	require.NotNil(t, ref)
	assert.Equal(t, "ExternalReference", ref["type"])
	keys := ref["keys"].([]any)
	require.Len(t, keys, 1)
	assert.Equal(t, map[string]any{"type": "GlobalReference", "value": "urn:example:asset"}, keys[0])
}

func TestMapReferenceV2KeyChain(t *testing.T) {
	ref := MapReference(map[string]any{
		"keys": map[string]any{
			"key": []any{
				map[string]any{"type": "Submodel", "#text": "urn:sm:1"},
				map[string]any{"type": "Property", "#text": "Temperature"},
			},
		},
	})
	require.NotNil(t, ref)
	assert.Equal(t, "ModelReference", ref["type"])
	require.Len(t, ref["keys"].([]any), 2)
}

func TestMapReferenceSingleModelKey(t *testing.T) {
	// a lone Submodel-typed key is model-relative, not external
	ref := MapReference(map[string]any{
		"keys": map[string]any{
			"key": map[string]any{"type": "Submodel", "#text": "urn:sm:1"},
		},
	})
	require.NotNil(t, ref)
	assert.Equal(t, "ModelReference", ref["type"])
}

func TestMapReferenceEmptyOrInvalid(t *testing.T) {
	assert.Nil(t, MapReference(nil))
	assert.Nil(t, MapReference("urn:not-a-reference"))
	assert.Nil(t, MapReference(map[string]any{}))
	assert.Nil(t, MapReference(map[string]any{"keys": map[string]any{"key": []any{}}}))
}

func TestMapReferenceV3Passthrough(t *testing.T) {
	ref := MapReference(map[string]any{
		"type": "ExternalReference",
		"keys": []any{map[string]any{"type": "GlobalReference", "value": "urn:x"}},
	})
	require.NotNil(t, ref)
	assert.Equal(t, "ExternalReference", ref["type"])
	assert.Equal(t, "urn:x", ref["keys"].([]any)[0].(map[string]any)["value"])
}

func TestMapIdentification(t *testing.T) {
	assert.Equal(t, "urn:a", MapIdentification(map[string]any{"id": "urn:a"}))
	assert.Equal(t, "urn:b", MapIdentification(map[string]any{"identification": map[string]any{"id": "urn:b"}}))
	assert.Equal(t, "urn:c", MapIdentification(map[string]any{"identification": map[string]any{"#text": "urn:c"}}))
	assert.Equal(t, "urn:d", MapIdentification(map[string]any{"identification": "urn:d"}))
	assert.Equal(t, "", MapIdentification(map[string]any{}))
}

func TestMapAssetInformation(t *testing.T) {
	// v3 passes through unchanged
	v3 := map[string]any{"assetKind": "Type", "globalAssetId": "urn:x"}
	assert.Equal(t, v3, MapAssetInformation(map[string]any{"assetInformation": v3}))

	// constructed from v2 fields
	info := MapAssetInformation(map[string]any{
		"assetRef": map[string]any{
			"keys": map[string]any{
				"key": map[string]any{"type": "Asset", "#text": "urn:asset:1"},
			},
		},
	})
	assert.Equal(t, "Instance", info["assetKind"])
	assert.Equal(t, "urn:asset:1", info["globalAssetId"])
}

func TestMapAASStripsLegacyFields(t *testing.T) {
	out := MapAAS(map[string]any{
		"idShort":        "Motor",
		"identification": map[string]any{"id": "urn:aas:1"},
		"assetRef": map[string]any{
			"keys": map[string]any{"key": map[string]any{"type": "Asset", "#text": "urn:asset:1"}},
		},
		"kind": "Instance",
		"submodelRefs": map[string]any{
			"submodelRef": map[string]any{
				"keys": map[string]any{"key": map[string]any{"type": "Submodel", "#text": "urn:sm:1"}},
			},
		},
	})

	for _, legacyField := range []string{"identification", "assetRef", "kind", "submodelRefs"} {
		assert.NotContains(t, out, legacyField)
	}
	assert.Equal(t, "AssetAdministrationShell", out["modelType"])
	assert.Equal(t, "urn:aas:1", out["id"])
	assert.Equal(t, "Motor", out["idShort"])

	refs := out["submodels"].([]any)
	require.Len(t, refs, 1)
	assert.Equal(t, "ModelReference", refs[0].(map[string]any)["type"])
}

func TestMapAASOmitsEmptySubmodels(t *testing.T) {
	out := MapAAS(map[string]any{
		"identification": map[string]any{"id": "urn:aas:2"},
	})
	// absent and empty are distinct shapes for callers; no refs means no field
	assert.NotContains(t, out, "submodels")
}

func TestMapSubmodelStripsLegacyFields(t *testing.T) {
	out := MapSubmodel(map[string]any{
		"identification": map[string]any{"id": "urn:sm:1"},
		"kind":           map[string]any{"#text": "Template"},
		"semanticId": map[string]any{
			"keys": map[string]any{"key": map[string]any{"type": "GlobalReference", "#text": "urn:sem:1"}},
		},
	})
	assert.NotContains(t, out, "identification")
	assert.Equal(t, "Submodel", out["modelType"])
	assert.Equal(t, "urn:sm:1", out["id"])
	assert.Equal(t, "Template", out["kind"])
	assert.Equal(t, "ExternalReference", out["semanticId"].(map[string]any)["type"])
}

func TestMapConceptDescription(t *testing.T) {
	out := MapConceptDescription(map[string]any{
		"identification": map[string]any{"id": "urn:cd:1"},
		"idShort":        "Unit",
	})
	assert.NotContains(t, out, "identification")
	assert.Equal(t, "ConceptDescription", out["modelType"])
	assert.Equal(t, "urn:cd:1", out["id"])
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "42", Stringify(float64(42)))
	assert.Equal(t, "4.2", Stringify(4.2))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "x", Stringify("x"))
	assert.Equal(t, "", Stringify(nil))
}

func TestEnsureList(t *testing.T) {
	assert.Nil(t, EnsureList(nil))
	assert.Equal(t, []any{"a"}, EnsureList("a"))
	assert.Equal(t, []any{"a", "b"}, EnsureList([]any{"a", "b"}))
}
