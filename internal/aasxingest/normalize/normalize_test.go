package normalize

import (
	"reflect"
	"testing"
)

func TestEnsureArray(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{"nil", nil, []any{}},
		{"list", []any{"a", "b"}, []any{"a", "b"}},
		{"scalar", "a", []any{"a"}},
		{"number", float64(7), []any{float64(7)}},
		{"object values in key order", map[string]any{"b": 2, "a": 1}, []any{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsureArray(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EnsureArray(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnvironmentCoercesContainers(t *testing.T) {
	// top-level containers sometimes arrive as index-keyed objects
	env := Environment(map[string]any{
		"assetAdministrationShells": map[string]any{
			"0": map[string]any{"id": "urn:aas:1"},
		},
		"submodels": map[string]any{
			"0": map[string]any{
				"id": "urn:sm:1",
				"submodelElements": map[string]any{
					"submodelElement": map[string]any{"idShort": "Temp", "modelType": "Property"},
				},
			},
		},
	})

	shells := env["assetAdministrationShells"].([]any)
	if len(shells) != 1 {
		t.Fatalf("want 1 shell, got %d", len(shells))
	}
	if shells[0].(map[string]any)["modelType"] != "AssetAdministrationShell" {
		t.Errorf("shell modelType not forced: %v", shells[0])
	}

	submodels := env["submodels"].([]any)
	if len(submodels) != 1 {
		t.Fatalf("want 1 submodel, got %d", len(submodels))
	}
	elements := submodels[0].(map[string]any)["submodelElements"].([]any)
	if len(elements) != 1 {
		t.Errorf("submodelElement wrapper not unwrapped: %v", elements)
	}
	if _, ok := env["conceptDescriptions"].([]any); !ok {
		t.Fatalf("conceptDescriptions missing or not a list")
	}
}

func TestEnvironmentForcesModelType(t *testing.T) {
	env := Environment(map[string]any{
		"assetAdministrationShells": []any{map[string]any{"id": "urn:aas:1", "modelType": "wrong"}},
		"submodels": []any{map[string]any{
			"id":               "urn:sm:1",
			"submodelElements": map[string]any{"submodelElement": []any{map[string]any{"idShort": "P"}}},
		}},
	})

	shell := env["assetAdministrationShells"].([]any)[0].(map[string]any)
	if shell["modelType"] != "AssetAdministrationShell" {
		t.Errorf("shell modelType = %v", shell["modelType"])
	}
	sm := env["submodels"].([]any)[0].(map[string]any)
	if sm["modelType"] != "Submodel" {
		t.Errorf("submodel modelType = %v", sm["modelType"])
	}
	elements := sm["submodelElements"].([]any)
	if len(elements) != 1 {
		t.Errorf("submodelElements = %v", elements)
	}
}

func TestEnvironmentSingleElementObject(t *testing.T) {
	// a lone element object, wrapped or bare, stays one element
	for _, elements := range []any{
		map[string]any{"submodelElement": map[string]any{"idShort": "Temp", "modelType": "Property"}},
		map[string]any{"idShort": "Temp", "modelType": "Property"},
	} {
		env := Environment(map[string]any{
			"submodels": []any{map[string]any{"id": "urn:sm:1", "submodelElements": elements}},
		})
		got := env["submodels"].([]any)[0].(map[string]any)["submodelElements"].([]any)
		if len(got) != 1 {
			t.Fatalf("want 1 element, got %v", got)
		}
		if got[0].(map[string]any)["idShort"] != "Temp" {
			t.Errorf("element not preserved: %v", got[0])
		}
	}
}

func TestEnvironmentNil(t *testing.T) {
	if got := Environment(nil); len(got) != 0 {
		t.Errorf("Environment(nil) = %v, want empty map", got)
	}
}

func TestEnvironmentIdempotent(t *testing.T) {
	trees := []map[string]any{
		{},
		{"assetAdministrationShells": "scalar"},
		{"submodels": map[string]any{"id": "urn:sm:1"}},
		{
			"assetAdministrationShells": []any{map[string]any{"id": "urn:aas:1"}},
			"submodels": []any{map[string]any{
				"id":               "urn:sm:1",
				"submodelElements": []any{map[string]any{"idShort": "P", "modelType": "Property"}},
			}},
			"conceptDescriptions": []any{},
		},
	}
	for i, tree := range trees {
		once := Environment(tree)
		twice := Environment(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("tree %d: second pass changed the result: %v vs %v", i, once, twice)
		}
	}
}
