// Package normalize enforces the array-shape and modelType invariants of an
// environment tree regardless of its origin. The pass is purely defensive
// and idempotent: applying it twice yields the same tree as applying it
// once.
package normalize

import "sort"

// EnsureArray coerces any tree shape into a list: lists pass through,
// object values become the object's values (in key order, so the result is
// deterministic), nil becomes the empty list, and scalars become a
// one-element list.
func EnsureArray(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(t))
		for _, k := range keys {
			out = append(out, t[k])
		}
		return out
	default:
		return []any{t}
	}
}

// Environment coerces the three top-level containers to arrays, forces the
// modelType discriminator onto every shell and submodel, and coerces each
// submodel's element list, unwrapping a submodelElement wrapper when
// present. The tree is modified in place and returned.
func Environment(env map[string]any) map[string]any {
	if env == nil {
		return map[string]any{}
	}

	shells := EnsureArray(env["assetAdministrationShells"])
	for _, item := range shells {
		if node, ok := item.(map[string]any); ok {
			node["modelType"] = "AssetAdministrationShell"
		}
	}
	env["assetAdministrationShells"] = shells

	submodels := EnsureArray(env["submodels"])
	for _, item := range submodels {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		node["modelType"] = "Submodel"
		node["submodelElements"] = elementList(node["submodelElements"])
	}
	env["submodels"] = submodels

	env["conceptDescriptions"] = EnsureArray(env["conceptDescriptions"])

	return env
}

// elementList coerces a submodel's element collection to a list. A
// submodelElement wrapper is unwrapped first; a single element object stays
// one element, so the map branch of EnsureArray never scatters its fields.
func elementList(raw any) []any {
	if node, ok := raw.(map[string]any); ok {
		if inner, present := node["submodelElement"]; present {
			raw = inner
		}
	}
	if node, ok := raw.(map[string]any); ok {
		return []any{node}
	}
	return EnsureArray(raw)
}
