package xmltree

import (
	"fmt"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/config"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/legacy"
)

// elementTags maps the XML wrapper tag of each submodel element variant to
// its v3 modelType discriminator. Order matters: the first matching key of a
// wrapped element wins.
var elementTags = []struct {
	tag       string
	modelType string
}{
	{"property", "Property"},
	{"multiLanguageProperty", "MultiLanguageProperty"},
	{"range", "Range"},
	{"blob", "Blob"},
	{"file", "File"},
	{"referenceElement", "ReferenceElement"},
	{"relationshipElement", "RelationshipElement"},
	{"annotatedRelationshipElement", "AnnotatedRelationshipElement"},
	{"entity", "Entity"},
	{"basicEventElement", "BasicEventElement"},
	{"operation", "Operation"},
	{"capability", "Capability"},
	{"submodelElementCollection", "SubmodelElementCollection"},
	{"submodelElementList", "SubmodelElementList"},
}

// Transformer converts decoded XML trees into the JSON shape of the v3 wire
// schema, invoking the legacy migrator where the v2 dialect is detected.
// Structural irregularities that force data to be dropped are collected as
// notes for the caller's validation report.
type Transformer struct {
	maxDepth int
	notes    []string
}

// NewTransformer returns a transformer with the given nesting ceiling for
// submodel element trees; zero or negative selects the default.
func NewTransformer(maxDepth int) *Transformer {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxElementDepth
	}
	return &Transformer{maxDepth: maxDepth}
}

// Notes lists the irregularities encountered during transformation.
func (t *Transformer) Notes() []string {
	return t.notes
}

// Document converts a decoded XML document into an environment tree. The
// root element (v3 environment or v2 aasenv) is unwrapped, the three
// top-level containers lose their per-item wrapper elements, and every
// shell, submodel, and concept description is migrated and transformed.
func (t *Transformer) Document(root map[string]any) map[string]any {
	envNode := unwrapRoot(root)

	env := map[string]any{}
	env["assetAdministrationShells"] = t.shells(envNode["assetAdministrationShells"])
	env["submodels"] = t.submodels(envNode["submodels"])
	if cds := t.conceptDescriptions(envNode["conceptDescriptions"]); cds != nil {
		env["conceptDescriptions"] = cds
	}
	return env
}

func unwrapRoot(root map[string]any) map[string]any {
	// the document has exactly one root element regardless of dialect
	for _, v := range root {
		if node, ok := v.(map[string]any); ok {
			return node
		}
	}
	return map[string]any{}
}

func (t *Transformer) shells(raw any) []any {
	out := []any{}
	for _, item := range unwrapContainer(raw, "assetAdministrationShell") {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if legacy.IsV2(node) {
			node = legacy.MapAAS(node)
		} else {
			node = copyNode(node)
			node["modelType"] = legacy.ModelTypeAAS
		}
		if raw, present := node["submodels"]; present {
			mapped := []any{}
			for _, r := range unwrapContainer(raw, "reference") {
				if ref := legacy.MapReference(r); ref != nil {
					mapped = append(mapped, ref)
				}
			}
			if len(mapped) > 0 {
				node["submodels"] = mapped
			} else {
				delete(node, "submodels")
			}
		}
		t.fixupLangFields(node)
		out = append(out, node)
	}
	return out
}

func (t *Transformer) submodels(raw any) []any {
	out := []any{}
	for _, item := range unwrapContainer(raw, "submodel") {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if legacy.IsV2(node) {
			node = legacy.MapSubmodel(node)
		} else {
			node = copyNode(node)
			node["modelType"] = legacy.ModelTypeSubmodel
		}
		if ref := legacy.MapReference(node["semanticId"]); ref != nil {
			node["semanticId"] = ref
		}
		elements := []any{}
		for _, el := range unwrapElementList(node["submodelElements"]) {
			if transformed := t.Element(el, 0); transformed != nil {
				elements = append(elements, transformed)
			}
		}
		node["submodelElements"] = elements
		t.fixupLangFields(node)
		out = append(out, node)
	}
	return out
}

func (t *Transformer) conceptDescriptions(raw any) []any {
	if raw == nil {
		return nil
	}
	out := []any{}
	for _, item := range unwrapContainer(raw, "conceptDescription") {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if legacy.IsV2(node) {
			node = legacy.MapConceptDescription(node)
		} else {
			node = copyNode(node)
			node["modelType"] = legacy.ModelTypeConceptDescription
		}
		t.fixupLangFields(node)
		out = append(out, node)
	}
	return out
}

// Element resolves one submodel element: an explicit modelType is honoured
// directly (hybrid files), otherwise the first known wrapper tag is
// unwrapped and tagged. The post-processing fixups then run in both cases.
func (t *Transformer) Element(raw any, depth int) map[string]any {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if depth > t.maxDepth {
		t.notes = append(t.notes,
			fmt.Sprintf("submodel element tree exceeds maximum depth %d; element dropped", t.maxDepth))
		return nil
	}

	modelType := legacy.Stringify(node["modelType"])
	if modelType == "" {
		for _, e := range elementTags {
			inner, present := node[e.tag]
			if !present {
				continue
			}
			wrapped, ok := inner.(map[string]any)
			if !ok {
				continue
			}
			node = wrapped
			modelType = e.modelType
			break
		}
		if modelType == "" {
			// unknown shape, leave it for the validator to report
			return copyNode(node)
		}
	}

	node = copyNode(node)
	node["modelType"] = modelType
	t.fixups(node, modelType, depth)
	return node
}

func (t *Transformer) fixups(node map[string]any, modelType string, depth int) {
	if _, present := node["semanticId"]; present {
		if ref := legacy.MapReference(node["semanticId"]); ref != nil {
			node["semanticId"] = ref
		}
	}
	t.fixupLangFields(node)

	switch modelType {
	case "Property":
		node["valueType"] = legacy.MapValueType(node["valueType"])
		if v, present := node["value"]; present {
			node["value"] = legacy.Stringify(flattenScalar(v))
		}
		if ref := legacy.MapReference(node["valueId"]); ref != nil {
			node["valueId"] = ref
		}

	case "Range":
		node["valueType"] = legacy.MapValueType(node["valueType"])
		for _, bound := range []string{"min", "max"} {
			if v, present := node[bound]; present {
				node[bound] = legacy.Stringify(flattenScalar(v))
			}
		}

	case "MultiLanguageProperty":
		if v, present := node["value"]; present {
			node["value"] = legacy.MapMultiLanguageValue(v)
		}

	case "File", "Blob":
		if legacy.Stringify(node["contentType"]) == "" {
			node["contentType"] = "application/octet-stream"
		}
		if v, present := node["value"]; present {
			node["value"] = legacy.Stringify(flattenScalar(v))
		}

	case "ReferenceElement":
		if ref := legacy.MapReference(node["value"]); ref != nil {
			node["value"] = ref
		} else {
			delete(node, "value")
		}

	case "RelationshipElement":
		t.fixupRelationshipEnds(node)

	case "AnnotatedRelationshipElement":
		t.fixupRelationshipEnds(node)
		node["annotations"] = t.childList(node["annotations"], depth+1)

	case "Entity":
		node["statements"] = t.childList(node["statements"], depth+1)
		if v, present := node["entityType"]; present {
			node["entityType"] = legacy.Stringify(flattenScalar(v))
		}

	case "BasicEventElement":
		if ref := legacy.MapReference(node["observed"]); ref != nil {
			node["observed"] = ref
		}

	case "Operation":
		for _, field := range []string{"inputVariables", "outputVariables", "inoutputVariables"} {
			if vars := t.operationVariables(node[field], depth+1); vars != nil {
				node[field] = vars
			}
		}

	case "SubmodelElementCollection", "SubmodelElementList":
		node["value"] = t.childList(node["value"], depth+1)
	}
}

func (t *Transformer) fixupRelationshipEnds(node map[string]any) {
	for _, end := range []string{"first", "second"} {
		if ref := legacy.MapReference(node[end]); ref != nil {
			node[end] = ref
		}
	}
}

// childList transforms a nested element sequence: a submodelElement wrapper
// is unwrapped when present, otherwise the value itself is taken as the
// list-or-single-item to transform.
func (t *Transformer) childList(raw any, depth int) []any {
	out := []any{}
	for _, el := range unwrapElementList(raw) {
		if transformed := t.Element(el, depth); transformed != nil {
			out = append(out, transformed)
		}
	}
	return out
}

// operationVariables normalizes an operation's variable wrappers: each entry
// carries exactly one element under its value key.
func (t *Transformer) operationVariables(raw any, depth int) []any {
	if raw == nil {
		return nil
	}
	if wrapper, ok := raw.(map[string]any); ok {
		if inner, present := wrapper["operationVariable"]; present {
			raw = inner
		}
	}
	out := []any{}
	for _, item := range legacy.EnsureList(raw) {
		variable, ok := item.(map[string]any)
		if !ok {
			continue
		}
		variable = copyNode(variable)
		if transformed := t.Element(unwrapElementValue(variable["value"]), depth); transformed != nil {
			variable["value"] = transformed
		}
		out = append(out, variable)
	}
	return out
}

// fixupLangFields converts language-tagged text fields into the flat v3
// list shape. Both the v2 langString wrapper and the v3 XML per-item
// wrappers are handled; scalars are left for the deep clean to drop.
func (t *Transformer) fixupLangFields(node map[string]any) {
	for field, wrapper := range map[string]string{
		"description": "langStringTextType",
		"displayName": "langStringNameType",
	} {
		raw, present := node[field]
		if !present {
			continue
		}
		if _, ok := raw.([]any); ok {
			continue
		}
		wrapped, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, hasV2 := wrapped["langString"]; hasV2 {
			node[field] = legacy.MapMultiLanguageValue(wrapped)
			continue
		}
		if inner, hasV3 := wrapped[wrapper]; hasV3 {
			items := []any{}
			for _, ls := range legacy.EnsureList(inner) {
				lsNode, ok := ls.(map[string]any)
				if !ok {
					continue
				}
				items = append(items, map[string]any{
					"language": legacy.Stringify(flattenScalar(lsNode["language"])),
					"text":     legacy.Stringify(flattenScalar(lsNode["text"])),
				})
			}
			node[field] = items
		}
	}
}

// unwrapContainer unwraps a top-level container: a map holding the per-item
// wrapper key yields that key's items, anything else is coerced to a list.
func unwrapContainer(raw any, wrapper string) []any {
	if raw == nil {
		return nil
	}
	if node, ok := raw.(map[string]any); ok {
		if inner, present := node[wrapper]; present {
			return legacy.EnsureList(inner)
		}
	}
	return legacy.EnsureList(raw)
}

func unwrapElementList(raw any) []any {
	if raw == nil {
		return nil
	}
	if node, ok := raw.(map[string]any); ok {
		if inner, present := node["submodelElement"]; present {
			return legacy.EnsureList(inner)
		}
	}
	return legacy.EnsureList(raw)
}

func unwrapElementValue(raw any) any {
	if node, ok := raw.(map[string]any); ok {
		if inner, present := node["submodelElement"]; present {
			return inner
		}
	}
	return raw
}

func flattenScalar(v any) any {
	if node, ok := v.(map[string]any); ok {
		if text, present := node["#text"]; present {
			return text
		}
	}
	return v
}

func copyNode(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}
	return out
}
