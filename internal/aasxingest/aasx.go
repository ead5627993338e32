package aasxingest

import (
	"strings"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/archive"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/legacy"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/normalize"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/opc"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/validation"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/xmltree"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

// candidateSpecPaths are the conventional spec entry locations tried when
// the relationship graph yields none.
var candidateSpecPaths = []string{
	"aasx/data.json",
	"aasx/data.xml",
	"aasx/aasenv.json",
	"aasx/aasenv.xml",
	"data.json",
	"data.xml",
}

// candidateThumbnailPaths are the conventional thumbnail locations tried
// when the root relationships carry no thumbnail entry, before consulting
// the shell's defaultThumbnail resource.
var candidateThumbnailPaths = []string{
	"aasx/thumbnail.png",
	"aasx/thumbnail.jpg",
	"aasx/thumbnail.jpeg",
	"thumbnail.png",
	"thumbnail.jpg",
}

// ParseAASX parses a complete AASX package. Only two conditions are fatal:
// a missing root relationships entry and no locatable spec entry after all
// fallbacks (plus a byte stream that is not a ZIP container at all). Every
// other irregularity degrades into the result's ValidationErrors.
func ParseAASX(data []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	a, err := archive.Open(data)
	if err != nil {
		return nil, err
	}

	if !a.Has(opc.RootRelationshipsPath) {
		return nil, common.NewErrPackage("Missing _rels/.rels in package")
	}
	rootRelsData, err := a.ReadBytes(opc.RootRelationshipsPath)
	if err != nil {
		return nil, err
	}
	rootRels, err := opc.ParseRelationships(rootRelsData)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ValidationErrors:   []Issue{},
		SupplementaryFiles: []SupplementaryFile{},
	}

	specPath, originPath := locateSpec(a, rootRels, result)
	if specPath == "" {
		return nil, common.NewErrPackage("no AAS spec entry found after all fallbacks")
	}

	tree, err := parseSpecEntry(a, specPath, opts, result)
	if err != nil {
		return nil, err
	}

	validated := validation.Validate(tree, validation.Options{
		Strict:                opts.Strict,
		MaxVerificationErrors: opts.MaxVerificationErrors,
	})
	result.Typed = validated.Environment
	result.Valid = validated.Valid
	result.ValidationErrors = append(result.ValidationErrors, issuesFromValidation(validated.AllErrors())...)

	// best-effort shape coercion runs regardless of the validation outcome
	result.Environment = normalize.Environment(tree)

	result.Thumbnail = extractThumbnail(a, rootRels, result.Environment)
	sweepSupplementaryFiles(a, specPath, originPath, result)

	return result, nil
}

// locateSpec walks the relationship graph: root rels → aasx-origin → the
// origin's own rels → aas-spec, collecting aas-suppl entries on the way.
// Missing or malformed links fall through to the conventional candidate
// paths, then to the first .json/.xml entry in the archive.
func locateSpec(a *archive.Archive, rootRels []opc.Relationship, result *Result) (specPath string, originPath string) {
	if origin, ok := opc.FirstByTypeSuffix(rootRels, opc.TypeSuffixOrigin); ok {
		originPath = opc.ResolveRelativePath("", origin.Target)
		if originRels := readOriginRels(a, originPath, result); originRels != nil {
			if spec, ok := opc.FirstByTypeSuffix(originRels, opc.TypeSuffixSpec); ok {
				candidate := opc.ResolveRelativePath(originPath, spec.Target)
				if a.Has(candidate) {
					specPath = candidate
				} else {
					result.ValidationErrors = append(result.ValidationErrors, Issue{
						Path:    candidate,
						Message: "aas-spec relationship points at a missing entry",
					})
				}
			}
			collectSupplementary(a, originPath, originRels, result)
		}
	}

	if specPath != "" {
		return specPath, originPath
	}
	for _, candidate := range candidateSpecPaths {
		if a.Has(candidate) {
			return candidate, originPath
		}
	}
	for _, entry := range a.Entries() {
		if entry.IsDir || entry.Path == opc.ContentTypesPath || strings.Contains(entry.Path, "_rels/") {
			continue
		}
		if strings.HasSuffix(entry.Path, ".json") || strings.HasSuffix(entry.Path, ".xml") {
			return entry.Path, originPath
		}
	}
	return "", originPath
}

// readOriginRels reads the relationship document describing the origin
// entry. Both layouts occur in the wild: a sibling _rels directory next to
// the origin, and a root-level _rels directory when the origin itself lives
// at the archive root.
func readOriginRels(a *archive.Archive, originPath string, result *Result) []opc.Relationship {
	candidates := []string{opc.RelationshipsPathFor(originPath)}
	if idx := strings.LastIndex(originPath, "/"); idx >= 0 {
		candidates = append(candidates, "_rels/"+originPath[idx+1:]+".rels")
	}
	for _, relsPath := range candidates {
		if !a.Has(relsPath) {
			continue
		}
		data, err := a.ReadBytes(relsPath)
		if err != nil {
			continue
		}
		rels, err := opc.ParseRelationships(data)
		if err != nil {
			result.ValidationErrors = append(result.ValidationErrors, Issue{
				Path:    relsPath,
				Message: err.Error(),
			})
			continue
		}
		return rels
	}
	return nil
}

func collectSupplementary(a *archive.Archive, originPath string, originRels []opc.Relationship, result *Result) {
	for _, suppl := range opc.FindByTypeSuffix(originRels, opc.TypeSuffixSuppl) {
		resolved := opc.ResolveRelativePath(originPath, suppl.Target)
		if !a.Has(resolved) {
			result.ValidationErrors = append(result.ValidationErrors, Issue{
				Path:    resolved,
				Message: "aas-suppl relationship points at a missing entry",
			})
			continue
		}
		size, err := a.Size(resolved)
		if err != nil {
			size = 0
		}
		result.SupplementaryFiles = append(result.SupplementaryFiles, SupplementaryFile{
			Path:        resolved,
			ContentType: common.GuessContentType(resolved),
			Size:        size,
		})
	}
}

// parseSpecEntry reads and decodes the spec entry: JSON directly, anything
// else through the XML structural transformer.
func parseSpecEntry(a *archive.Archive, specPath string, opts Options, result *Result) (map[string]any, error) {
	text, err := a.ReadText(specPath)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(strings.ToLower(specPath), ".json") {
		var tree map[string]any
		if err := common.Unmarshal([]byte(text), &tree); err != nil {
			return nil, common.NewErrPackage("unparseable JSON spec entry: " + err.Error())
		}
		return migrateTree(tree, opts, result), nil
	}

	doc, err := xmltree.Decode([]byte(text))
	if err != nil {
		return nil, err
	}
	transformer := xmltree.NewTransformer(opts.MaxElementDepth)
	tree := transformer.Document(doc)
	for _, note := range transformer.Notes() {
		result.ValidationErrors = append(result.ValidationErrors, Issue{Path: specPath, Message: note})
	}
	return tree, nil
}

// migrateTree applies the legacy migrator to a JSON-parsed tree when the v2
// dialect is detected. The check is per node, not per document: a mixed tree
// migrates only its v2-shaped entries and leaves v3 neighbors untouched.
func migrateTree(tree map[string]any, opts Options, result *Result) map[string]any {
	if !treeIsV2(tree) {
		return tree
	}

	transformer := xmltree.NewTransformer(opts.MaxElementDepth)
	out := map[string]any{}

	shells := []any{}
	for _, item := range normalize.EnsureArray(tree["assetAdministrationShells"]) {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if legacy.IsV2(node) {
			node = legacy.MapAAS(node)
		}
		shells = append(shells, node)
	}
	out["assetAdministrationShells"] = shells

	submodels := []any{}
	for _, item := range normalize.EnsureArray(tree["submodels"]) {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if legacy.IsV2(node) {
			node = legacy.MapSubmodel(node)
			elements := []any{}
			for _, el := range normalize.EnsureArray(node["submodelElements"]) {
				flattenModelType(el)
				if transformed := transformer.Element(el, 0); transformed != nil {
					elements = append(elements, transformed)
				}
			}
			node["submodelElements"] = elements
		}
		submodels = append(submodels, node)
	}
	out["submodels"] = submodels

	if raw, present := tree["conceptDescriptions"]; present {
		cds := []any{}
		for _, item := range normalize.EnsureArray(raw) {
			node, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if legacy.IsV2(node) {
				node = legacy.MapConceptDescription(node)
			}
			cds = append(cds, node)
		}
		out["conceptDescriptions"] = cds
	}

	for _, note := range transformer.Notes() {
		result.ValidationErrors = append(result.ValidationErrors, Issue{Message: note})
	}
	return out
}

func treeIsV2(tree map[string]any) bool {
	for _, container := range []string{"assetAdministrationShells", "submodels", "conceptDescriptions"} {
		for _, item := range normalize.EnsureArray(tree[container]) {
			if node, ok := item.(map[string]any); ok && legacy.IsV2(node) {
				return true
			}
		}
	}
	return false
}

// flattenModelType reduces the v2 JSON modelType wrapper ({name: X}) to its
// plain v3 string form, recursively through nested element trees.
func flattenModelType(raw any) {
	node, ok := raw.(map[string]any)
	if !ok {
		return
	}
	if wrapper, ok := node["modelType"].(map[string]any); ok {
		node["modelType"] = legacy.Stringify(wrapper["name"])
	}
	for _, field := range []string{"value", "statements", "annotations", "submodelElements"} {
		switch children := node[field].(type) {
		case []any:
			for _, child := range children {
				flattenModelType(child)
			}
		case map[string]any:
			flattenModelType(children)
		}
	}
}

// extractThumbnail resolves the package thumbnail as a base64 data URL. The
// OPC thumbnail relationship in the root document wins; the conventional
// paths and the first shell's defaultThumbnail resource are fallbacks.
func extractThumbnail(a *archive.Archive, rootRels []opc.Relationship, env map[string]any) string {
	if thumb, ok := opc.FirstByTypeSuffix(rootRels, opc.TypeSuffixThumbnail); ok {
		resolved := opc.ResolveRelativePath("", thumb.Target)
		if a.Has(resolved) {
			if encoded, err := a.ReadBase64(resolved); err == nil {
				return "data:" + common.GuessContentType(resolved) + ";base64," + encoded
			}
		}
	}

	for _, candidate := range candidateThumbnailPaths {
		if a.Has(candidate) {
			if encoded, err := a.ReadBase64(candidate); err == nil {
				return "data:" + common.GuessContentType(candidate) + ";base64," + encoded
			}
		}
	}

	shells, _ := env["assetAdministrationShells"].([]any)
	for _, item := range shells {
		shell, ok := item.(map[string]any)
		if !ok {
			continue
		}
		info, ok := shell["assetInformation"].(map[string]any)
		if !ok {
			continue
		}
		resource, ok := info["defaultThumbnail"].(map[string]any)
		if !ok {
			continue
		}
		thumbPath := opc.ResolveRelativePath("", legacy.Stringify(resource["path"]))
		if thumbPath == "" || !a.Has(thumbPath) {
			continue
		}
		contentType := legacy.Stringify(resource["contentType"])
		if contentType == "" {
			contentType = common.GuessContentType(thumbPath)
		}
		if encoded, err := a.ReadBase64(thumbPath); err == nil {
			return "data:" + contentType + ";base64," + encoded
		}
	}
	return ""
}

// sweepSupplementaryFiles classifies every remaining archive entry that is
// not packaging metadata, the spec entry, the origin marker, or an already
// listed supplementary file.
func sweepSupplementaryFiles(a *archive.Archive, specPath string, originPath string, result *Result) {
	listed := make(map[string]bool, len(result.SupplementaryFiles))
	for _, f := range result.SupplementaryFiles {
		listed[f.Path] = true
	}

	for _, entry := range a.Entries() {
		if entry.IsDir || listed[entry.Path] {
			continue
		}
		if entry.Path == specPath || entry.Path == originPath || entry.Path == opc.ContentTypesPath {
			continue
		}
		if strings.HasSuffix(entry.Path, ".rels") || strings.Contains(entry.Path, "_rels/") {
			continue
		}
		size := entry.Size
		if size == 0 {
			if discovered, err := a.Size(entry.Path); err == nil {
				size = discovered
			}
		}
		result.SupplementaryFiles = append(result.SupplementaryFiles, SupplementaryFile{
			Path:        entry.Path,
			ContentType: common.GuessContentType(entry.Path),
			Size:        size,
		})
	}
}
