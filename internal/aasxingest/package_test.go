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

package aasxingest

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="json" ContentType="application/json" />
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml" />
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="r0" Type="http://admin-shell.io/aasx/relationships/aasx-origin" Target="/aasx/aasx-origin" />
</Relationships>`

const originRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="r1" Type="http://admin-shell.io/aasx/relationships/aas-spec" Target="/aasx/data.json" />
  <Relationship Id="r2" Type="http://admin-shell.io/aasx/relationships/aas-suppl" Target="/aasx/docs/manual.pdf" />
</Relationships>`

func buildPackage(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func standardPackage(t *testing.T) map[string][]byte {
	return map[string][]byte{
		"[Content_Types].xml":         []byte(contentTypesXML),
		"_rels/.rels":                 []byte(rootRelsXML),
		"aasx/aasx-origin":            {},
		"aasx/_rels/aasx-origin.rels": []byte(originRelsXML),
		"aasx/data.json":              []byte(v3EnvironmentJSON),
		"aasx/docs/manual.pdf":        []byte("%PDF-1.4 stub"),
		"aasx/thumbnail.png":          onePixelPNG(t),
	}
}

func supplementaryByPath(result *Result) map[string]SupplementaryFile {
	out := make(map[string]SupplementaryFile, len(result.SupplementaryFiles))
	for _, f := range result.SupplementaryFiles {
		out[f.Path] = f
	}
	return out
}

func TestParseAASXStandardPackage(t *testing.T) {
	data := buildPackage(t, standardPackage(t))
	result, err := ParseAASX(data, Options{Strict: true})
	require.NoError(t, err)

	assert.True(t, result.Valid, "validation errors: %v", result.ValidationErrors)
	require.NotNil(t, result.Typed)

	shells := result.Environment["assetAdministrationShells"].([]any)
	require.Len(t, shells, 1)
	assert.Equal(t, "urn:aas:motor", shells[0].(map[string]any)["id"])

	files := supplementaryByPath(result)
	manual, ok := files["aasx/docs/manual.pdf"]
	require.True(t, ok, "declared supplementary file missing from result")
	assert.Equal(t, "application/pdf", manual.ContentType)
	assert.Equal(t, int64(len("%PDF-1.4 stub")), manual.Size)

	// packaging metadata never surfaces as payload
	assert.NotContains(t, files, "[Content_Types].xml")
	assert.NotContains(t, files, "_rels/.rels")
	assert.NotContains(t, files, "aasx/_rels/aasx-origin.rels")
	assert.NotContains(t, files, "aasx/data.json")
	assert.NotContains(t, files, "aasx/aasx-origin")
}

func TestParseAASXThumbnail(t *testing.T) {
	data := buildPackage(t, standardPackage(t))
	result, err := ParseAASX(data, Options{Strict: true})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^data:image/png;base64,`), result.Thumbnail)
}

func TestParseAASXThumbnailRelationshipWins(t *testing.T) {
	rels := strings.Replace(rootRelsXML,
		`</Relationships>`,
		`<Relationship Id="r9" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail" Target="/branding/cover.jpg" />
</Relationships>`,
		1)

	entries := standardPackage(t)
	entries["_rels/.rels"] = []byte(rels)
	entries["branding/cover.jpg"] = []byte("jpeg bytes")

	result, err := ParseAASX(buildPackage(t, entries), Options{Strict: false})
	require.NoError(t, err)
	// the declared relationship beats the conventional aasx/thumbnail.png
	assert.True(t, strings.HasPrefix(result.Thumbnail, "data:image/jpeg;base64,"), result.Thumbnail)
}

func TestParseAASXThumbnailFromAssetInformation(t *testing.T) {
	env := strings.Replace(v3EnvironmentJSON,
		`"globalAssetId": "urn:asset:motor"`,
		`"globalAssetId": "urn:asset:motor", "defaultThumbnail": {"path": "/aasx/images/logo.png", "contentType": "image/png"}`,
		1)

	entries := standardPackage(t)
	delete(entries, "aasx/thumbnail.png")
	entries["aasx/data.json"] = []byte(env)
	entries["aasx/images/logo.png"] = onePixelPNG(t)

	result, err := ParseAASX(buildPackage(t, entries), Options{Strict: false})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Thumbnail, "data:image/png;base64,"))
}

func TestParseAASXMissingRootRels(t *testing.T) {
	data := buildPackage(t, map[string][]byte{
		"aasx/data.json": []byte(v3EnvironmentJSON),
	})
	_, err := ParseAASX(data, Options{})
	require.Error(t, err)
	assert.True(t, common.IsErrPackage(err))
	assert.Contains(t, err.Error(), "Missing _rels/.rels")
}

func TestParseAASXNoSpecEntry(t *testing.T) {
	data := buildPackage(t, map[string][]byte{
		"_rels/.rels": []byte(rootRelsXML),
		"readme.pdf":  []byte("%PDF"),
	})
	_, err := ParseAASX(data, Options{})
	require.Error(t, err)
	assert.True(t, common.IsErrPackage(err))
	assert.Contains(t, err.Error(), "no AAS spec entry")
}

func TestParseAASXNotAZip(t *testing.T) {
	_, err := ParseAASX([]byte("definitely not a zip"), Options{})
	require.Error(t, err)
	assert.True(t, common.IsErrArchive(err))
}

func TestParseAASXSpecFallbackWithoutRelationships(t *testing.T) {
	// root rels exist but carry no origin link; the conventional path wins
	data := buildPackage(t, map[string][]byte{
		"_rels/.rels":    []byte(`<Relationships></Relationships>`),
		"aasx/data.json": []byte(v3EnvironmentJSON),
	})
	result, err := ParseAASX(data, Options{Strict: true})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestParseAASXBrokenSupplementaryLink(t *testing.T) {
	entries := standardPackage(t)
	delete(entries, "aasx/docs/manual.pdf")

	result, err := ParseAASX(buildPackage(t, entries), Options{Strict: true})
	require.NoError(t, err)

	found := false
	for _, issue := range result.ValidationErrors {
		if strings.Contains(issue.Message, "aas-suppl relationship points at a missing entry") {
			found = true
		}
	}
	assert.True(t, found, "broken suppl link should degrade into an issue: %v", result.ValidationErrors)
	// the parse itself still reports a valid environment
	assert.NotNil(t, result.Typed)
}

func TestParseAASXXMLSpec(t *testing.T) {
	originRels := strings.Replace(originRelsXML, "/aasx/data.json", "/aasx/data.xml", 1)
	entries := standardPackage(t)
	delete(entries, "aasx/data.json")
	entries["aasx/_rels/aasx-origin.rels"] = []byte(originRels)
	entries["aasx/data.xml"] = []byte(`<?xml version="1.0"?>
<aas:aasenv xmlns:aas="http://www.admin-shell.io/aas/2/0">
  <aas:assetAdministrationShells>
    <aas:assetAdministrationShell>
      <aas:idShort>Motor</aas:idShort>
      <aas:identification idType="IRI">urn:aas:motor</aas:identification>
      <aas:assetRef>
        <aas:keys><aas:key type="Asset">urn:asset:motor</aas:key></aas:keys>
      </aas:assetRef>
    </aas:assetAdministrationShell>
  </aas:assetAdministrationShells>
  <aas:submodels>
    <aas:submodel>
      <aas:idShort>TechnicalData</aas:idShort>
      <aas:identification idType="IRI">urn:sm:technical</aas:identification>
      <aas:submodelElements>
        <aas:submodelElement>
          <aas:property>
            <aas:idShort>MaxSpeed</aas:idShort>
            <aas:valueType>double</aas:valueType>
            <aas:value>3600</aas:value>
          </aas:property>
        </aas:submodelElement>
      </aas:submodelElements>
    </aas:submodel>
  </aas:submodels>
</aas:aasenv>`)

	result, err := ParseAASX(buildPackage(t, entries), Options{Strict: true})
	require.NoError(t, err)

	assert.True(t, result.Valid, "validation errors: %v", result.ValidationErrors)
	sm := result.Environment["submodels"].([]any)[0].(map[string]any)
	assert.Equal(t, "urn:sm:technical", sm["id"])
	prop := sm["submodelElements"].([]any)[0].(map[string]any)
	assert.Equal(t, "xs:double", prop["valueType"])
	assert.Equal(t, "3600", prop["value"])
}

func TestParseAASXInvalidShellDegrades(t *testing.T) {
	entries := standardPackage(t)
	entries["aasx/data.json"] = []byte(
		`{"assetAdministrationShells": [{"modelType": "AssetAdministrationShell", "idShort": "NoId"}]}`)

	result, err := ParseAASX(buildPackage(t, entries), Options{Strict: true})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Nil(t, result.Typed)
	assert.NotEmpty(t, result.ValidationErrors)
	shells := result.Environment["assetAdministrationShells"].([]any)
	assert.Len(t, shells, 1)
}
