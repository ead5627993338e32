// Package xmltree decodes AAS XML documents into the loosely-typed
// intermediate tree used by the migration and validation passes, and
// transforms the type-tag-wrapped XML shape into the JSON shape of the v3
// wire schema.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

// Decode parses an XML document into a generic tree. Element and attribute
// names are reduced to their local part (namespace prefixes dropped),
// repeated sibling elements collapse into lists, attributes become plain
// keys, and character data lands either as the element's value (text-only
// elements) or under the #text key (mixed elements).
func Decode(data []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// AAS XML uses several namespace prefixes per document; resolution is
	// name-local, so unknown namespaces must not abort the parse.
	dec.Strict = false

	root := map[string]any{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.NewErrPackage("unparseable XML document: " + err.Error())
		}
		if start, ok := tok.(xml.StartElement); ok {
			value, err := decodeElement(dec, start)
			if err != nil {
				return nil, err
			}
			addChild(root, start.Name.Local, value)
		}
	}
	if len(root) == 0 {
		return nil, common.NewErrPackage("XML document has no root element")
	}
	return root, nil
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	node := map[string]any{}
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		node[attr.Name.Local] = attr.Value
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, common.NewErrPackage("unparseable XML document: " + err.Error())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			value, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			addChild(node, t.Name.Local, value)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if len(node) == 0 {
				// text-only element decodes to its payload
				return content, nil
			}
			if content != "" {
				node["#text"] = content
			}
			return node, nil
		}
	}
}

// addChild inserts a child value, collapsing repeated names into a list.
func addChild(node map[string]any, name string, value any) {
	existing, ok := node[name]
	if !ok {
		node[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		node[name] = append(list, value)
		return
	}
	node[name] = []any{existing, value}
}
