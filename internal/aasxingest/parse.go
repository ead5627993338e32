package aasxingest

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/config"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/normalize"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/validation"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

// Parse ingests raw bytes with a filename hint. Format selection: a .json
// extension selects the JSON path, .aasx the package path; anything else is
// sniffed — a ZIP signature selects the package path, a leading brace or
// bracket the JSON path. Empty input and unrecognizable bytes are fatal.
func Parse(data []byte, filename string, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, common.NewErrEmptyFile()
	}

	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".json"):
		return ParseJSON(data, opts)
	case strings.HasSuffix(strings.ToLower(filename), ".aasx"):
		return ParseAASX(data, opts)
	}

	sniff := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(sniff) > config.SniffLength {
		sniff = sniff[:config.SniffLength]
	}
	if bytes.HasPrefix(sniff, []byte{0x50, 0x4B}) {
		return ParseAASX(data, opts)
	}
	if len(sniff) > 0 && (sniff[0] == '{' || sniff[0] == '[') {
		return ParseJSON(data, opts)
	}
	return nil, common.NewErrUnsupportedFormat(filename)
}

// ParseJSON ingests a bare JSON environment document, migrating the legacy
// v2 dialect when detected. An unparseable top-level document is fatal;
// everything past that degrades into ValidationErrors.
func ParseJSON(data []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	var tree map[string]any
	if err := common.Unmarshal(data, &tree); err != nil {
		return nil, common.NewErrUnsupportedFormat("unparseable JSON document: " + err.Error())
	}

	result := &Result{
		ValidationErrors:   []Issue{},
		SupplementaryFiles: []SupplementaryFile{},
	}
	migrated := migrateTree(tree, opts, result)

	validated := validation.Validate(migrated, validation.Options{
		Strict:                opts.Strict,
		MaxVerificationErrors: opts.MaxVerificationErrors,
	})
	result.Typed = validated.Environment
	result.Valid = validated.Valid
	result.ValidationErrors = append(result.ValidationErrors, issuesFromValidation(validated.AllErrors())...)
	result.Environment = normalize.Environment(migrated)

	return result, nil
}
