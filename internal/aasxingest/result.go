// Package aasxingest turns an opaque byte blob — a ZIP-based AASX package or
// a bare JSON document, in the legacy v2 or current v3 wire schema — into
// one canonical typed environment plus its supplementary artifacts,
// collecting every structural and semantic deviation instead of failing
// outright.
package aasxingest

import (
	aastypes "github.com/FriedJannik/aas-go-sdk/types"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/config"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/validation"
)

// Issue is one recoverable deviation found during a parse.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SupplementaryFile describes one non-spec artifact carried by a package.
type SupplementaryFile struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Result is the outcome of a parse call. Environment is always present and
// normalized, even when ValidationErrors is non-empty; Typed is nil exactly
// when structural deserialization failed.
type Result struct {
	Environment        map[string]any        `json:"environment"`
	Typed              aastypes.IEnvironment `json:"-"`
	Valid              bool                  `json:"valid"`
	ValidationErrors   []Issue               `json:"validationErrors"`
	SupplementaryFiles []SupplementaryFile   `json:"supplementaryFiles"`
	Thumbnail          string                `json:"thumbnail,omitempty"`
}

// Options controls the validation behaviour of a parse call.
type Options struct {
	// Strict runs semantic verification after deserialization; lenient mode
	// accepts any tree that deserializes.
	Strict bool
	// MaxVerificationErrors caps the enumerated constraint violations;
	// zero selects the default.
	MaxVerificationErrors int
	// MaxElementDepth is the nesting ceiling for submodel element trees;
	// zero selects the default.
	MaxElementDepth int
}

func (o Options) withDefaults() Options {
	if o.MaxVerificationErrors <= 0 {
		o.MaxVerificationErrors = config.DefaultMaxVerificationCount
	}
	if o.MaxElementDepth <= 0 {
		o.MaxElementDepth = config.DefaultMaxElementDepth
	}
	return o
}

func issuesFromValidation(errs []validation.Error) []Issue {
	out := make([]Issue, 0, len(errs))
	for _, e := range errs {
		out = append(out, Issue{Path: e.Path, Message: e.Message})
	}
	return out
}
