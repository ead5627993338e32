package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsErrNotFound(NewErrNotFound("urn:x")))
	assert.True(t, IsErrBadRequest(NewErrBadRequest("bad payload")))
	assert.True(t, IsErrArchive(NewErrArchive("truncated central directory")))
	assert.True(t, IsErrPackage(NewErrPackage("missing origin")))
	assert.True(t, IsErrUnsupportedFormat(NewErrUnsupportedFormat("model.docx")))
	assert.True(t, IsErrEmptyFile(NewErrEmptyFile()))

	assert.False(t, IsErrNotFound(NewErrArchive("x")))
	assert.False(t, IsErrArchive(errors.New("plain")))
	assert.False(t, IsErrEmptyFile(nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, NewErrNotFound("urn:x").Error(), "urn:x")
	assert.Contains(t, NewErrPackage("no spec").Error(), "no spec")
}
