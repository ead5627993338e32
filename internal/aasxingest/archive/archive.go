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

// Package archive opens ZIP-structured AASX packages and exposes named-entry
// lookup and extraction. Entry paths are normalized to forward slashes with
// no leading slash, matching the addressing used by OPC relationship targets.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

// Entry describes one archive member. Size is the uncompressed size as
// reported by the central directory; for entries written without a size
// record it is discovered on first read.
type Entry struct {
	Path  string
	IsDir bool
	Size  int64
}

// Archive is an opened AASX container. It is safe for sequential use only;
// callers that extract concurrently must open one Archive per goroutine.
type Archive struct {
	files map[string]*zip.File
	order []string
	sizes map[string]int64
}

// NormalizePath canonicalizes an archive entry path: backslashes become
// forward slashes and a leading slash is stripped.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "/")
}

// Open reads the central directory of a ZIP container held fully in memory.
//
// Returns an Archive Error when the bytes are not a valid ZIP stream.
func Open(data []byte) (*Archive, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.NewErrArchive("not a valid ZIP container: " + err.Error())
	}

	a := &Archive{
		files: make(map[string]*zip.File, len(reader.File)),
		order: make([]string, 0, len(reader.File)),
		sizes: make(map[string]int64),
	}
	for _, f := range reader.File {
		p := NormalizePath(f.Name)
		if _, seen := a.files[p]; seen {
			continue
		}
		a.files[p] = f
		a.order = append(a.order, p)
	}
	return a, nil
}

// Has reports whether the archive contains an entry at the given path.
func (a *Archive) Has(path string) bool {
	_, ok := a.files[NormalizePath(path)]
	return ok
}

// ReadBytes decompresses one entry fully into memory.
func (a *Archive) ReadBytes(path string) ([]byte, error) {
	f, ok := a.files[NormalizePath(path)]
	if !ok {
		return nil, common.NewErrNotFound(path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, common.NewErrArchive("open entry " + path + ": " + err.Error())
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, common.NewErrArchive("read entry " + path + ": " + err.Error())
	}
	a.sizes[NormalizePath(path)] = int64(len(data))
	return data, nil
}

// ReadText decompresses one entry and returns it as a string.
func (a *Archive) ReadText(path string) (string, error) {
	data, err := a.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBase64 decompresses one entry and returns it base64-encoded.
func (a *Archive) ReadBase64(path string) (string, error) {
	data, err := a.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Size returns the uncompressed size of an entry. The central directory hint
// is used when present so large irrelevant entries are never decompressed
// just to report their size; a zero hint on a non-directory entry falls back
// to a single decompression whose result is cached.
func (a *Archive) Size(path string) (int64, error) {
	p := NormalizePath(path)
	f, ok := a.files[p]
	if !ok {
		return 0, common.NewErrNotFound(path)
	}
	if cached, ok := a.sizes[p]; ok {
		return cached, nil
	}
	if f.UncompressedSize64 > 0 || f.FileInfo().IsDir() {
		return int64(f.UncompressedSize64), nil
	}
	data, err := a.ReadBytes(p)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// Entries lists every archive member in central-directory order.
func (a *Archive) Entries() []Entry {
	entries := make([]Entry, 0, len(a.order))
	for _, p := range a.order {
		f := a.files[p]
		size := int64(f.UncompressedSize64)
		if cached, ok := a.sizes[p]; ok {
			size = cached
		}
		entries = append(entries, Entry{
			Path:  p,
			IsDir: f.FileInfo().IsDir(),
			Size:  size,
		})
	}
	return entries
}
