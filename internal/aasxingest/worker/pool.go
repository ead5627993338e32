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

// Package worker provides the message-passing boundary around the parse
// pipeline: callers submit raw bytes plus a filename hint and receive a
// tagged success or error reply. Each worker holds at most one in-flight
// parse; cancellation is coarse-grained through the pool context, the
// pipeline itself has no internal checkpoints.
package worker

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/archive"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/config"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/logger"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

// ParseRequest is one unit of work: the input bytes, the filename hint, and
// the channel the tagged reply is delivered on.
type ParseRequest struct {
	Data     []byte
	Filename string
	Reply    chan<- ParseReply
}

// ParseReply is the worker's answer: either a full result or an error
// string, never both.
type ParseReply struct {
	Result *aasxingest.Result
	Err    string
}

// ExtractRequest asks for one named archive entry. Extraction re-opens the
// archive per request, so it is safe to run concurrently with parses of
// other byte buffers.
type ExtractRequest struct {
	Data      []byte
	EntryPath string
	Reply     chan<- ExtractReply
}

// ExtractReply carries one extracted entry with its guessed content type.
type ExtractReply struct {
	Data        []byte
	ContentType string
	Err         string
}

// Pool runs a fixed number of parse workers over shared request channels.
type Pool struct {
	opts     aasxingest.Options
	parses   chan ParseRequest
	extracts chan ExtractRequest
	group    *errgroup.Group
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPool creates a pool with the given worker count; zero or negative
// selects the default.
func NewPool(workers int, opts aasxingest.Options) *Pool {
	if workers <= 0 {
		workers = config.DefaultWorkerCount
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &Pool{
		opts:     opts,
		parses:   make(chan ParseRequest),
		extracts: make(chan ExtractRequest),
		group:    group,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		group.Go(p.run)
	}
	return p
}

func (p *Pool) run() error {
	for {
		select {
		case <-p.ctx.Done():
			return nil
		case req := <-p.parses:
			req.Reply <- p.parse(req)
		case req := <-p.extracts:
			req.Reply <- p.extract(req)
		}
	}
}

func (p *Pool) parse(req ParseRequest) ParseReply {
	result, err := aasxingest.Parse(req.Data, req.Filename, p.opts)
	if err != nil {
		logger.LogError("parse "+req.Filename, err)
		return ParseReply{Err: err.Error()}
	}
	return ParseReply{Result: result}
}

func (p *Pool) extract(req ExtractRequest) ExtractReply {
	a, err := archive.Open(req.Data)
	if err != nil {
		return ExtractReply{Err: err.Error()}
	}
	data, err := a.ReadBytes(req.EntryPath)
	if err != nil {
		return ExtractReply{Err: err.Error()}
	}
	return ExtractReply{
		Data:        data,
		ContentType: common.GuessContentType(req.EntryPath),
	}
}

// Parse submits one parse and waits for its reply. The context cancels the
// wait, not the parse itself.
func (p *Pool) Parse(ctx context.Context, data []byte, filename string) (*aasxingest.Result, error) {
	reply := make(chan ParseReply, 1)
	select {
	case p.parses <- ParseRequest{Data: data, Filename: filename, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, errors.New("worker pool shut down")
	}

	select {
	case r := <-reply:
		if r.Err != "" {
			return nil, errors.New(r.Err)
		}
		return r.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Extract submits one extraction and waits for its reply.
func (p *Pool) Extract(ctx context.Context, data []byte, entryPath string) ([]byte, string, error) {
	reply := make(chan ExtractReply, 1)
	select {
	case p.extracts <- ExtractRequest{Data: data, EntryPath: entryPath, Reply: reply}:
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case <-p.ctx.Done():
		return nil, "", errors.New("worker pool shut down")
	}

	select {
	case r := <-reply:
		if r.Err != "" {
			return nil, "", errors.New(r.Err)
		}
		return r.Data, r.ContentType, nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

// Shutdown terminates the workers and waits for them to exit.
func (p *Pool) Shutdown() error {
	p.cancel()
	return p.group.Wait()
}
