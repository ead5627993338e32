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

// Package journal persists ingest outcomes to PostgreSQL: one row per parse
// with the counts a repository operator cares about and the full result
// payload for later inspection. The journal is optional; the service runs
// without it when no database is configured.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

const tableName = "ingest_journal"

const schemaDDL = `CREATE TABLE IF NOT EXISTS ingest_journal (
	id UUID PRIMARY KEY,
	filename TEXT NOT NULL,
	byte_size BIGINT NOT NULL,
	shell_count INT NOT NULL,
	submodel_count INT NOT NULL,
	error_count INT NOT NULL,
	valid BOOLEAN NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Entry is one journal row.
type Entry struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	ByteSize      int64     `json:"byteSize"`
	ShellCount    int       `json:"shellCount"`
	SubmodelCount int       `json:"submodelCount"`
	ErrorCount    int       `json:"errorCount"`
	Valid         bool      `json:"valid"`
	Payload       []byte    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Journal records ingest outcomes in PostgreSQL.
type Journal struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
}

// NewPostgreSQLJournal opens a connection pool against the given DSN and
// bootstraps the journal table.
func NewPostgreSQLJournal(connString string, maxOpenConnections int, maxIdleConnections int) (*Journal, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)

	j := NewJournalWithDB(db)
	if _, err := db.Exec(schemaDDL); err != nil {
		return nil, err
	}
	return j, nil
}

// NewJournalWithDB wraps an existing database handle. Used by tests.
func NewJournalWithDB(db *sql.DB) *Journal {
	return &Journal{
		db:      db,
		dialect: goqu.Dialect("postgres"),
	}
}

// Record inserts one ingest outcome and returns the generated record id.
func (j *Journal) Record(ctx context.Context, filename string, byteSize int64, result *aasxingest.Result) (string, error) {
	payload, err := common.Marshal(result)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	insertSQL, args, err := j.dialect.Insert(tableName).
		Rows(goqu.Record{
			"id":             id,
			"filename":       filename,
			"byte_size":      byteSize,
			"shell_count":    listLen(result.Environment["assetAdministrationShells"]),
			"submodel_count": listLen(result.Environment["submodels"]),
			"error_count":    len(result.ValidationErrors),
			"valid":          result.Valid,
			"payload":        string(payload),
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", err
	}

	if _, err := j.db.ExecContext(ctx, insertSQL, args...); err != nil {
		return "", err
	}
	return id, nil
}

// Get loads one journal entry by id.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	selectSQL, args, err := j.dialect.From(tableName).
		Select("id", "filename", "byte_size", "shell_count", "submodel_count", "error_count", "valid", "payload", "created_at").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var entry Entry
	row := j.db.QueryRowContext(ctx, selectSQL, args...)
	if err := row.Scan(&entry.ID, &entry.Filename, &entry.ByteSize, &entry.ShellCount,
		&entry.SubmodelCount, &entry.ErrorCount, &entry.Valid, &entry.Payload, &entry.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, common.NewErrNotFound(id)
		}
		return nil, err
	}
	return &entry, nil
}

// List returns the most recent journal entries, newest first.
func (j *Journal) List(ctx context.Context, limit uint) ([]Entry, error) {
	if limit == 0 {
		limit = 100
	}
	selectSQL, args, err := j.dialect.From(tableName).
		Select("id", "filename", "byte_size", "shell_count", "submodel_count", "error_count", "valid", "payload", "created_at").
		Order(goqu.C("created_at").Desc()).
		Limit(limit).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, selectSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Filename, &entry.ByteSize, &entry.ShellCount,
			&entry.SubmodelCount, &entry.ErrorCount, &entry.Valid, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close releases the connection pool.
func (j *Journal) Close() error {
	return j.db.Close()
}

func listLen(v any) int {
	if list, ok := v.([]any); ok {
		return len(list)
	}
	return 0
}
