// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/0xsoniclabs/cellar/backend/depot"
	"github.com/0xsoniclabs/cellar/common"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS cells (hash BLOB PRIMARY KEY, data BLOB NOT NULL)`

// FileName is the name of the database file created in the depot directory.
const FileName = "cells.sqlite"

// Depot is a depot.Depot implementation keeping values in a single SQLite
// table.
type Depot struct {
	db     *sql.DB
	get    *sql.Stmt
	set    *sql.Stmt
	exists *sql.Stmt
}

// OpenDepot opens or creates the depot database in the given directory.
func OpenDepot(directory string) (*Depot, error) {
	db, err := sql.Open("sqlite3", filepath.Join(directory, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	res, err := prepare(db)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return res, nil
}

func prepare(db *sql.DB) (*Depot, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create cells table: %w", err)
	}
	res := &Depot{db: db}
	var err error
	if res.get, err = db.Prepare(`SELECT data FROM cells WHERE hash = ?`); err != nil {
		return nil, err
	}
	if res.set, err = db.Prepare(`INSERT OR REPLACE INTO cells (hash, data) VALUES (?, ?)`); err != nil {
		return nil, errors.Join(err, res.closeStatements())
	}
	if res.exists, err = db.Prepare(`SELECT 1 FROM cells WHERE hash = ?`); err != nil {
		return nil, errors.Join(err, res.closeStatements())
	}
	return res, nil
}

func (m *Depot) Set(key common.Hash, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := m.set.Exec(key[:], value)
	return err
}

func (m *Depot) Get(key common.Hash) ([]byte, error) {
	var data []byte
	err := m.get.QueryRow(key[:]).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", depot.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Depot) Has(key common.Hash) (bool, error) {
	var one int
	err := m.exists.QueryRow(key[:]).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Flush is a no-op, every statement is committed on execution.
func (m *Depot) Flush() error {
	return nil
}

func (m *Depot) closeStatements() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{m.get, m.set, m.exists} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

func (m *Depot) Close() error {
	return errors.Join(m.closeStatements(), m.db.Close())
}
