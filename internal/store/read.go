package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by ReadInvocation for an unknown ID.
var ErrNotFound = errors.New("invocation not found")

const selectInvocation = `
	SELECT id, seq, collection, schematic, options, strategy, debug, status, error
	FROM invocations`

// Query selects invocations for QueryInvocations. Empty fields match
// everything.
type Query struct {
	Collection string
	Schematic  string
	// Limit keeps the most recent Limit matches. Zero or less keeps all.
	Limit int
}

// ReadInvocations returns the most recent limit invocations ordered by
// seq ASC, id ASC. A limit of zero or less returns all of them.
//
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ReadInvocations(ctx context.Context, limit int) ([]Invocation, error) {
	return s.QueryInvocations(ctx, Query{Limit: limit})
}

// QueryInvocations returns the most recent invocations matching q ordered
// by seq ASC, id ASC. Collection and schematic filters are served by the
// (collection, schematic) index.
func (s *Store) QueryInvocations(ctx context.Context, q Query) ([]Invocation, error) {
	var (
		where []string
		args  []any
	)
	if q.Collection != "" {
		where = append(where, "collection = ?")
		args = append(args, q.Collection)
	}
	if q.Schematic != "" {
		where = append(where, "schematic = ?")
		args = append(args, q.Schematic)
	}

	filtered := selectInvocation
	if len(where) > 0 {
		filtered += " WHERE " + strings.Join(where, " AND ")
	}

	query := filtered + " ORDER BY seq ASC, id COLLATE BINARY ASC"
	if q.Limit > 0 {
		query = `SELECT * FROM (` + filtered + `
			ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
		) ORDER BY seq ASC, id COLLATE BINARY ASC`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	rows.Close()

	for i := range invocations {
		files, err := s.readFiles(ctx, invocations[i].ID)
		if err != nil {
			return nil, err
		}
		invocations[i].Files = files
	}

	return invocations, nil
}

// ReadInvocation returns one invocation by ID, or ErrNotFound.
func (s *Store) ReadInvocation(ctx context.Context, id string) (Invocation, error) {
	row := s.db.QueryRowContext(ctx, selectInvocation+" WHERE id = ?", id)

	inv, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Invocation{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Invocation{}, err
	}

	inv.Files, err = s.readFiles(ctx, id)
	if err != nil {
		return Invocation{}, err
	}
	return inv, nil
}

func (s *Store) readFiles(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM invocation_files
		WHERE invocation_id = ?
		ORDER BY path COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query files of %s: %w", id, err)
	}
	defer rows.Close()

	files := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(sc scanner) (Invocation, error) {
	var (
		inv      Invocation
		optsJSON string
	)
	err := sc.Scan(
		&inv.ID,
		&inv.Seq,
		&inv.Collection,
		&inv.Schematic,
		&optsJSON,
		&inv.Strategy,
		&inv.Debug,
		&inv.Status,
		&inv.Error,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Invocation{}, err
		}
		return Invocation{}, fmt.Errorf("scan invocation: %w", err)
	}

	if err := json.Unmarshal([]byte(optsJSON), &inv.Options); err != nil {
		return Invocation{}, fmt.Errorf("unmarshal options of %s: %w", inv.ID, err)
	}
	return inv, nil
}
