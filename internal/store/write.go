package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// WriteInvocation records inv and its files in one transaction.
// Writing an ID that already exists is a no-op.
func (s *Store) WriteInvocation(ctx context.Context, inv Invocation) error {
	opts := inv.Options
	if opts == nil {
		opts = map[string]any{}
	}
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("write invocation: marshal options: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO invocations
		(id, seq, collection, schematic, options, strategy, debug, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		inv.ID,
		inv.Seq,
		inv.Collection,
		inv.Schematic,
		string(optsJSON),
		inv.Strategy,
		inv.Debug,
		inv.Status,
		inv.Error,
	)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	if n == 0 {
		return nil
	}

	for _, p := range inv.Files {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO invocation_files (invocation_id, path) VALUES (?, ?) ON CONFLICT DO NOTHING",
			inv.ID, p,
		); err != nil {
			return fmt.Errorf("write invocation file %s: %w", p, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}
