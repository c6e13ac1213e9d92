package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// WithTenantSchema executes a function with schema-per-tenant isolation.
// This is the KEY isolation mechanism for the schema-per-tenant model.
//
// Usage in repositories:
//
//	tenantSchema, err := tenant.TenantSchema(ctx)
//	if err != nil { return err }
//	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
//	    return r.db.GetContext(ctx, &emp, "SELECT * FROM employees WHERE id = $1", id)
//	})
//
// How it works:
//  1. Starts a transaction
//  2. Sets "SET LOCAL search_path TO <tenant_schema>, public"
//  3. Stashes the transaction in the context; DB query methods route through it
//  4. Commits the transaction (SET LOCAL is scoped to it, so cleanup is automatic)
//
// Why this is secure:
//   - SET LOCAL is scoped to the transaction, so the next request on the same
//     pooled connection gets clean state
//   - Every query inside fn runs on the transaction's connection, never the pool
//   - Schema names come from the tenants registry, not from user input
func (db *DB) WithTenantSchema(ctx context.Context, schema string, fn func(context.Context) error) error {
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		// NOTE: SET LOCAL doesn't support parameterized queries ($1), must use fmt.Sprintf.
		// Schema names are validated when tenants are provisioned.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL search_path TO %s, public", schema)); err != nil {
			return fmt.Errorf("failed to set search_path to %s: %w", schema, err)
		}

		// Store transaction in context so DB methods can use it
		txCtx := context.WithValue(ctx, txKey{}, tx)

		return fn(txCtx)
	})
}

// getTx extracts transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}
