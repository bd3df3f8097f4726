// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
//
// Repositories run against the shared handle by default; operations that must
// participate in a caller's transaction receive the transaction as a trailing
// core.DBExecutor.
package sqlxrepos

import (
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kelasi/core"
)

func itoa(n int) string { return strconv.Itoa(n) }

// getExec resolves the executor for a query: a caller-provided transaction
// when present, the shared handle otherwise.
func getExec(db *sqlx.DB, svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return db
}
