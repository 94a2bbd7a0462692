package storage

import (
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsNaturalKeyViolation reports whether err is a uniqueness violation on the
// showings natural key. The classification is by constraint identity where the
// driver exposes it (lib/pq) and by extended result code otherwise; the
// showings table carries no other unique constraint, so the SQLite code check
// is unambiguous.
func (d *DB) IsNaturalKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	switch d.dialect {
	case DialectPostgres:
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == NaturalKeyConstraint
		}
	case DialectSQLite:
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
		}
	}
	return false
}
