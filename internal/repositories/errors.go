package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // For pq.Error
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrInvalidFilter is returned when a listing filter cannot be turned into a query.
	ErrInvalidFilter = errors.New("invalid filter")
)

// SQLExecutor defines an interface that can be satisfied by *sqlx.DB or *sqlx.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	sqlx.ExtContext
}

// Querying and executing helpers that rebind `?` placeholders for the executor's driver.

func getOne(ctx context.Context, exec SQLExecutor, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, exec, dest, exec.Rebind(query), args...)
}

func selectAll(ctx context.Context, exec SQLExecutor, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, exec, dest, exec.Rebind(query), args...)
}

func insertReturningID(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (int64, error) {
	var id int64
	err := exec.QueryRowxContext(ctx, exec.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

func execAffecting(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (int64, error) {
	res, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// lockClause returns the row-locking suffix for SELECTs run inside a transaction.
// SQLite serialises writers on its single connection, so it needs none.
func lockClause(exec SQLExecutor) string {
	if exec.DriverName() == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch code := liteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// primary result code only; the message still names the constraint kind
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ClampPage applies the default and maximum page size and a minimum page of 1.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// normalizePage clamps page and pageSize and returns the limit and offset to use.
func normalizePage(page, pageSize int) (limit, offset int) {
	page, pageSize = ClampPage(page, pageSize)
	return pageSize, (page - 1) * pageSize
}
