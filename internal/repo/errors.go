package repo

import (
	"errors"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	// ErrOriginalExists means another original already owns the content hash.
	ErrOriginalExists = errors.New("original already exists for content hash")
	// ErrOriginalGone means a duplicate referenced an original that no longer exists.
	ErrOriginalGone = errors.New("referenced original no longer exists")
	// ErrHasDependents means an original is still referenced by duplicates.
	ErrHasDependents = errors.New("original still referenced by duplicates")
)

const (
	mysqlDuplicateEntry    = 1062
	mysqlRowIsReferenced   = 1451
	mysqlNoReferencedRow   = 1452
	mysqlRowIsReferenced2  = 1217
	mysqlNoReferencedRow2  = 1216
	sqliteUniqueFailed     = "unique constraint failed"
	sqliteForeignKeyFailed = "foreign key constraint failed"
)

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

// isDuplicateKey reports a unique index violation from any supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if mysqlErrorNumber(err) == mysqlDuplicateEntry {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), sqliteUniqueFailed)
}

// isForeignKeyViolation reports a foreign key violation from any supported driver.
// SQLite does not say which side of the relation failed; callers know from context.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	switch mysqlErrorNumber(err) {
	case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced2, mysqlNoReferencedRow2:
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), sqliteForeignKeyFailed)
}
