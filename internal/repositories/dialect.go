package repositories

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"rentflow/internal/models"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

// Dialect adapts the MySQL flavoured queries used by the repositories to
// the configured driver.
type Dialect struct {
	Driver string
}

// Rebind rewrites ? placeholders to $n for PostgreSQL.
func (d Dialect) Rebind(q string) string {
	if d.Driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// InsertOrKeep turns an INSERT INTO statement into an insert that keeps the
// existing row on a unique key conflict. Other errors still fail the insert.
// On MySQL a kept row reports zero affected rows, so DSNs must not set
// clientFoundRows.
func (d Dialect) InsertOrKeep(q string) string {
	if d.Driver == DriverPostgres {
		return d.Rebind(q) + " ON CONFLICT DO NOTHING"
	}
	return q + " ON DUPLICATE KEY UPDATE id = id"
}

var mysqlKeyPattern = regexp.MustCompile(`for key '([^']+)'`)

// uniqueViolation reports the violated constraint for duplicate key errors
// of either driver.
func uniqueViolation(err error) (string, bool) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		key := ""
		if m := mysqlKeyPattern.FindStringSubmatch(mysqlErr.Message); len(m) == 2 {
			key = m[1]
			if i := strings.LastIndex(key, "."); i >= 0 {
				key = key[i+1:]
			}
		}
		return key, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// wrapWriteErr converts duplicate key failures into models.UniqueViolation.
func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if key, ok := uniqueViolation(err); ok {
		return &models.UniqueViolation{Constraint: key, Err: err}
	}
	return err
}
