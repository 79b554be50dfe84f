package sql

import (
	"fmt"
	"regexp"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported dialects.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// validIdentifierRe validates SQL identifiers (alphanumeric and underscores).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 64 && validIdentifierRe.MatchString(s)
}

// dialectOf returns the dialect of a driver name. Wrapped driver names such
// as "sqlite3" or "postgres-otel" keep their prefix.
func dialectOf(name string) (string, error) {
	for _, d := range []string{MySQL, SQLite, Postgres} {
		if strings.HasPrefix(name, d) {
			return d, nil
		}
	}
	return "", fmt.Errorf("adapter/sql: unsupported dialect %q", name)
}

// builder writes the statements of one dialect.
type builder struct {
	dialect string
}

// quote quotes an identifier.
func (b builder) quote(name string) string {
	if b.dialect == MySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// placeholder returns the i-th (1-based) argument placeholder.
func (b builder) placeholder(i int) string {
	if b.dialect == Postgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func (b builder) placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = b.placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}

func (b builder) blob() string {
	switch b.dialect {
	case Postgres:
		return "BYTEA"
	case MySQL:
		return "LONGBLOB"
	default:
		return "BLOB"
	}
}

func (b builder) createTable(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id VARCHAR(255) NOT NULL PRIMARY KEY, seq BIGINT NOT NULL, doc %s NOT NULL)",
		b.quote(table), b.blob())
}

func (b builder) selectAll(table string) string {
	return fmt.Sprintf("SELECT doc FROM %s ORDER BY seq", b.quote(table))
}

func (b builder) selectIDs(table string, n int) string {
	return fmt.Sprintf("SELECT doc FROM %s WHERE id IN (%s) ORDER BY seq", b.quote(table), b.placeholders(1, n))
}

func (b builder) insert(table string) string {
	return fmt.Sprintf("INSERT INTO %s (id, seq, doc) VALUES (%s)", b.quote(table), b.placeholders(1, 3))
}

func (b builder) update(table string) string {
	return fmt.Sprintf("UPDATE %s SET doc = %s WHERE id = %s", b.quote(table), b.placeholder(1), b.placeholder(2))
}

func (b builder) delete(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = %s", b.quote(table), b.placeholder(1))
}
