// Package sql implements a document adapter on top of database/sql.
//
// Every model is stored in its own table holding one encoded document per
// row:
//
//	CREATE TABLE IF NOT EXISTS "harmony_book" (
//	    id  VARCHAR(255) NOT NULL PRIMARY KEY,
//	    seq BIGINT NOT NULL,
//	    doc BLOB NOT NULL
//	)
//
// Documents are encoded with msgpack. The id column holds the normalized
// _id of the document, seq keeps insertion order. Filters and sorts are
// evaluated by the filter package after loading the rows of a model, except
// for plain _id lookups which are answered by the primary key.
//
// # Supported Dialects
//
// The Postgres (lib/pq), MySQL (go-sql-driver/mysql) and SQLite
// (modernc.org/sqlite) drivers are registered by this package:
//
//	a, err := sql.Open(sql.SQLite, "file:harmony.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := harmony.New(models, harmony.WithAdapter("sql", a))
//
// An existing *sql.DB can be used with New. The adapter then never closes
// it.
//
// # Statistics
//
// Statements are timed. Statements slower than the threshold given with
// WithSlowThreshold are logged at WARN level and counted:
//
//	fmt.Println(a.Stats())
//	// queries=12 execs=3 duration=4.1ms avg=273µs slow=0 errors=0
package sql
