package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jvdsande/harmony"
	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/adapter/filter"
	"github.com/jvdsande/harmony/contrib/dataloader"
)

// Adapter stores documents in SQL tables.
type Adapter struct {
	db     *sql.DB
	owned  bool
	b      builder
	prefix string
	slow   time.Duration
	stats  QueryStats
	seq    atomic.Int64
	newID  func() string

	mu     sync.RWMutex
	events adapter.Events
	logger *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTablePrefix sets the prefix of table names. Defaults to "harmony_".
func WithTablePrefix(prefix string) Option {
	return func(a *Adapter) { a.prefix = prefix }
}

// WithSlowThreshold sets the duration above which statements are logged as
// slow. Zero disables slow query detection. Defaults to 100ms.
func WithSlowThreshold(d time.Duration) Option {
	return func(a *Adapter) { a.slow = d }
}

// WithIDGenerator sets the function generating the _id of new documents.
// Defaults to random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(a *Adapter) { a.newID = fn }
}

// New returns an adapter using db. The dialect is one of Postgres, MySQL
// or SQLite.
func New(db *sql.DB, dialect string, opts ...Option) (*Adapter, error) {
	d, err := dialectOf(dialect)
	if err != nil {
		return nil, err
	}
	a := &Adapter{
		db:     db,
		b:      builder{dialect: d},
		prefix: "harmony_",
		slow:   100 * time.Millisecond,
		newID:  uuid.NewString,
		events: adapter.NopEvents{},
		logger: slog.Default(),
	}
	a.seq.Store(time.Now().UnixNano())
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Open opens a database with the driver of dialect and returns an adapter
// owning it.
func Open(dialect, source string, opts ...Option) (*Adapter, error) {
	d, err := dialectOf(dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d, source)
	if err != nil {
		return nil, err
	}
	a, err := New(db, d, opts...)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	a.owned = true
	return a, nil
}

// Stats returns a snapshot of the statement statistics.
func (a *Adapter) Stats() StatsSnapshot {
	return a.stats.Stats()
}

// Dialect returns the dialect of the adapter.
func (a *Adapter) Dialect() string {
	return a.b.dialect
}

func (a *Adapter) conn(ex ExecQuerier) conn {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return conn{ExecQuerier: ex, stats: &a.stats, slow: a.slow, logger: a.logger}
}

func (a *Adapter) log() *slog.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

func (a *Adapter) table(model string) (string, error) {
	name := a.prefix + model
	if !isValidIdentifier(name) {
		return "", fmt.Errorf("adapter/sql: invalid table name %q", name)
	}
	return name, nil
}

// Initialize creates the table of every model.
func (a *Adapter) Initialize(ctx context.Context, p adapter.InitParams) error {
	a.mu.Lock()
	if p.Events != nil {
		a.events = p.Events
	}
	if p.Logger != nil {
		a.logger = p.Logger
	}
	a.mu.Unlock()
	c := a.conn(a.db)
	for _, m := range p.Models {
		table, err := a.table(m.Name)
		if err != nil {
			return err
		}
		if _, err := c.exec(ctx, a.b.createTable(table)); err != nil {
			return fmt.Errorf("adapter/sql: create table %s: %w", table, err)
		}
	}
	a.log().Info("sql adapter initialized", "dialect", a.b.dialect, "models", len(p.Models))
	return nil
}

// Close closes the database when it was opened by Open.
func (a *Adapter) Close(context.Context) error {
	a.log().Info("sql adapter closed", "stats", a.Stats().String())
	if a.owned {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) emit(ctx context.Context, model string, docs []adapter.Entity, removed bool) {
	a.mu.RLock()
	events := a.events
	a.mu.RUnlock()
	for _, d := range docs {
		if removed {
			events.Removed(ctx, model, d)
		} else {
			events.Updated(ctx, model, d)
		}
	}
}

// tx runs fn in a transaction.
func (a *Adapter) tx(ctx context.Context, fn func(c conn) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("adapter/sql: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(a.conn(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (a *Adapter) scan(ctx context.Context, c conn, query string, args ...any) ([]adapter.Entity, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("adapter/sql: query: %w", err)
	}
	defer rows.Close()
	var docs []adapter.Entity
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("adapter/sql: scan: %w", err)
		}
		doc, err := decode(b)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// load returns the documents of model with the given ids, or all of them
// when ids is nil.
func (a *Adapter) load(ctx context.Context, c conn, model string, ids []any) ([]adapter.Entity, error) {
	table, err := a.table(model)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return a.scan(ctx, c, a.b.selectAll(table))
	}
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = dataloader.Key(id)
	}
	return a.scan(ctx, c, a.b.selectIDs(table, len(ids)), args...)
}

// lookupIDs returns the _id values a query is restricted to, or nil when
// the query is not a plain _id lookup.
func lookupIDs(q filter.Query) []any {
	if len(q) != 1 {
		return nil
	}
	switch id := q["_id"].(type) {
	case nil, map[string]any:
		return nil
	default:
		return []any{id}
	}
}

func (a *Adapter) find(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	q, err := filter.Sanitize(p.Filter())
	if err != nil {
		return nil, harmony.NewValidationError("filter", err)
	}
	keys, err := filter.SortKeys(p.Sort())
	if err != nil {
		return nil, harmony.NewValidationError("sort", err)
	}
	docs, err := a.load(ctx, a.conn(a.db), p.Model, lookupIDs(q))
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, d := range docs {
		ok, err := filter.Match(q, d)
		if err != nil {
			return nil, harmony.NewValidationError("filter", err)
		}
		if ok {
			out = append(out, d)
		}
	}
	filter.Sort(out, keys)
	return out, nil
}

// Read returns the first matching document after skip, or nil.
func (a *Adapter) Read(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	docs, err := a.find(ctx, p)
	if err != nil {
		return nil, err
	}
	docs = filter.Page(docs, p.Skip(), 1)
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// ReadMany returns the matching documents in the skip and limit window.
func (a *Adapter) ReadMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	docs, err := a.find(ctx, p)
	if err != nil {
		return nil, err
	}
	docs = filter.Page(docs, p.Skip(), p.Limit())
	if docs == nil {
		docs = []adapter.Entity{}
	}
	return docs, nil
}

// Count returns the number of matching documents.
func (a *Adapter) Count(ctx context.Context, p adapter.Params) (int, error) {
	docs, err := a.find(ctx, p)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (a *Adapter) insert(ctx context.Context, c conn, model string, record adapter.Entity) (adapter.Entity, error) {
	table, err := a.table(model)
	if err != nil {
		return nil, err
	}
	doc := adapter.Clone(record)
	if doc["_id"] == nil {
		doc["_id"] = a.newID()
	}
	b, err := encode(doc)
	if err != nil {
		return nil, harmony.NewValidationError("record", err)
	}
	if _, err := c.exec(ctx, a.b.insert(table), dataloader.Key(doc["_id"]), a.seq.Add(1), b); err != nil {
		if isUniqueConstraintError(err) {
			return nil, harmony.NewConstraintError(fmt.Sprintf("%s %v already exists", model, doc["_id"]), err)
		}
		return nil, fmt.Errorf("adapter/sql: insert: %w", err)
	}
	return doc, nil
}

// Create stores the record argument.
func (a *Adapter) Create(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	record, err := p.Record()
	if err != nil {
		return nil, harmony.NewValidationError("record", err)
	}
	doc, err := a.insert(ctx, a.conn(a.db), p.Model, record)
	if err != nil {
		return nil, err
	}
	a.emit(ctx, p.Model, []adapter.Entity{doc}, false)
	return doc, nil
}

// CreateMany stores every record in a single transaction.
func (a *Adapter) CreateMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	records, err := p.Records()
	if err != nil {
		return nil, harmony.NewValidationError("records", err)
	}
	out := make([]adapter.Entity, 0, len(records))
	err = a.tx(ctx, func(c conn) error {
		for _, r := range records {
			doc, err := a.insert(ctx, c, p.Model, r)
			if err != nil {
				return err
			}
			out = append(out, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.emit(ctx, p.Model, out, false)
	return out, nil
}

func (a *Adapter) update(ctx context.Context, c conn, model string, record adapter.Entity) (adapter.Entity, error) {
	id := record["_id"]
	if id == nil {
		return nil, harmony.NewValidationError("record._id", fmt.Errorf("%s update requires an _id", model))
	}
	docs, err := a.load(ctx, c, model, []any{id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, harmony.NewNotFoundError(model, id)
	}
	doc := docs[0]
	for k, v := range adapter.Clone(record) {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	b, err := encode(doc)
	if err != nil {
		return nil, harmony.NewValidationError("record", err)
	}
	table, _ := a.table(model)
	if _, err := c.exec(ctx, a.b.update(table), b, dataloader.Key(id)); err != nil {
		return nil, fmt.Errorf("adapter/sql: update: %w", err)
	}
	return doc, nil
}

// Update merges the record argument into the document with the same _id.
// Null fields are removed.
func (a *Adapter) Update(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	record, err := p.Record()
	if err != nil {
		return nil, harmony.NewValidationError("record", err)
	}
	var doc adapter.Entity
	err = a.tx(ctx, func(c conn) (err error) {
		doc, err = a.update(ctx, c, p.Model, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.emit(ctx, p.Model, []adapter.Entity{doc}, false)
	return doc, nil
}

// UpdateMany updates every record in a single transaction.
func (a *Adapter) UpdateMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	records, err := p.Records()
	if err != nil {
		return nil, harmony.NewValidationError("records", err)
	}
	out := make([]adapter.Entity, 0, len(records))
	err = a.tx(ctx, func(c conn) error {
		for _, r := range records {
			doc, err := a.update(ctx, c, p.Model, r)
			if err != nil {
				return err
			}
			out = append(out, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.emit(ctx, p.Model, out, false)
	return out, nil
}

// remove deletes the document with the given _id and returns it, or nil.
func (a *Adapter) remove(ctx context.Context, c conn, model string, id any) (adapter.Entity, error) {
	docs, err := a.load(ctx, c, model, []any{id})
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	table, _ := a.table(model)
	if _, err := c.exec(ctx, a.b.delete(table), dataloader.Key(id)); err != nil {
		return nil, fmt.Errorf("adapter/sql: delete: %w", err)
	}
	return docs[0], nil
}

// Delete removes the document with the _id argument and returns it.
func (a *Adapter) Delete(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	id, err := p.ID()
	if err != nil {
		return nil, harmony.NewValidationError("_id", err)
	}
	var doc adapter.Entity
	err = a.tx(ctx, func(c conn) (err error) {
		doc, err = a.remove(ctx, c, p.Model, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, harmony.NewNotFoundError(p.Model, id)
	}
	a.emit(ctx, p.Model, []adapter.Entity{doc}, true)
	return doc, nil
}

// DeleteMany removes the documents of the _ids argument in a single
// transaction. Unknown ids are skipped.
func (a *Adapter) DeleteMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	ids, err := p.IDs()
	if err != nil {
		return nil, harmony.NewValidationError("_ids", err)
	}
	out := make([]adapter.Entity, 0, len(ids))
	err = a.tx(ctx, func(c conn) error {
		for _, id := range ids {
			doc, err := a.remove(ctx, c, p.Model, id)
			if err != nil {
				return err
			}
			if doc != nil {
				out = append(out, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.emit(ctx, p.Model, out, true)
	return out, nil
}

// ResolveRef returns the first document referenced from p.Source.
func (a *Adapter) ResolveRef(ctx context.Context, p adapter.RefParams) (adapter.Entity, error) {
	docs, err := a.ResolveRefs(ctx, p)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// ResolveRefs returns the documents of p.Model whose p.ForeignFieldName
// matches the p.FieldName value of p.Source. A list value matches any of
// its elements and keeps their order.
func (a *Adapter) ResolveRefs(ctx context.Context, p adapter.RefParams) ([]adapter.Entity, error) {
	value := p.Value()
	if value == nil {
		return []adapter.Entity{}, nil
	}
	if keys, ok := value.([]any); ok {
		docs, err := a.ResolveBatch(ctx, adapter.BatchParams{Model: p.Model, FieldName: p.ForeignFieldName, Keys: keys})
		if err != nil {
			return nil, err
		}
		out := make([]adapter.Entity, 0, len(docs))
		for _, d := range docs {
			if d != nil {
				out = append(out, d)
			}
		}
		return out, nil
	}
	docs, err := a.find(ctx, adapter.Params{
		Model: p.Model,
		Args:  map[string]any{"filter": map[string]any{p.ForeignFieldName: value}},
	})
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []adapter.Entity{}
	}
	return docs, nil
}

// ResolveBatch returns, for each key, the first document whose
// p.FieldName equals it, or nil. _id batches use the primary key.
func (a *Adapter) ResolveBatch(ctx context.Context, p adapter.BatchParams) ([]adapter.Entity, error) {
	if len(p.Keys) == 0 {
		return []adapter.Entity{}, nil
	}
	var ids []any
	if p.FieldName == "_id" {
		ids = p.Keys
	}
	docs, err := a.load(ctx, a.conn(a.db), p.Model, ids)
	if err != nil {
		return nil, err
	}
	return dataloader.OrderByKeysNoError(dataloader.Keys(p.Keys), docs, func(d adapter.Entity) string {
		return dataloader.Key(d[p.FieldName])
	}), nil
}

var _ adapter.Adapter = (*Adapter)(nil)
